package auth

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/findtrainer/auth-api/internal/metrics"
	"github.com/findtrainer/auth-api/internal/models"
	"github.com/findtrainer/auth-api/internal/store"
	apperrors "github.com/findtrainer/auth-api/pkg/errors"
)

// The login failure message is deliberately identical for unknown
// usernames and wrong passwords.
const invalidCredentialsMessage = "Wrong username or password"

// Service orchestrates registration and login over the credential store,
// counter ledger, token issuer and seed loader.
type Service struct {
	users    CredentialStore
	counters CounterLedger
	issuer   TokenIssuer
	seeder   Seeder
	logger   *logrus.Logger
}

// NewService creates the auth service
func NewService(users CredentialStore, counters CounterLedger, issuer TokenIssuer, seeder Seeder, logger *logrus.Logger) *Service {
	return &Service{
		users:    users,
		counters: counters,
		issuer:   issuer,
		seeder:   seeder,
		logger:   logger,
	}
}

// Register creates a new account with the supplied profile attributes.
// Returns nil on success; the HTTP layer sends no body.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) error {
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		metrics.RecordAuthOperation("register", "failure")
		return apperrors.NewAppError(apperrors.CodeDuplicateUsername, "Username already exists", nil)
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to check username", err)
	}

	now := time.Now()
	user := &models.User{
		Username:     req.Username,
		KnownAs:      req.KnownAs,
		Gender:       req.Gender,
		Introduction: req.Introduction,
		IsTrainer:    req.IsTrainer,
		Address: &models.Address{
			City:        req.City,
			Province:    req.Province,
			Country:     req.Country,
			FullAddress: req.Address,
		},
		CreatedAt:  now,
		LastActive: now,
	}

	result, err := s.users.Create(ctx, user, req.Password)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to create user", err)
	}
	if !result.Succeeded {
		metrics.RecordAuthOperation("register", "failure")
		return apperrors.NewAppError(apperrors.CodeInvalidAccountData, result.Errors[0], nil)
	}

	role := models.RoleUser
	if req.IsTrainer {
		role = models.RoleTrainer
	}
	if err := s.users.AddRole(ctx, user, role); err != nil {
		return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to assign role", err)
	}

	// Every new account also receives the User role, independent of the
	// trainer flag, so trainer accounts hold both Trainer and User. This
	// mirrors the historical registration flow (see DESIGN.md).
	if err := s.users.AddRole(ctx, user, models.RoleUser); err != nil {
		return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to assign role", err)
	}

	if err := s.counters.Increment(ctx, models.CounterSignup, now); err != nil {
		return apperrors.NewAppError(apperrors.CodeInternalError, "Failed to increment signup counter", err)
	}

	metrics.RecordAuthOperation("register", "success")
	s.logger.WithFields(logrus.Fields{
		"user_id":  user.UserID,
		"username": user.Username,
	}).Info("User registered successfully")

	return nil
}

// Login verifies credentials and issues a signed token valid for 24 hours.
// On an empty store it runs the first-run seeding before authenticating.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.seeder.EnsureSeeded(ctx); err != nil {
		return nil, err
	}

	ok, err := s.users.VerifyCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to verify credentials", err)
	}
	if !ok {
		metrics.RecordAuthOperation("login", "failure")
		return nil, apperrors.NewAppError(apperrors.CodeInvalidCredentials, invalidCredentialsMessage, nil)
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to load user", err)
	}

	roles, err := s.users.GetRoles(ctx, user)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to load roles", err)
	}

	token, expiresAt, err := s.issuer.Issue(user, roles)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to sign token", err)
	}

	if err := s.counters.Increment(ctx, models.CounterSignin, time.Now()); err != nil {
		return nil, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to increment signin counter", err)
	}

	metrics.RecordAuthOperation("login", "success")
	s.logger.WithFields(logrus.Fields{
		"user_id":  user.UserID,
		"username": user.Username,
	}).Info("User logged in successfully")

	return &models.LoginResponse{
		Token:      token,
		Expiration: expiresAt.UTC(),
	}, nil
}
