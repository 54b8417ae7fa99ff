package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/findtrainer/auth-api/internal/config"
	"github.com/findtrainer/auth-api/internal/metrics"
	"github.com/findtrainer/auth-api/internal/models"
	apperrors "github.com/findtrainer/auth-api/pkg/errors"
)

// Loader performs the first-run bootstrap: it creates the fixed role set
// and a batch of predefined accounts from the static seed dataset when the
// user store is empty. A redis lock plus a count re-check under the lock
// keep concurrent first logins from seeding twice. There is no rollback:
// a mid-run failure leaves earlier creations in place.
type Loader struct {
	users  CredentialStore
	roles  RoleStore
	locker Locker
	cfg    *config.SeedConfig
	logger *logrus.Logger
}

// NewLoader creates a seed loader
func NewLoader(users CredentialStore, roles RoleStore, locker Locker, cfg *config.SeedConfig, logger *logrus.Logger) *Loader {
	return &Loader{
		users:  users,
		roles:  roles,
		locker: locker,
		cfg:    cfg,
		logger: logger,
	}
}

// EnsureSeeded seeds roles and accounts if the store holds zero accounts.
// Safe to call on every login.
func (l *Loader) EnsureSeeded(ctx context.Context) error {
	count, err := l.users.Count(ctx)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeSeedingFailed, "Failed to check for first run", err)
	}
	if count > 0 {
		return nil
	}

	acquired, err := l.locker.Acquire(ctx)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeSeedingFailed, "Failed to acquire seed lock", err)
	}
	if !acquired {
		// Another instance is seeding; wait until its accounts appear
		return l.waitForSeed(ctx)
	}
	defer func() {
		if err := l.locker.Release(context.WithoutCancel(ctx)); err != nil {
			l.logger.WithError(err).Warn("Failed to release seed lock")
		}
	}()

	// Re-check under the lock: the empty read above may have raced a
	// seeder that has since finished.
	count, err = l.users.Count(ctx)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeSeedingFailed, "Failed to re-check user count", err)
	}
	if count > 0 {
		metrics.RecordSeedRun("skipped")
		return nil
	}

	l.logger.Info("Empty user store detected, running first-run seeding")

	if err := l.seedRoles(ctx); err != nil {
		metrics.RecordSeedRun("failure")
		return apperrors.NewAppError(apperrors.CodeSeedingFailed, "Failed to seed roles", err)
	}

	if err := l.seedUsers(ctx); err != nil {
		metrics.RecordSeedRun("failure")
		return apperrors.NewAppError(apperrors.CodeSeedingFailed, "Failed to seed users", err)
	}

	metrics.RecordSeedRun("success")
	l.logger.Info("First-run seeding completed")
	return nil
}

func (l *Loader) waitForSeed(ctx context.Context) error {
	deadline := time.Now().Add(l.cfg.LockWait)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return apperrors.NewAppError(apperrors.CodeSeedingFailed, "Cancelled while waiting for seeding", ctx.Err())
		case <-ticker.C:
			count, err := l.users.Count(ctx)
			if err != nil {
				return apperrors.NewAppError(apperrors.CodeSeedingFailed, "Failed to poll user count", err)
			}
			if count > 0 {
				return nil
			}
			if time.Now().After(deadline) {
				return apperrors.NewAppError(apperrors.CodeSeedingFailed, "Timed out waiting for concurrent seeding", nil)
			}
		}
	}
}

func (l *Loader) seedRoles(ctx context.Context) error {
	for _, name := range []string{models.RoleAdmin, models.RoleUser, models.RoleTrainer} {
		if err := l.roles.CreateRole(ctx, name); err != nil {
			return fmt.Errorf("create role %s: %w", name, err)
		}
	}
	return nil
}

func (l *Loader) seedUsers(ctx context.Context) error {
	data, err := os.ReadFile(l.cfg.DataPath)
	if err != nil {
		return fmt.Errorf("read seed dataset: %w", err)
	}

	var seedUsers []models.SeedUser
	if err := json.Unmarshal(data, &seedUsers); err != nil {
		return fmt.Errorf("parse seed dataset: %w", err)
	}

	now := time.Now()
	for _, rec := range seedUsers {
		user := &models.User{
			Username:     rec.Username,
			KnownAs:      rec.KnownAs,
			Gender:       rec.Gender,
			Introduction: rec.Introduction,
			IsTrainer:    rec.IsTrainer,
			AdsBidding:   rec.AdsBidding,
			CreatedAt:    now,
			LastActive:   now,
		}

		result, err := l.users.Create(ctx, user, l.cfg.DefaultPassword)
		if err != nil {
			return fmt.Errorf("create seed user %s: %w", rec.Username, err)
		}
		if !result.Succeeded {
			return fmt.Errorf("create seed user %s: %s", rec.Username, result.Errors[0])
		}

		role := models.RoleUser
		if rec.IsTrainer {
			role = models.RoleTrainer
		}
		if err := l.users.AddRole(ctx, user, role); err != nil {
			return fmt.Errorf("assign role to seed user %s: %w", rec.Username, err)
		}

		// Re-fetch the created account and attach the profile blocks
		created, err := l.users.FindByUsername(ctx, rec.Username)
		if err != nil {
			return fmt.Errorf("reload seed user %s: %w", rec.Username, err)
		}

		created.Address = rec.Address
		created.Photo = rec.Profile
		created.Certifications = rec.Certifications
		// Focus entities are minted fresh on every seed run, never looked
		// up or deduplicated (carried over from the original seeder)
		for _, f := range rec.Focus {
			created.Focuses = append(created.Focuses, models.Focus{
				FocusID: uuid.New().String(),
				Name:    f.Name,
			})
		}

		if err := l.users.UpdateProfile(ctx, created); err != nil {
			return fmt.Errorf("update seed user profile %s: %w", rec.Username, err)
		}
	}

	// One extra admin account with the default password. The original
	// flow never assigns it a role; reproduced as-is.
	result, err := l.users.Create(ctx, &models.User{
		Username:   "Admin",
		CreatedAt:  now,
		LastActive: now,
	}, l.cfg.DefaultPassword)
	if err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	if !result.Succeeded {
		return fmt.Errorf("create admin account: %s", result.Errors[0])
	}

	return nil
}
