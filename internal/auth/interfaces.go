package auth

import (
	"context"
	"time"

	"github.com/findtrainer/auth-api/internal/models"
	"github.com/findtrainer/auth-api/internal/store"
)

// CredentialStore is the slice of the user store the auth flow depends on
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User, password string) (store.CreateResult, error)
	AddRole(ctx context.Context, user *models.User, role string) error
	GetRoles(ctx context.Context, user *models.User) ([]string, error)
	VerifyCredentials(ctx context.Context, username, password string) (bool, error)
	Count(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// RoleStore creates entries in the fixed role set
type RoleStore interface {
	CreateRole(ctx context.Context, name string) error
}

// CounterLedger maintains the per-day signup/signin counters
type CounterLedger interface {
	Increment(ctx context.Context, kind string, day time.Time) error
}

// TokenIssuer signs a claim set for an authenticated account
type TokenIssuer interface {
	Issue(user *models.User, roles []string) (string, time.Time, error)
}

// Seeder runs the first-run bootstrap when the store is empty
type Seeder interface {
	EnsureSeeded(ctx context.Context) error
}

// Locker is a single-flight guard around the seeding routine
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
