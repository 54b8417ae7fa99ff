package auth

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findtrainer/auth-api/internal/config"
	"github.com/findtrainer/auth-api/internal/models"
	apperrors "github.com/findtrainer/auth-api/pkg/errors"
)

const seedDataset = `[
  {
    "username": "TrainerOne",
    "known_as": "Trainer One",
    "gender": 1,
    "introduction": "Strength coach",
    "is_trainer": true,
    "ads_bidding": 2.5,
    "address": {"city": "Porto", "country": "Portugal"},
    "profile": {"url": "https://example.com/one.jpg"},
    "certifications": [{"name": "NSCA-CSCS"}],
    "focus": [{"name": "Strength"}, {"name": "Mobility"}]
  },
  {
    "username": "MemberTwo",
    "known_as": "Member Two",
    "gender": 0,
    "is_trainer": false,
    "focus": []
  }
]`

func writeSeedDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user_seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedDataset), 0o600))
	return path
}

func testSeedConfig(t *testing.T) *config.SeedConfig {
	return &config.SeedConfig{
		DataPath:        writeSeedDataset(t),
		DefaultPassword: "P@ssw0rd",
		LockTTL:         time.Minute,
		LockWait:        5 * time.Second,
	}
}

func TestLoader_EnsureSeeded_EmptyStore(t *testing.T) {
	users := newFakeUserStore()
	roles := &fakeRoleStore{}
	loader := NewLoader(users, roles, &fakeLocker{}, testSeedConfig(t), testLogger())
	ctx := context.Background()

	require.NoError(t, loader.EnsureSeeded(ctx))

	// Exactly the fixed role set
	assert.Equal(t, []string{models.RoleAdmin, models.RoleUser, models.RoleTrainer}, roles.created())

	// Both dataset records plus the extra admin account
	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	trainer, err := users.FindByUsername(ctx, "TrainerOne")
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleTrainer}, trainer.Roles)
	assert.Equal(t, "Porto", trainer.Address.City)
	assert.Equal(t, "https://example.com/one.jpg", trainer.Photo.URL)
	require.Len(t, trainer.Certifications, 1)

	// One Focus entity per named focus item, minted with fresh IDs
	require.Len(t, trainer.Focuses, 2)
	assert.Equal(t, "Strength", trainer.Focuses[0].Name)
	assert.Equal(t, "Mobility", trainer.Focuses[1].Name)
	assert.NotEmpty(t, trainer.Focuses[0].FocusID)
	assert.NotEqual(t, trainer.Focuses[0].FocusID, trainer.Focuses[1].FocusID)

	member, err := users.FindByUsername(ctx, "MemberTwo")
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleUser}, member.Roles)

	// The extra admin account gets no role assignment
	admin, err := users.FindByUsername(ctx, "Admin")
	require.NoError(t, err)
	assert.Empty(t, admin.Roles)

	// Seed accounts authenticate with the default password
	ok, err := users.VerifyCredentials(ctx, "Admin", "P@ssw0rd")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoader_EnsureSeeded_NonEmptyStoreSkips(t *testing.T) {
	users := newFakeUserStore()
	roles := &fakeRoleStore{}
	ctx := context.Background()

	_, err := users.Create(ctx, &models.User{Username: "existing"}, "Abcdef1!")
	require.NoError(t, err)

	loader := NewLoader(users, roles, &fakeLocker{}, testSeedConfig(t), testLogger())
	require.NoError(t, loader.EnsureSeeded(ctx))

	assert.Empty(t, roles.created())
	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLoader_EnsureSeeded_SecondRunIsNoop(t *testing.T) {
	users := newFakeUserStore()
	roles := &fakeRoleStore{}
	loader := NewLoader(users, roles, &fakeLocker{}, testSeedConfig(t), testLogger())
	ctx := context.Background()

	require.NoError(t, loader.EnsureSeeded(ctx))
	require.NoError(t, loader.EnsureSeeded(ctx))

	assert.Len(t, roles.created(), 3, "roles must not be re-created")
	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "seed accounts must not be duplicated")
}

func TestLoader_EnsureSeeded_ConcurrentLoginsSeedOnce(t *testing.T) {
	users := newFakeUserStore()
	roles := &fakeRoleStore{}
	locker := &fakeLocker{}
	loader := NewLoader(users, roles, locker, testSeedConfig(t), testLogger())
	ctx := context.Background()

	const goroutines = 8
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = loader.EnsureSeeded(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, roles.created(), 3)
	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestLoader_EnsureSeeded_MissingDatasetFails(t *testing.T) {
	users := newFakeUserStore()
	cfg := testSeedConfig(t)
	cfg.DataPath = filepath.Join(t.TempDir(), "missing.json")
	loader := NewLoader(users, &fakeRoleStore{}, &fakeLocker{}, cfg, testLogger())

	err := loader.EnsureSeeded(context.Background())
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeSeedingFailed, appErr.Code)
}
