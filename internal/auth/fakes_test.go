package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/findtrainer/auth-api/internal/models"
	"github.com/findtrainer/auth-api/internal/store"
)

// In-memory credential store mirroring the DynamoDB store's semantics:
// case-insensitive usernames, set-valued roles, policy validation on create.
type fakeUserStore struct {
	mu        sync.Mutex
	users     map[string]*models.User // keyed by normalized username
	passwords map[string]string
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:     make(map[string]*models.User),
		passwords: make(map[string]string),
	}
}

func (f *fakeUserStore) key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[f.key(username)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User, password string) (store.CreateResult, error) {
	if f.createErr != nil {
		return store.CreateResult{}, f.createErr
	}
	if violations := fakePolicyCheck(user.Username, password); len(violations) > 0 {
		return store.CreateResult{Succeeded: false, Errors: violations}, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := f.key(user.Username)
	if _, exists := f.users[key]; exists {
		return store.CreateResult{Succeeded: false, Errors: []string{"Username already exists"}}, nil
	}

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	copied := *user
	f.users[key] = &copied
	f.passwords[key] = password

	return store.CreateResult{Succeeded: true}, nil
}

func (f *fakeUserStore) AddRole(ctx context.Context, user *models.User, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.users[f.key(user.Username)]
	if !ok {
		return store.ErrUserNotFound
	}
	for _, existing := range stored.Roles {
		if existing == role {
			return nil
		}
	}
	stored.Roles = append(stored.Roles, role)
	return nil
}

func (f *fakeUserStore) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.users[f.key(user.Username)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return append([]string(nil), stored.Roles...), nil
}

func (f *fakeUserStore) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.passwords[f.key(username)]
	return ok && stored == password, nil
}

func (f *fakeUserStore) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.users[f.key(user.Username)]
	if !ok {
		return store.ErrUserNotFound
	}
	stored.Address = user.Address
	stored.Photo = user.Photo
	stored.Certifications = user.Certifications
	stored.Focuses = user.Focuses
	return nil
}

// fakePolicyCheck rejects the same obviously-bad inputs the real store
// does, without duplicating the full policy (covered by store tests)
func fakePolicyCheck(username, password string) []string {
	var violations []string
	if strings.ContainsAny(username, " !#") {
		violations = append(violations, "Username '"+username+"' is invalid, can only contain letters or digits")
	}
	if len(password) < 6 {
		violations = append(violations, "Passwords must be at least 6 characters")
	}
	return violations
}

type fakeRoleStore struct {
	mu    sync.Mutex
	roles []string
}

func (f *fakeRoleStore) CreateRole(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = append(f.roles, name)
	return nil
}

func (f *fakeRoleStore) created() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.roles...)
}

type fakeCounterLedger struct {
	mu     sync.Mutex
	counts map[string]map[string]int64 // kind -> date -> count
}

func newFakeCounterLedger() *fakeCounterLedger {
	return &fakeCounterLedger{counts: make(map[string]map[string]int64)}
}

func (f *fakeCounterLedger) Increment(ctx context.Context, kind string, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	date := day.UTC().Format("2006-01-02")
	if f.counts[kind] == nil {
		f.counts[kind] = make(map[string]int64)
	}
	f.counts[kind][date]++
	return nil
}

func (f *fakeCounterLedger) count(kind string, day time.Time) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[kind][day.UTC().Format("2006-01-02")]
}

func (f *fakeCounterLedger) dates(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.counts[kind])
}

type fakeSeeder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSeeder) EnsureSeeded(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

// fakeLocker has try-lock semantics like the redis SET NX guard
type fakeLocker struct {
	mu   sync.Mutex
	held bool
}

func (f *fakeLocker) Acquire(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLocker) Release(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	return nil
}
