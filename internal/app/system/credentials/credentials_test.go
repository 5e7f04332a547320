package credentials

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	userstore "github.com/dalemusser/assignportal/internal/app/store/users"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu      sync.Mutex
	byName  map[string]models.User
	failGet error
}

func newMemUsers() *memUsers { return &memUsers{byName: map[string]models.User{}} }

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	u, ok := m.byName[username]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (m *memUsers) Exists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return false, m.failGet
	}
	_, ok := m.byName[username]
	return ok, nil
}

func (m *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[u.Username]; ok {
		return models.User{}, userstore.ErrDuplicateUsername
	}
	m.byName[u.Username] = u
	return u, nil
}

func (m *memUsers) RoleOf(_ context.Context, username string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	return u.Role, ok, nil
}

func newTestService() (*Service, *memUsers) {
	users := newMemUsers()
	return New(users, bcrypt.MinCost), users
}

func TestRegister_StoresHashAndDefaultRole(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", ""))

	u := users.byName["alice"]
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "pw1", u.PasswordHash)
	assert.True(t, CheckPassword(u.PasswordHash, "pw1"))
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "user"))
	err := svc.Register(ctx, "alice", "other", "admin")

	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, users.byName, 1)
	assert.Equal(t, models.RoleUser, users.byName["alice"].Role)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Register(ctx, "", "pw", ""), ErrMissingFields)
	assert.ErrorIs(t, svc.Register(ctx, "   ", "pw", ""), ErrMissingFields)
	assert.ErrorIs(t, svc.Register(ctx, "alice", "", ""), ErrMissingFields)
	assert.ErrorIs(t, svc.Register(ctx, "alice", "pw", "root"), ErrInvalidRole)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	err := svc.Register(ctx, "alice", strings.Repeat("x", MaxPasswordBytes+1), "")
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Empty(t, users.byName)

	require.NoError(t, svc.Register(ctx, "alice", strings.Repeat("x", MaxPasswordBytes), ""))
}

func TestRegister_LookupFailure(t *testing.T) {
	svc, users := newTestService()
	users.failGet = errors.New("server selection timeout")

	err := svc.Register(context.Background(), "alice", "pw", "")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, users.failGet)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "bob", "pw2", models.RoleAdmin))

	role, err := svc.Authenticate(ctx, "bob", "pw2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	_, err = svc.Authenticate(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "pw2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UsernameIsTrimmed(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, " alice ", "pw1", ""))
	require.Contains(t, users.byName, "alice")

	for _, name := range []string{" alice ", "alice", "\talice"} {
		role, err := svc.Authenticate(ctx, name, "pw1")
		require.NoError(t, err, "username %q", name)
		assert.Equal(t, models.RoleUser, role)
	}
}

func TestRoleOf(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "bob", "pw2", models.RoleAdmin))

	role, found, err := svc.RoleOf(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.RoleAdmin, role)

	_, found, err = svc.RoleOf(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNew_ClampsCost(t *testing.T) {
	svc := New(newMemUsers(), 99)
	assert.Equal(t, DefaultCost, svc.cost)
}
