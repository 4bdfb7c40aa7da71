package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/panel-dashboard/internal/auth"
	"github.com/spec-kit/panel-dashboard/internal/config"
	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/usercache"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

type memRevocations struct {
	revoked map[string]time.Time
	err     error
}

func (m *memRevocations) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	if m.revoked == nil {
		m.revoked = map[string]time.Time{}
	}
	m.revoked[id] = expiresAt
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := m.revoked[id]
	return ok, nil
}

func panelSettings() config.PanelConfig {
	return config.PanelConfig{
		BaseURL:    "https://panel.test:8090",
		Username:   "admin",
		Password:   "panel-pass",
		AdminEmail: "owner@example.com",
	}
}

func newAuthService(t *testing.T, users *memUsers, directory UserDirectory, revocations auth.RevocationStore) *AuthService {
	t.Helper()
	return NewAuthService(AuthDependencies{
		UserRepo:    users,
		Tokens:      auth.NewTokenManager("test-secret", 60),
		Revocations: revocations,
		Directory:   directory,
		PanelConfig: panelSettings,
		BcryptCost:  4,
	})
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	return domainErr.HTTPStatus
}

func TestLogin_PanelAdminCreatesLocalAccountOnce(t *testing.T) {
	users := newMemUsers()
	svc := newAuthService(t, users, nil, nil)

	first, err := svc.Login(context.Background(), "admin", "panel-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, domain.RoleAdmin, first.User.Role)
	assert.Equal(t, "admin@cyberpanel.local", first.User.Email)
	assert.Equal(t, "admin", first.Session.Username)

	second, err := svc.Login(context.Background(), "owner@example.com", "panel-pass")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	count, _ := users.Count(context.Background())
	assert.Equal(t, 1, count)
}

func TestLogin_PanelAdminUsesMirroredEmail(t *testing.T) {
	directory := &stubDirectory{users: []usercache.User{{ID: "admin", Username: "admin", Email: "ops@example.com", Role: usercache.RoleAdmin}}}
	svc := newAuthService(t, newMemUsers(), directory, nil)

	result, err := svc.Login(context.Background(), "admin", "panel-pass")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", result.User.Email)
}

func TestLogin_PanelAdminPromotesExistingAccount(t *testing.T) {
	users := newMemUsers(&domain.User{ID: "u1", Email: "admin@cyberpanel.local", Role: domain.RoleUser, Status: domain.UserStatusActive})
	svc := newAuthService(t, users, nil, nil)

	result, err := svc.Login(context.Background(), "admin", "panel-pass")
	require.NoError(t, err)
	assert.Equal(t, "u1", result.User.ID)

	stored, _ := users.GetByID(context.Background(), "u1")
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestLogin_LocalAccount(t *testing.T) {
	hash, err := auth.HashPassword("hunter2", 4)
	require.NoError(t, err)
	users := newMemUsers(
		&domain.User{ID: "u1", Name: "Jane Doe", Email: "jane@example.com", PasswordHash: hash, Role: domain.RoleUser, Status: domain.UserStatusActive},
		&domain.User{ID: "u2", Name: "bob", Email: "bob@example.com", PasswordHash: hash, Role: domain.RoleUser, Status: domain.UserStatusSuspended},
	)
	svc := newAuthService(t, users, nil, nil)

	result, err := svc.Login(context.Background(), "JANE@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "u1", result.User.ID)
	assert.Equal(t, "jane", result.Session.Username)

	_, err = svc.Login(context.Background(), "jane@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.Login(context.Background(), "bob@example.com", "hunter2")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter2")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestLogin_RejectsWrongPanelPasswordAndBlankInput(t *testing.T) {
	svc := newAuthService(t, newMemUsers(), nil, nil)

	_, err := svc.Login(context.Background(), "admin", "nope")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.Login(context.Background(), "  ", "x")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestCheckCredentials(t *testing.T) {
	svc := newAuthService(t, newMemUsers(), nil, nil)

	assert.NoError(t, svc.CheckCredentials(context.Background(), "admin", "panel-pass"))
	assert.Error(t, svc.CheckCredentials(context.Background(), "admin", "wrong"))
}

func TestLogout_RevokesSession(t *testing.T) {
	revocations := &memRevocations{}
	svc := newAuthService(t, newMemUsers(), nil, revocations)
	expires := time.Now().Add(time.Hour)

	require.NoError(t, svc.Logout(context.Background(), "sess-1", expires))
	assert.Equal(t, expires, revocations.revoked["sess-1"])

	revocations.err = errors.New("redis down")
	err := svc.Logout(context.Background(), "sess-2", expires)
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
}

func TestCreateUser(t *testing.T) {
	users := newMemUsers()
	svc := newAuthService(t, users, nil, nil)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "Ann", Email: " Ann@Example.com ", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "pw123456"))

	_, err = svc.CreateUser(context.Background(), CreateUserInput{Email: "ann@example.com", Password: "x"})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestProfile_ListsMirroredWebsites(t *testing.T) {
	directory := &stubDirectory{users: []usercache.User{{ID: "jane", Username: "jane", Websites: []string{"a.com", "b.com"}}}}
	svc := newAuthService(t, newMemUsers(), directory, nil)

	profile := svc.Profile(context.Background(), &auth.Principal{UserID: "u1", Username: "jane", Role: domain.RoleUser})
	assert.Equal(t, []string{"a.com", "b.com"}, profile.Websites)

	profile = svc.Profile(context.Background(), &auth.Principal{UserID: "ghost", Username: "ghost"})
	assert.Empty(t, profile.Websites)
	assert.NotNil(t, profile.Websites)
}
