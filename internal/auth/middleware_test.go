package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/panel-dashboard/internal/domain"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

type stubUsers map[string]*domain.User

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
	err     error
}

func (m *memoryRevocations) Revoke(_ context.Context, id string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]bool{}
	}
	m.revoked[id] = true
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[id], m.err
}

func newTestApp(mw *AuthMiddleware, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	handlers := append([]fiber.Handler{mw.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Email)
	})
	app.Get("/", handlers...)
	return app
}

func request(t *testing.T, app *fiber.App, header string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	users := stubUsers{
		"admin-1": {ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserStatusActive},
		"user-1":  {ID: "user-1", Email: "jane@example.com", Role: domain.RoleUser, Status: domain.UserStatusActive},
		"susp-1":  {ID: "susp-1", Email: "s@example.com", Role: domain.RoleUser, Status: domain.UserStatusSuspended},
	}
	revocations := &memoryRevocations{}
	mw := NewAuthMiddleware(tm, users, revocations, nil)

	issue := func(id string) (string, domain.Session) {
		token, session, err := tm.Issue(&domain.User{ID: id, Email: users[id].Email, Role: users[id].Role}, id)
		require.NoError(t, err)
		return "Bearer " + token, session
	}

	adminHeader, _ := issue("admin-1")
	userHeader, userSession := issue("user-1")
	suspendedHeader, _ := issue("susp-1")
	ghost, _, err := tm.Issue(&domain.User{ID: "ghost"}, "ghost")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request(t, newTestApp(mw), ""))
	})
	t.Run("wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request(t, newTestApp(mw), "Token abc"))
	})
	t.Run("valid user", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request(t, newTestApp(mw), userHeader))
	})
	t.Run("unknown user", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request(t, newTestApp(mw), "Bearer "+ghost))
	})
	t.Run("suspended user", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request(t, newTestApp(mw), suspendedHeader))
	})
	t.Run("admin guard", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, request(t, newTestApp(mw, RequireAdmin()), userHeader))
		assert.Equal(t, http.StatusOK, request(t, newTestApp(mw, RequireAdmin()), adminHeader))
	})
	t.Run("revoked session", func(t *testing.T) {
		require.NoError(t, revocations.Revoke(context.Background(), userSession.ID, userSession.ExpiresAt))
		assert.Equal(t, http.StatusUnauthorized, request(t, newTestApp(mw), userHeader))
		assert.Equal(t, http.StatusOK, request(t, newTestApp(mw), adminHeader))
	})
}

func TestAuthMiddleware_RevocationStoreDown(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	users := stubUsers{"user-1": {ID: "user-1", Role: domain.RoleUser, Status: domain.UserStatusActive}}
	mw := NewAuthMiddleware(tm, users, &memoryRevocations{err: errors.New("redis down")}, nil)

	token, _, err := tm.Issue(users["user-1"], "user-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, request(t, newTestApp(mw), "Bearer "+token))
}
