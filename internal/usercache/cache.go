// Package usercache mirrors the panel's account list, derived from the website
// listing grouped by owning admin.
package usercache

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/clock"
	"github.com/spec-kit/panel-dashboard/internal/observability"
	"github.com/spec-kit/panel-dashboard/internal/panel"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	StatusActive = "active"

	adminAccount  = "admin"
	fetchPageSize = 100
	emailDomain   = "cyberpanel.local"
)

// Fetcher lists panel websites. *panel.Operations satisfies it.
type Fetcher interface {
	FetchWebsites(ctx context.Context, page, pageSize int) panel.Result
}

// User is a panel account as seen through its websites.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"displayName"`
	Websites    []string  `json:"websites"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// Cache holds the last good snapshot. Concurrent refreshes are not coalesced;
// the last one to finish wins.
type Cache struct {
	fetcher    Fetcher
	clock      clock.Clock
	ttl        time.Duration
	adminEmail string
	logger     *zap.Logger
	metrics    *observability.Metrics

	mu        sync.RWMutex
	users     []User
	fetchedAt time.Time
}

func New(fetcher Fetcher, clk clock.Clock, ttl time.Duration, adminEmail string, logger *zap.Logger, metrics *observability.Metrics) *Cache {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		fetcher:    fetcher,
		clock:      clk,
		ttl:        ttl,
		adminEmail: adminEmail,
		logger:     logger,
		metrics:    metrics,
	}
}

// ListUsers returns the mirrored accounts, refreshing when the snapshot is
// empty or older than the TTL. It never fails: a failed refresh serves the
// stale snapshot, or a single synthetic admin when there is none.
func (c *Cache) ListUsers(ctx context.Context) []User {
	c.mu.RLock()
	users, fetchedAt := c.users, c.fetchedAt
	c.mu.RUnlock()

	if len(users) > 0 && c.clock.Since(fetchedAt) < c.ttl {
		c.metrics.RecordCacheLookup("fresh")
		return users
	}

	refreshed, err := c.refresh(ctx)
	if err != nil {
		if len(users) > 0 {
			c.logger.Warn("panel user refresh failed, serving stale entries", zap.Error(err), zap.Int("users", len(users)))
			c.metrics.RecordCacheLookup("stale")
			return users
		}
		c.logger.Warn("panel user refresh failed, serving fallback admin", zap.Error(err))
		c.metrics.RecordCacheLookup("fallback")
		return []User{c.fallbackAdmin()}
	}

	c.metrics.RecordCacheLookup("refreshed")
	return refreshed
}

// GetUser returns the first user whose id matches.
func (c *Cache) GetUser(ctx context.Context, id string) (User, bool) {
	for _, u := range c.ListUsers(ctx) {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// GetUserWebsites returns the domains owned by the user, empty when unknown.
func (c *Cache) GetUserWebsites(ctx context.Context, id string) []string {
	u, ok := c.GetUser(ctx, id)
	if !ok {
		return []string{}
	}
	return u.Websites
}

func (c *Cache) IsUserAdmin(ctx context.Context, id string) bool {
	u, ok := c.GetUser(ctx, id)
	return ok && u.Role == RoleAdmin
}

// Expire marks the snapshot outdated without dropping it. The next lookup
// refetches and can still fall back to the old entries.
func (c *Cache) Expire() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// Clear drops the snapshot entirely.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.users = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Cache) refresh(ctx context.Context) ([]User, error) {
	result := c.fetcher.FetchWebsites(ctx, 1, fetchPageSize)
	if !result.Succeeded {
		return nil, &refreshError{code: result.Code, message: result.ErrorMessage}
	}
	listings, err := panel.DecodeWebsites(result.Payload)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	users := GroupByAdmin(listings, now)

	c.mu.Lock()
	c.users = users
	c.fetchedAt = now
	c.mu.Unlock()
	return users, nil
}

func (c *Cache) fallbackAdmin() User {
	now := c.clock.Now()
	return User{
		ID:          adminAccount,
		Username:    adminAccount,
		Email:       c.adminEmail,
		Role:        RoleAdmin,
		DisplayName: displayName(adminAccount),
		Websites:    []string{},
		Status:      StatusActive,
		CreatedAt:   now,
		LastLoginAt: now,
	}
}

// GroupByAdmin folds a website listing into one user per owning admin, in
// first-seen order, with domains in listing order.
func GroupByAdmin(listings []panel.WebsiteListing, now time.Time) []User {
	index := make(map[string]int)
	var users []User
	for _, site := range listings {
		owner := site.Owner()
		i, seen := index[owner]
		if !seen {
			email := string(site.AdminEmail)
			if email == "" {
				email = owner + "@" + emailDomain
			}
			role := RoleUser
			if owner == adminAccount {
				role = RoleAdmin
			}
			users = append(users, User{
				ID:          owner,
				Username:    owner,
				Email:       email,
				Role:        role,
				DisplayName: displayName(owner),
				Websites:    []string{},
				Status:      StatusActive,
				CreatedAt:   now,
				LastLoginAt: now,
			})
			i = len(users) - 1
			index[owner] = i
		}
		if domain := site.DomainName(); domain != "" {
			users[i].Websites = append(users[i].Websites, domain)
		}
	}
	return users
}

func displayName(username string) string {
	if username == adminAccount {
		return "Administrator"
	}
	if username == "" {
		return ""
	}
	return strings.ToUpper(username[:1]) + username[1:]
}

type refreshError struct {
	code    panel.Code
	message string
}

func (e *refreshError) Error() string {
	return "fetch websites: " + string(e.code) + ": " + e.message
}
