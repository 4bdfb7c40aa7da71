package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/events"
	"github.com/spec-kit/panel-dashboard/internal/panel"
	"github.com/spec-kit/panel-dashboard/internal/repository"
	"github.com/spec-kit/panel-dashboard/internal/usercache"
)

type stubPanel struct {
	mu       sync.Mutex
	calls    []string
	results  map[string]panel.Result
	lastArgs map[string][]any
}

func newStubPanel() *stubPanel {
	return &stubPanel{results: map[string]panel.Result{}, lastArgs: map[string][]any{}}
}

func (s *stubPanel) set(op string, r panel.Result) *stubPanel {
	s.results[op] = r
	return s
}

func (s *stubPanel) called(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (s *stubPanel) do(op string, args ...any) panel.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op)
	s.lastArgs[op] = args
	if r, ok := s.results[op]; ok {
		return r
	}
	return panel.Result{Succeeded: true}
}

func (s *stubPanel) CreateWebsite(_ context.Context, d, owner, pkg string) panel.Result {
	return s.do("CreateWebsite", d, owner, pkg)
}
func (s *stubPanel) DeleteWebsite(_ context.Context, d string) panel.Result {
	return s.do("DeleteWebsite", d)
}
func (s *stubPanel) CreateDatabase(_ context.Context, name, user, pw, d string) panel.Result {
	return s.do("CreateDatabase", name, user, pw, d)
}
func (s *stubPanel) CreateEmail(_ context.Context, addr, pw string) panel.Result {
	return s.do("CreateEmail", addr, pw)
}
func (s *stubPanel) FetchWebsites(_ context.Context, page, size int) panel.Result {
	return s.do("FetchWebsites", page, size)
}
func (s *stubPanel) FetchPackages(_ context.Context) panel.Result { return s.do("FetchPackages") }
func (s *stubPanel) VerifyLogin(_ context.Context) panel.Result   { return s.do("VerifyLogin") }
func (s *stubPanel) InstallSSL(_ context.Context, d, email string) panel.Result {
	return s.do("InstallSSL", d, email)
}

func listingResult(sites ...map[string]any) panel.Result {
	raw, _ := json.Marshal(sites)
	encoded, _ := json.Marshal(string(raw))
	return panel.Result{Succeeded: true, Payload: encoded}
}

type memUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUsers(users ...*domain.User) *memUsers {
	m := &memUsers{users: map[string]*domain.User{}}
	for _, u := range users {
		clone := *u
		m.users[u.ID] = &clone
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("duplicate email")
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	user.CreatedAt = time.Now()
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUsers) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) FirstAdmin(_ context.Context) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == domain.RoleAdmin {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

type memWebsites struct {
	mu    sync.Mutex
	seq   int
	sites map[string]*domain.Website
}

func newMemWebsites(sites ...*domain.Website) *memWebsites {
	m := &memWebsites{sites: map[string]*domain.Website{}}
	for _, s := range sites {
		clone := *s
		m.sites[s.ID] = &clone
	}
	return m
}

func (m *memWebsites) Create(_ context.Context, w *domain.Website) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	w.ID = fmt.Sprintf("site-%d", m.seq)
	clone := *w
	m.sites[w.ID] = &clone
	return nil
}

func (m *memWebsites) Update(_ context.Context, w *domain.Website) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sites[w.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *w
	m.sites[w.ID] = &clone
	return nil
}

func (m *memWebsites) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sites[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.sites, id)
	return nil
}

func (m *memWebsites) GetByID(_ context.Context, id string) (*domain.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.sites[id]; ok {
		clone := *w
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memWebsites) GetByDomain(_ context.Context, name string) (*domain.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.sites {
		if strings.EqualFold(w.Domain, name) {
			clone := *w
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memWebsites) List(_ context.Context) ([]domain.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Website
	for _, w := range m.sites {
		out = append(out, *w)
	}
	return out, nil
}

func (m *memWebsites) ListByUser(_ context.Context, userID string) ([]domain.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Website
	for _, w := range m.sites {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *memWebsites) Totals(ctx context.Context) (repository.WebsiteTotals, error) {
	all, _ := m.List(ctx)
	return totalsOf(all), nil
}

func (m *memWebsites) UpdateUsage(_ context.Context, usage domain.WebsiteUsage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.sites {
		if strings.EqualFold(w.Domain, usage.Domain) {
			w.StorageUsed = usage.StorageUsed
			if w.StorageLimit > 0 && w.StorageUsed > w.StorageLimit {
				w.StorageUsed = w.StorageLimit
			}
			w.BandwidthUsed = usage.BandwidthUsed
			return true, nil
		}
	}
	return false, nil
}

type memActivities struct {
	mu    sync.Mutex
	items []domain.Activity
}

func (m *memActivities) Create(_ context.Context, a *domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = fmt.Sprintf("act-%d", len(m.items)+1)
	a.CreatedAt = time.Now()
	m.items = append(m.items, *a)
	return nil
}

func (m *memActivities) ListRecent(_ context.Context, limit int) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Activity
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}

func (m *memActivities) ListByUser(_ context.Context, userID string, limit int) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Activity
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		if a := m.items[i]; a.UserID != nil && *a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubDirectory struct {
	users   []usercache.User
	expired int
}

func (d *stubDirectory) ListUsers(context.Context) []usercache.User { return d.users }

func (d *stubDirectory) GetUser(_ context.Context, id string) (usercache.User, bool) {
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return usercache.User{}, false
}

func (d *stubDirectory) GetUserWebsites(ctx context.Context, id string) []string {
	if u, ok := d.GetUser(ctx, id); ok {
		return u.Websites
	}
	return []string{}
}

func (d *stubDirectory) IsUserAdmin(ctx context.Context, id string) bool {
	u, ok := d.GetUser(ctx, id)
	return ok && u.Role == usercache.RoleAdmin
}

func (d *stubDirectory) Expire() { d.expired++ }

type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureDispatcher) Publish(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (c *captureDispatcher) types() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.EventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}
