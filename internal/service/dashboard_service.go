package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/panel-dashboard/internal/auth"
	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/panel"
	"github.com/spec-kit/panel-dashboard/internal/repository"
	"github.com/spec-kit/panel-dashboard/internal/usercache"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

const recentActivityLimit = 10

// DashboardService assembles the read-only dashboard views.
type DashboardService struct {
	websites     repository.WebsiteRepository
	users        repository.UserRepository
	activities   repository.ActivityRepository
	panel        PanelAPI
	directory    UserDirectory
	mockFallback func() bool
	now          func() time.Time
	logger       *zap.Logger
}

// DashboardDependencies bundles collaborators for dashboards.
type DashboardDependencies struct {
	WebsiteRepo  repository.WebsiteRepository
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Panel        PanelAPI
	Directory    UserDirectory
	// MockFallback is consulted per request; nil means never.
	MockFallback func() bool
	Logger       *zap.Logger
}

func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mock := deps.MockFallback
	if mock == nil {
		mock = func() bool { return false }
	}
	return &DashboardService{
		websites:     deps.WebsiteRepo,
		users:        deps.UserRepo,
		activities:   deps.ActivityRepo,
		panel:        deps.Panel,
		directory:    deps.Directory,
		mockFallback: mock,
		now:          time.Now,
		logger:       logger,
	}
}

// AdminStats is the administrator overview of the local mirror.
type AdminStats struct {
	TotalUsers       int
	Totals           repository.WebsiteTotals
	RecentActivities []domain.Activity
}

func (s *DashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.websites.Totals(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.activities.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	return &AdminStats{TotalUsers: users, Totals: totals, RecentActivities: recent}, nil
}

// UserDashboard is one account's websites and history.
type UserDashboard struct {
	User       *domain.User
	Websites   []domain.Website
	Totals     repository.WebsiteTotals
	Activities []domain.Activity
}

func (s *DashboardService) UserDashboard(ctx context.Context, userID string) (*UserDashboard, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	websites, err := s.websites.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByUser(ctx, user.ID, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	return &UserDashboard{
		User:       user,
		Websites:   websites,
		Totals:     totalsOf(websites),
		Activities: activities,
	}, nil
}

func totalsOf(websites []domain.Website) repository.WebsiteTotals {
	t := repository.WebsiteTotals{Total: len(websites)}
	for _, w := range websites {
		if w.Status == domain.WebsiteStatusActive {
			t.Active++
		}
		t.StorageUsed += w.StorageUsed
		t.StorageLimit += w.StorageLimit
		t.BandwidthUsed += w.BandwidthUsed
		t.Visitors += w.VisitorsCount
	}
	return t
}

// PanelOverview is the live panel view. Mock is set when the data is the
// built-in sample rather than panel data.
type PanelOverview struct {
	Websites    []panel.WebsiteListing
	Packages    []panel.PackageListing
	Users       []usercache.User
	GeneratedAt time.Time
	Mock        bool
}

// PanelOverview verifies the panel connection, then fetches websites and
// packages concurrently. When the panel is unreachable the sample dataset is
// served only if mock fallback is enabled.
func (s *DashboardService) PanelOverview(ctx context.Context) (*PanelOverview, error) {
	now := s.now()
	if check := s.panel.VerifyLogin(ctx); !check.Succeeded {
		if s.mockFallback() {
			s.logger.Warn("panel unreachable, serving sample data", zap.String("code", string(check.Code)))
			return sampleOverview(now), nil
		}
		return nil, apperrors.NewUpstreamUnavailable("CyberPanel is unavailable", map[string]any{
			"code":    string(check.Code),
			"details": check.ErrorMessage,
		})
	}

	var (
		websites []panel.WebsiteListing
		packages []panel.PackageListing
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		websites, err = fetchWebsites(gctx, s.panel)
		return err
	})
	g.Go(func() error {
		result := s.panel.FetchPackages(gctx)
		if !result.Succeeded {
			s.logger.Warn("package listing failed", zap.String("code", string(result.Code)), zap.String("error", result.ErrorMessage))
			return nil
		}
		decoded, err := panel.DecodePackages(result.Payload)
		if err != nil {
			s.logger.Warn("package listing undecodable", zap.Error(err))
			return nil
		}
		packages = decoded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PanelOverview{
		Websites:    websites,
		Packages:    packages,
		Users:       usercache.GroupByAdmin(websites, now),
		GeneratedAt: now,
	}, nil
}

func sampleOverview(now time.Time) *PanelOverview {
	websites := []panel.WebsiteListing{{
		Domain:                "example.com",
		Admin:                 "admin",
		Package:               "Default",
		State:                 "Active",
		DiskUsed:              "150MB",
		MonthlyBandwidthUsage: "250",
		PHPVersion:            "8.1",
		SSL:                   "Yes",
		Created:               panel.Text(now.UTC().Format(time.RFC3339)),
	}}
	packages := []panel.PackageListing{{
		PackageName:    "Default",
		Description:    "Default hosting package",
		DiskSpace:      "1000",
		Bandwidth:      "1000",
		AllowedDomains: "1",
	}}
	return &PanelOverview{
		Websites:    websites,
		Packages:    packages,
		Users:       usercache.GroupByAdmin(websites, now),
		GeneratedAt: now,
		Mock:        true,
	}
}

// UserPanelData is the panel listing scoped to one account.
type UserPanelData struct {
	Username string
	IsAdmin  bool
	Websites []panel.WebsiteListing
	Packages []panel.PackageListing
}

// UserPanelData lists the caller's panel websites. Administrators see every
// site; other accounts see the sites the mirror attributes to them plus any
// listing whose admin is their username.
func (s *DashboardService) UserPanelData(ctx context.Context, principal *auth.Principal) (*UserPanelData, error) {
	username := principal.Username
	isAdmin := principal.IsAdmin() || (s.directory != nil && s.directory.IsUserAdmin(ctx, username))

	listings, err := fetchWebsites(ctx, s.panel)
	if err != nil {
		return nil, err
	}

	visible := listings
	if !isAdmin {
		owned := map[string]struct{}{}
		if s.directory != nil {
			for _, d := range s.directory.GetUserWebsites(ctx, username) {
				owned[d] = struct{}{}
			}
		}
		visible = make([]panel.WebsiteListing, 0, len(listings))
		for _, site := range listings {
			_, mine := owned[site.DomainName()]
			if mine || string(site.Admin) == username {
				visible = append(visible, site)
			}
		}
	}

	result := s.panel.FetchPackages(ctx)
	if !result.Succeeded {
		return nil, panelError("Failed to fetch packages from CyberPanel", result)
	}
	packages, err := panel.DecodePackages(result.Payload)
	if err != nil {
		return nil, apperrors.NewPanelFailure("Failed to fetch packages from CyberPanel", string(panel.CodeInvalidFormat), err.Error())
	}

	return &UserPanelData{
		Username: username,
		IsAdmin:  isAdmin,
		Websites: visible,
		Packages: packages,
	}, nil
}
