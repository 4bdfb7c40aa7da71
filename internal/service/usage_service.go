package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/events"
	"github.com/spec-kit/panel-dashboard/internal/repository"
)

// UsageService copies disk and bandwidth usage from the panel listing into
// the local website records.
type UsageService struct {
	websites   repository.WebsiteRepository
	users      repository.UserRepository
	panel      PanelAPI
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UsageDependencies bundles collaborators for usage sync.
type UsageDependencies struct {
	WebsiteRepo repository.WebsiteRepository
	UserRepo    repository.UserRepository
	Panel       PanelAPI
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

func NewUsageService(deps UsageDependencies) *UsageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageService{
		websites:   deps.WebsiteRepo,
		users:      deps.UserRepo,
		panel:      deps.Panel,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// UsageReport counts listing entries that matched a local record and those
// that did not.
type UsageReport struct {
	Listed    int `json:"listed"`
	Updated   int `json:"updated"`
	Unmatched int `json:"unmatched"`
}

// Sync runs one pass. actor may be empty for scheduled runs; the activity is
// then attributed to the first administrator, if any.
func (s *UsageService) Sync(ctx context.Context, actor Actor) (*UsageReport, error) {
	listings, err := fetchWebsites(ctx, s.panel)
	if err != nil {
		return nil, err
	}

	report := &UsageReport{Listed: len(listings)}
	for _, site := range listings {
		name := site.DomainName()
		if name == "" {
			continue
		}
		found, err := s.websites.UpdateUsage(ctx, domain.WebsiteUsage{
			Domain:        name,
			StorageUsed:   int64(site.DiskUsed.Int()),
			BandwidthUsed: int64(site.MonthlyBandwidthUsage.Int()),
		})
		if err != nil {
			return nil, err
		}
		if found {
			report.Updated++
		} else {
			report.Unmatched++
		}
	}

	s.logger.Info("usage sync finished",
		zap.Int("listed", report.Listed),
		zap.Int("updated", report.Updated),
		zap.Int("unmatched", report.Unmatched))

	if s.dispatcher != nil {
		eventActor := events.Actor{UserID: optionalID(actor.UserID), Email: actor.Email}
		if eventActor.UserID == nil {
			eventActor.UserID = s.firstAdminID(ctx)
		}
		_ = s.dispatcher.Publish(ctx, events.New(events.EventStatsUpdated, eventActor, events.StatsPayload{
			Updated:   report.Updated,
			Unmatched: report.Unmatched,
		}))
	}
	return report, nil
}

func (s *UsageService) firstAdminID(ctx context.Context) *string {
	admin, err := s.users.FirstAdmin(ctx)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("admin lookup failed", zap.Error(err))
		}
		return nil
	}
	return &admin.ID
}
