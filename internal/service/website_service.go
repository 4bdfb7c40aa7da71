package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/events"
	"github.com/spec-kit/panel-dashboard/internal/repository"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

// WebsiteService manages the local website records and keeps the panel in step.
type WebsiteService struct {
	websites   repository.WebsiteRepository
	users      repository.UserRepository
	panel      PanelAPI
	directory  UserDirectory
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// WebsiteDependencies bundles collaborators for the website service.
type WebsiteDependencies struct {
	WebsiteRepo repository.WebsiteRepository
	UserRepo    repository.UserRepository
	Panel       PanelAPI
	Directory   UserDirectory
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

func NewWebsiteService(deps WebsiteDependencies) *WebsiteService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebsiteService{
		websites:   deps.WebsiteRepo,
		users:      deps.UserRepo,
		panel:      deps.Panel,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID string
	Email  string
}

// CreateWebsiteInput describes an admin website creation.
type CreateWebsiteInput struct {
	Domain     string
	OwnerEmail string
	Plan       string
	PHPVersion string
	SSLEnabled bool
}

func (s *WebsiteService) List(ctx context.Context) ([]domain.Website, error) {
	return s.websites.List(ctx)
}

// Create provisions the site on the panel, then records it locally. The
// owner is resolved before the panel call so a missing owner never leaves an
// orphaned panel site. SSL issuance is best effort.
func (s *WebsiteService) Create(ctx context.Context, actor Actor, input CreateWebsiteInput) (*domain.Website, error) {
	name := normalizeDomain(input.Domain)
	ownerEmail := strings.TrimSpace(input.OwnerEmail)

	owner, err := s.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("Owner user not found", map[string]any{"owner": ownerEmail})
		}
		return nil, err
	}
	if _, err := s.websites.GetByDomain(ctx, name); err == nil {
		return nil, apperrors.NewConflict("website already exists", map[string]any{"domain": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	result := s.panel.CreateWebsite(ctx, name, ownerEmail, input.Plan)
	if !result.Succeeded {
		return nil, panelError("Failed to create website in CyberPanel", result)
	}

	plan := input.Plan
	if plan == "" {
		plan = domain.DefaultPackage
	}
	phpVersion := input.PHPVersion
	if phpVersion == "" {
		phpVersion = domain.DefaultPHPVersion
	}
	limits := domain.LimitsForPlan(plan)

	website := &domain.Website{
		Domain:         name,
		UserID:         owner.ID,
		Package:        plan,
		Status:         domain.WebsiteStatusActive,
		PHPVersion:     phpVersion,
		SSLEnabled:     input.SSLEnabled,
		CyberPanelID:   payloadField(result.Payload, "websiteId"),
		IPAddress:      payloadField(result.Payload, "ipAddress"),
		StorageLimit:   limits.StorageMB,
		BandwidthLimit: limits.BandwidthMB,
		OwnerEmail:     owner.Email,
		OwnerName:      owner.Name,
	}
	if err := s.websites.Create(ctx, website); err != nil {
		s.logger.Error("website created on panel but not recorded locally",
			zap.String("domain", name), zap.Error(err))
		return nil, err
	}
	s.invalidateDirectory()

	ownerActor := events.Actor{UserID: &owner.ID, Email: actor.Email}
	s.publish(ctx, events.New(events.EventWebsiteCreated, ownerActor, events.WebsitePayload{
		WebsiteID:  website.ID,
		Domain:     name,
		Owner:      owner.Email,
		Plan:       input.Plan,
		PHPVersion: input.PHPVersion,
		SSLEnabled: input.SSLEnabled,
		ChangedBy:  actor.Email,
	}))

	if input.SSLEnabled {
		ssl := s.panel.InstallSSL(ctx, name, ownerEmail)
		if !ssl.Succeeded {
			s.logger.Warn("SSL installation failed", zap.String("domain", name),
				zap.String("code", string(ssl.Code)), zap.String("error", ssl.ErrorMessage))
		}
		s.publish(ctx, events.New(events.EventSSLIssued, ownerActor, events.StepPayload{
			Domain: name, Target: name, Succeeded: ssl.Succeeded, Error: ssl.Err(),
		}))
	}

	return website, nil
}

// UpdateWebsiteInput carries optional changes; nil fields are left alone.
type UpdateWebsiteInput struct {
	Status  *string
	Package *string
}

func (s *WebsiteService) Update(ctx context.Context, actor Actor, id string, input UpdateWebsiteInput) (*domain.Website, error) {
	website, err := s.websites.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("website", map[string]any{"id": id})
		}
		return nil, err
	}

	changes := map[string]any{}
	if input.Status != nil && *input.Status != "" {
		status, ok := domain.ParseWebsiteStatus(*input.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		website.Status = status
		changes["status"] = status
	}
	if input.Package != nil && *input.Package != "" {
		website.Package = *input.Package
		limits := domain.LimitsForPlan(website.Package)
		website.StorageLimit = limits.StorageMB
		website.BandwidthLimit = limits.BandwidthMB
		changes["package"] = website.Package
	}

	if err := s.websites.Update(ctx, website); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.EventWebsiteUpdated, events.Actor{UserID: &website.UserID, Email: actor.Email}, events.WebsitePayload{
		WebsiteID: website.ID,
		Domain:    website.Domain,
		ChangedBy: actor.Email,
		Changes:   changes,
	}))
	return website, nil
}

// Delete removes the site from the panel when possible, then drops the local
// record. A panel failure is logged and does not block the local delete.
func (s *WebsiteService) Delete(ctx context.Context, actor Actor, id string) error {
	website, err := s.websites.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("website", map[string]any{"id": id})
		}
		return err
	}

	if result := s.panel.DeleteWebsite(ctx, website.Domain); !result.Succeeded {
		s.logger.Warn("panel deletion failed", zap.String("domain", website.Domain),
			zap.String("code", string(result.Code)), zap.String("error", result.ErrorMessage))
	}

	if err := s.websites.Delete(ctx, website.ID); err != nil {
		return err
	}
	s.invalidateDirectory()

	s.publish(ctx, events.New(events.EventWebsiteDeleted, events.Actor{UserID: &website.UserID, Email: actor.Email}, events.WebsitePayload{
		WebsiteID: website.ID,
		Domain:    website.Domain,
		ChangedBy: actor.Email,
	}))
	return nil
}

func (s *WebsiteService) invalidateDirectory() {
	if s.directory != nil {
		s.directory.Expire()
	}
}

func (s *WebsiteService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}
