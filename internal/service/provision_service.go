package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/events"
	"github.com/spec-kit/panel-dashboard/internal/panel"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

// ProvisionService drives the panel directly, without a local website record.
type ProvisionService struct {
	panel      PanelAPI
	directory  UserDirectory
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProvisionDependencies bundles collaborators for the provisioning service.
type ProvisionDependencies struct {
	Panel      PanelAPI
	Directory  UserDirectory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

func NewProvisionService(deps ProvisionDependencies) *ProvisionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisionService{
		panel:      deps.Panel,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// DatabaseRequest asks for a database next to a new website.
type DatabaseRequest struct {
	Name     string
	User     string
	Password string
}

// MailboxRequest asks for a mailbox next to a new website.
type MailboxRequest struct {
	Address  string
	Password string
}

// ProvisionInput describes a website with optional secondary resources.
type ProvisionInput struct {
	Domain      string
	OwnerEmail  string
	PackageName string
	Database    *DatabaseRequest
	Mailbox     *MailboxRequest
}

// ProvisionResult reports each step. Database and Email are nil when the
// step was not requested.
type ProvisionResult struct {
	Website  panel.Result  `json:"website"`
	Database *panel.Result `json:"database"`
	Email    *panel.Result `json:"email"`
}

// Provision creates the website, then the requested database and mailbox.
// Only the website step decides the outcome; the others are best effort.
func (s *ProvisionService) Provision(ctx context.Context, actor Actor, input ProvisionInput) (*ProvisionResult, error) {
	name := normalizeDomain(input.Domain)
	website := s.panel.CreateWebsite(ctx, name, strings.TrimSpace(input.OwnerEmail), input.PackageName)
	if !website.Succeeded {
		return nil, panelError("Failed to create website in CyberPanel", website)
	}
	s.invalidateDirectory()

	eventActor := events.Actor{UserID: optionalID(actor.UserID), Email: actor.Email}
	s.publish(ctx, events.New(events.EventWebsiteProvisioned, eventActor, events.WebsitePayload{
		Domain:    name,
		Owner:     input.OwnerEmail,
		Plan:      input.PackageName,
		ChangedBy: actor.Email,
	}))

	out := &ProvisionResult{Website: website}

	if db := input.Database; db != nil && db.Name != "" && db.User != "" && db.Password != "" {
		result := s.panel.CreateDatabase(ctx, db.Name, db.User, db.Password, name)
		s.secondaryStep(ctx, eventActor, events.EventDatabaseCreated, name, db.Name, result)
		out.Database = &result
	}

	if mb := input.Mailbox; mb != nil && mb.Address != "" && mb.Password != "" {
		result := s.panel.CreateEmail(ctx, mb.Address, mb.Password)
		s.secondaryStep(ctx, eventActor, events.EventEmailCreated, name, mb.Address, result)
		out.Email = &result
	}

	return out, nil
}

// Deprovision deletes a website from the panel.
func (s *ProvisionService) Deprovision(ctx context.Context, actor Actor, domainName string) (panel.Result, error) {
	name := normalizeDomain(domainName)
	if name == "" {
		return panel.Result{}, apperrors.NewValidationError("Domain parameter is required", nil)
	}
	result := s.panel.DeleteWebsite(ctx, name)
	if !result.Succeeded {
		return result, panelError("Failed to delete website from CyberPanel", result)
	}
	s.invalidateDirectory()

	s.publish(ctx, events.New(events.EventWebsiteDeprovisioned,
		events.Actor{UserID: optionalID(actor.UserID), Email: actor.Email},
		events.WebsitePayload{Domain: name, ChangedBy: actor.Email}))
	return result, nil
}

func (s *ProvisionService) secondaryStep(ctx context.Context, actor events.Actor, eventType events.EventType, domainName, target string, result panel.Result) {
	if !result.Succeeded {
		s.logger.Warn("secondary provisioning step failed",
			zap.String("step", string(eventType)),
			zap.String("domain", domainName),
			zap.String("code", string(result.Code)),
			zap.String("error", result.ErrorMessage))
	}
	s.publish(ctx, events.New(eventType, actor, events.StepPayload{
		Domain:    domainName,
		Target:    target,
		Succeeded: result.Succeeded,
		Error:     result.Err(),
	}))
}

func (s *ProvisionService) invalidateDirectory() {
	if s.directory != nil {
		s.directory.Expire()
	}
}

func (s *ProvisionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
