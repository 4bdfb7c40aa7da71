package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/events"
	"github.com/spec-kit/panel-dashboard/internal/repository"
)

// ActivityRecorder turns domain events into activity log entries.
type ActivityRecorder struct {
	dispatcher events.Dispatcher
	activities repository.ActivityRepository
	logger     *zap.Logger
}

func NewActivityRecorder(dispatcher events.Dispatcher, activities repository.ActivityRepository, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRecorder{dispatcher: dispatcher, activities: activities, logger: logger}
}

// RegisterHandlers subscribes to events.
func (r *ActivityRecorder) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	events.SubscribeAll(r.dispatcher, r.record)
}

func (r *ActivityRecorder) record(ctx context.Context, event events.Event) error {
	activity := describe(event)
	activity.UserID = event.Actor.UserID
	activity.Metadata = metadataOf(event.Payload)

	if err := r.activities.Create(ctx, &activity); err != nil {
		return fmt.Errorf("record activity for %s: %w", event.Type, err)
	}
	r.logger.Debug("activity recorded",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("activity_id", activity.ID))
	return nil
}

func describe(event events.Event) domain.Activity {
	switch p := event.Payload.(type) {
	case events.WebsitePayload:
		switch event.Type {
		case events.EventWebsiteCreated:
			return domain.Activity{Action: "Website Created", Description: fmt.Sprintf("Website %s created successfully", p.Domain), Type: domain.ActivityAdmin}
		case events.EventWebsiteUpdated:
			return domain.Activity{Action: "Website Updated", Description: fmt.Sprintf("Website %s was updated by admin", p.Domain), Type: domain.ActivityAdmin}
		case events.EventWebsiteDeleted:
			return domain.Activity{Action: "Website Deleted", Description: fmt.Sprintf("Website %s was deleted by admin", p.Domain), Type: domain.ActivityAdmin}
		case events.EventWebsiteProvisioned:
			return domain.Activity{Action: "Website Provisioned", Description: fmt.Sprintf("Website %s created in CyberPanel", p.Domain), Type: domain.ActivityWebsite}
		case events.EventWebsiteDeprovisioned:
			return domain.Activity{Action: "Website Removed", Description: fmt.Sprintf("Website %s deleted from CyberPanel", p.Domain), Type: domain.ActivityWebsite}
		}
	case events.StepPayload:
		label := map[events.EventType]string{
			events.EventDatabaseCreated: "Database",
			events.EventEmailCreated:    "Email Account",
			events.EventSSLIssued:       "SSL Certificate",
		}[event.Type]
		if label == "" {
			break
		}
		if p.Succeeded {
			return domain.Activity{Action: label + " Created", Description: fmt.Sprintf("%s %s created for %s", label, p.Target, p.Domain), Type: domain.ActivityWebsite}
		}
		return domain.Activity{Action: label + " Failed", Description: fmt.Sprintf("%s %s for %s failed: %s", label, p.Target, p.Domain, p.Error), Type: domain.ActivityWebsite}
	case events.StatsPayload:
		return domain.Activity{Action: "Statistics Updated", Description: fmt.Sprintf("Website statistics updated from panel usage (%d websites)", p.Updated), Type: domain.ActivitySystem}
	}
	return domain.Activity{Action: string(event.Type), Description: string(event.Type), Type: domain.ActivitySystem}
}

func metadataOf(payload interface{}) map[string]any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
