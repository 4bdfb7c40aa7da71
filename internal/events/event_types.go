package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventWebsiteCreated       EventType = "website_created"
	EventWebsiteUpdated       EventType = "website_updated"
	EventWebsiteDeleted       EventType = "website_deleted"
	EventWebsiteProvisioned   EventType = "website_provisioned"
	EventWebsiteDeprovisioned EventType = "website_deprovisioned"
	EventDatabaseCreated      EventType = "database_created"
	EventEmailCreated         EventType = "email_created"
	EventSSLIssued            EventType = "ssl_issued"
	EventStatsUpdated         EventType = "stats_updated"
)

// AllEventTypes lists every type, for subscribers that want everything.
var AllEventTypes = []EventType{
	EventWebsiteCreated,
	EventWebsiteUpdated,
	EventWebsiteDeleted,
	EventWebsiteProvisioned,
	EventWebsiteDeprovisioned,
	EventDatabaseCreated,
	EventEmailCreated,
	EventSSLIssued,
	EventStatsUpdated,
}

// Actor identifies who caused an event. UserID is the account the activity
// is recorded against; it is nil for system actions.
type Actor struct {
	UserID *string `json:"user_id,omitempty"`
	Email  string  `json:"email,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// WebsitePayload describes a website lifecycle change.
type WebsitePayload struct {
	WebsiteID  string         `json:"website_id,omitempty"`
	Domain     string         `json:"domain"`
	Owner      string         `json:"owner,omitempty"`
	Plan       string         `json:"plan,omitempty"`
	PHPVersion string         `json:"php_version,omitempty"`
	SSLEnabled bool           `json:"ssl_enabled,omitempty"`
	ChangedBy  string         `json:"changed_by,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
}

// StepPayload reports a secondary provisioning step.
type StepPayload struct {
	Domain    string `json:"domain"`
	Target    string `json:"target"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// StatsPayload summarizes a usage sync.
type StatsPayload struct {
	Updated   int `json:"updated"`
	Unmatched int `json:"unmatched"`
}
