package domain

import "time"

// ActivityType groups activity log entries.
type ActivityType string

const (
	ActivityUser    ActivityType = "USER_ACTION"
	ActivitySystem  ActivityType = "SYSTEM_ACTION"
	ActivityWebsite ActivityType = "WEBSITE_ACTION"
	ActivityAdmin   ActivityType = "ADMIN_ACTION"
)

// Activity is an immutable audit entry. UserID is nil for system actions
// without an actor.
type Activity struct {
	ID          string
	UserID      *string
	Action      string
	Description string
	Type        ActivityType
	Metadata    map[string]any
	CreatedAt   time.Time

	// Populated by joins.
	UserEmail string
}
