package domain

import (
	"strings"
	"time"
)

// WebsiteStatus mirrors the lifecycle of a hosted site.
type WebsiteStatus string

const (
	WebsiteStatusPending   WebsiteStatus = "PENDING"
	WebsiteStatusActive    WebsiteStatus = "ACTIVE"
	WebsiteStatusSuspended WebsiteStatus = "SUSPENDED"
	WebsiteStatusDeleted   WebsiteStatus = "DELETED"
)

// ParseWebsiteStatus accepts any casing.
func ParseWebsiteStatus(s string) (WebsiteStatus, bool) {
	switch status := WebsiteStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case WebsiteStatusPending, WebsiteStatusActive, WebsiteStatusSuspended, WebsiteStatusDeleted:
		return status, true
	}
	return "", false
}

const (
	DefaultPackage    = "Basic"
	DefaultPHPVersion = "8.1"
)

// Website is the local record of a site provisioned on the panel.
// Sizes are megabytes.
type Website struct {
	ID             string
	Domain         string
	UserID         string
	Package        string
	Status         WebsiteStatus
	PHPVersion     string
	SSLEnabled     bool
	CyberPanelID   *string
	IPAddress      *string
	StorageUsed    int64
	StorageLimit   int64
	BandwidthUsed  int64
	BandwidthLimit int64
	VisitorsCount  int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Populated by joins, never written.
	OwnerEmail string
	OwnerName  string
}

// WebsiteUsage is a usage sample for one domain.
type WebsiteUsage struct {
	Domain        string
	StorageUsed   int64
	BandwidthUsed int64
}
