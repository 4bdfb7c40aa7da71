package dto

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/repository"
)

// CreateWebsiteRequest is the admin website creation payload. Owner is the
// email of an existing local account.
type CreateWebsiteRequest struct {
	Domain     string `json:"domain" validate:"required,fqdn"`
	Owner      string `json:"owner" validate:"required,email"`
	Plan       string `json:"plan"`
	PHPVersion string `json:"phpVersion"`
	SSLEnabled bool   `json:"sslEnabled"`
}

// UpdateWebsiteRequest changes status and/or package; omitted fields are kept.
type UpdateWebsiteRequest struct {
	Status  *string `json:"status"`
	Package *string `json:"package"`
}

// WebsiteResponse is a website record in the admin listing.
type WebsiteResponse struct {
	ID            string `json:"id"`
	Domain        string `json:"domain"`
	Status        string `json:"status"`
	Owner         string `json:"owner"`
	Plan          string `json:"plan"`
	Created       string `json:"created"`
	StorageUsed   string `json:"storageUsed"`
	BandwidthUsed string `json:"bandwidthUsed"`
	VisitorsCount int64  `json:"visitorsCount"`
	SSLEnabled    bool   `json:"sslEnabled"`
	PHPVersion    string `json:"phpVersion"`
}

// CreatedWebsiteResponse echoes a created site with the panel's identifiers.
type CreatedWebsiteResponse struct {
	ID         string  `json:"id"`
	Domain     string  `json:"domain"`
	Owner      string  `json:"owner"`
	Plan       string  `json:"plan"`
	PHPVersion string  `json:"phpVersion"`
	SSLEnabled bool    `json:"sslEnabled"`
	WebsiteID  *string `json:"websiteId"`
	IPAddress  *string `json:"ipAddress"`
}

// ActivityResponse is one recent activity. User is only set in admin views.
type ActivityResponse struct {
	Action      string    `json:"action"`
	Description string    `json:"description"`
	User        string    `json:"user,omitempty"`
	Time        time.Time `json:"time"`
}

type AdminStatsResponse struct {
	TotalUsers       int                `json:"totalUsers"`
	TotalWebsites    int                `json:"totalWebsites"`
	ActiveWebsites   int                `json:"activeWebsites"`
	TotalStorage     string             `json:"totalStorage"`
	UsedStorage      string             `json:"usedStorage"`
	Bandwidth        string             `json:"bandwidth"`
	RecentActivities []ActivityResponse `json:"recentActivities"`
}

// UserStatsResponse aggregates the caller's websites.
type UserStatsResponse struct {
	TotalWebsites     int    `json:"totalWebsites"`
	ActiveWebsites    int    `json:"activeWebsites"`
	TotalStorage      string `json:"totalStorage"`
	UsedStorage       string `json:"usedStorage"`
	Bandwidth         string `json:"bandwidth"`
	ThisMonthVisitors int64  `json:"thisMonthVisitors"`
}

type UserWebsiteResponse struct {
	ID         string `json:"id"`
	Domain     string `json:"domain"`
	Status     string `json:"status"`
	Plan       string `json:"plan"`
	Storage    string `json:"storage"`
	Bandwidth  string `json:"bandwidth"`
	Visitors   int64  `json:"visitors"`
	Created    string `json:"created"`
	SSLEnabled bool   `json:"sslEnabled"`
	PHPVersion string `json:"phpVersion"`
}

type UserDashboardResponse struct {
	Stats      UserStatsResponse     `json:"stats"`
	Websites   []UserWebsiteResponse `json:"websites"`
	Activities []ActivityResponse    `json:"activities"`
}

// GB renders megabytes as whole gigabytes, e.g. "3 GB".
func GB(mb int64) string {
	return strconv.FormatInt(int64(math.Round(float64(mb)/1024)), 10) + " GB"
}

// PreciseGB renders megabytes as gigabytes rounded to two decimals without
// trailing zeros, e.g. "0.15 GB" or "2 GB".
func PreciseGB(mb int64) string {
	v := math.Round(float64(mb)/1024*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " GB"
}

func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func NewWebsiteResponse(w domain.Website) WebsiteResponse {
	return WebsiteResponse{
		ID:            w.ID,
		Domain:        w.Domain,
		Status:        strings.ToLower(string(w.Status)),
		Owner:         w.OwnerEmail,
		Plan:          w.Package,
		Created:       day(w.CreatedAt),
		StorageUsed:   PreciseGB(w.StorageUsed),
		BandwidthUsed: PreciseGB(w.BandwidthUsed),
		VisitorsCount: w.VisitorsCount,
		SSLEnabled:    w.SSLEnabled,
		PHPVersion:    w.PHPVersion,
	}
}

func NewWebsiteList(websites []domain.Website) []WebsiteResponse {
	out := make([]WebsiteResponse, 0, len(websites))
	for _, w := range websites {
		out = append(out, NewWebsiteResponse(w))
	}
	return out
}

func NewCreatedWebsiteResponse(w *domain.Website) CreatedWebsiteResponse {
	return CreatedWebsiteResponse{
		ID:         w.ID,
		Domain:     w.Domain,
		Owner:      w.OwnerEmail,
		Plan:       w.Package,
		PHPVersion: w.PHPVersion,
		SSLEnabled: w.SSLEnabled,
		WebsiteID:  w.CyberPanelID,
		IPAddress:  w.IPAddress,
	}
}

func NewActivityList(activities []domain.Activity, withUser bool) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		item := ActivityResponse{Action: a.Action, Description: a.Description, Time: a.CreatedAt}
		if withUser {
			item.User = a.UserEmail
		}
		out = append(out, item)
	}
	return out
}

func NewAdminStatsResponse(totalUsers int, totals repository.WebsiteTotals, recent []domain.Activity) AdminStatsResponse {
	return AdminStatsResponse{
		TotalUsers:       totalUsers,
		TotalWebsites:    totals.Total,
		ActiveWebsites:   totals.Active,
		TotalStorage:     GB(totals.StorageLimit),
		UsedStorage:      GB(totals.StorageUsed),
		Bandwidth:        GB(totals.BandwidthUsed),
		RecentActivities: NewActivityList(recent, true),
	}
}

func NewUserDashboardResponse(totals repository.WebsiteTotals, websites []domain.Website, activities []domain.Activity) UserDashboardResponse {
	sites := make([]UserWebsiteResponse, 0, len(websites))
	for _, w := range websites {
		sites = append(sites, UserWebsiteResponse{
			ID:         w.ID,
			Domain:     w.Domain,
			Status:     strings.ToLower(string(w.Status)),
			Plan:       w.Package,
			Storage:    PreciseGB(w.StorageUsed),
			Bandwidth:  PreciseGB(w.BandwidthUsed),
			Visitors:   w.VisitorsCount,
			Created:    day(w.CreatedAt),
			SSLEnabled: w.SSLEnabled,
			PHPVersion: w.PHPVersion,
		})
	}
	return UserDashboardResponse{
		Stats: UserStatsResponse{
			TotalWebsites:     totals.Total,
			ActiveWebsites:    totals.Active,
			TotalStorage:      GB(totals.StorageLimit),
			UsedStorage:       GB(totals.StorageUsed),
			Bandwidth:         GB(totals.BandwidthUsed),
			ThisMonthVisitors: totals.Visitors,
		},
		Websites:   sites,
		Activities: NewActivityList(activities, false),
	}
}
