package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/panel-dashboard/internal/panel"
	"github.com/spec-kit/panel-dashboard/internal/service"
	"github.com/spec-kit/panel-dashboard/internal/usercache"
)

// ProvisionRequest creates a panel website with an optional database and
// mailbox. The secondary resources are only created when their flag is set
// and every field they need is present.
type ProvisionRequest struct {
	Domain           string `json:"domain" validate:"required,fqdn"`
	OwnerEmail       string `json:"ownerEmail" validate:"required,email"`
	PackageName      string `json:"packageName"`
	PHPVersion       string `json:"phpVersion"`
	CreateDatabase   bool   `json:"createDatabase"`
	DatabaseName     string `json:"databaseName"`
	DatabaseUser     string `json:"databaseUser"`
	DatabasePassword string `json:"databasePassword"`
	CreateEmail      bool   `json:"createEmail"`
	EmailAddress     string `json:"emailAddress" validate:"omitempty,email"`
	EmailPassword    string `json:"emailPassword"`
}

func (r ProvisionRequest) ToInput() service.ProvisionInput {
	input := service.ProvisionInput{
		Domain:      r.Domain,
		OwnerEmail:  r.OwnerEmail,
		PackageName: r.PackageName,
	}
	if input.PackageName == "" {
		input.PackageName = "Default"
	}
	if r.CreateDatabase {
		input.Database = &service.DatabaseRequest{Name: r.DatabaseName, User: r.DatabaseUser, Password: r.DatabasePassword}
	}
	if r.CreateEmail {
		input.Mailbox = &service.MailboxRequest{Address: r.EmailAddress, Password: r.EmailPassword}
	}
	return input
}

// PanelWebsite is a panel listing entry in dashboard form. Sizes are MB.
type PanelWebsite struct {
	ID             string `json:"id"`
	Domain         string `json:"domain"`
	Status         string `json:"status"`
	Owner          string `json:"owner"`
	Created        string `json:"created"`
	Plan           string `json:"plan"`
	DiskUsed       int    `json:"diskUsed"`
	DiskLimit      int    `json:"diskLimit"`
	BandwidthUsed  int    `json:"bandwidthUsed"`
	BandwidthLimit int    `json:"bandwidthLimit"`
	PHPVersion     string `json:"phpVersion"`
	SSL            bool   `json:"ssl"`
}

type PackageLimits struct {
	Websites      int `json:"websites"`
	EmailAccounts int `json:"emailAccounts"`
	Databases     int `json:"databases"`
	Bandwidth     int `json:"bandwidth"`
	Storage       int `json:"storage"`
}

type PanelPackage struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       int           `json:"price"`
	Features    []string      `json:"features"`
	Limits      PackageLimits `json:"limits"`
}

type PanelUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Websites  int    `json:"websites"`
	Created   string `json:"created"`
	LastLogin string `json:"lastLogin"`
	Status    string `json:"status"`
}

type PanelStats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalWebsites     int `json:"totalWebsites"`
	ActiveWebsites    int `json:"activeWebsites"`
	SuspendedWebsites int `json:"suspendedWebsites"`
	TotalBandwidth    int `json:"totalBandwidth"`
	TotalStorage      int `json:"totalStorage"`
	TotalPackages     int `json:"totalPackages"`
}

// PanelOverviewResponse is the live panel view. Mock marks sample data.
type PanelOverviewResponse struct {
	Websites []PanelWebsite `json:"websites"`
	Users    []PanelUser    `json:"users"`
	Packages []PanelPackage `json:"packages"`
	Stats    PanelStats     `json:"stats"`
	Mock     bool           `json:"mock,omitempty"`
}

const defaultQuotaMB = 1000

func NewPanelOverviewResponse(o *service.PanelOverview) PanelOverviewResponse {
	generated := o.GeneratedAt.UTC().Format(time.RFC3339)

	websites := make([]PanelWebsite, 0, len(o.Websites))
	var stats PanelStats
	for _, site := range o.Websites {
		w := newPanelWebsite(site, generated)
		websites = append(websites, w)
		if w.Status == "suspended" {
			stats.SuspendedWebsites++
		} else {
			stats.ActiveWebsites++
		}
		stats.TotalBandwidth += w.BandwidthUsed
		stats.TotalStorage += w.DiskUsed
	}

	packages := make([]PanelPackage, 0, len(o.Packages))
	for _, pkg := range o.Packages {
		packages = append(packages, newPanelPackage(pkg))
	}

	users := make([]PanelUser, 0, len(o.Users))
	for _, u := range o.Users {
		users = append(users, newPanelUser(u, generated))
	}

	stats.TotalUsers = len(users)
	if stats.TotalUsers == 0 {
		stats.TotalUsers = 1
	}
	stats.TotalWebsites = len(websites)
	stats.TotalPackages = len(packages)

	return PanelOverviewResponse{
		Websites: websites,
		Users:    users,
		Packages: packages,
		Stats:    stats,
		Mock:     o.Mock,
	}
}

func newPanelWebsite(site panel.WebsiteListing, now string) PanelWebsite {
	status := "active"
	if site.Suspended() {
		status = "suspended"
	}
	return PanelWebsite{
		ID:             site.DomainName(),
		Domain:         site.DomainName(),
		Status:         status,
		Owner:          site.Owner(),
		Created:        or(string(site.Created), now),
		Plan:           or(string(site.Package), "Default"),
		DiskUsed:       site.DiskUsed.Int(),
		DiskLimit:      defaultQuotaMB,
		BandwidthUsed:  site.MonthlyBandwidthUsage.Int(),
		BandwidthLimit: defaultQuotaMB,
		PHPVersion:     or(string(site.PHPVersion), "8.1"),
		SSL:            site.HasSSL(),
	}
}

func newPanelPackage(pkg panel.PackageListing) PanelPackage {
	name := pkg.DisplayName()
	return PanelPackage{
		ID:          name,
		Name:        name,
		Description: or(string(pkg.Description), "Package: "+name),
		Features: []string{
			fmt.Sprintf("%s MB Disk Space", or(string(pkg.DiskSpace), "1000")),
			fmt.Sprintf("%s MB Bandwidth", or(string(pkg.Bandwidth), "1000")),
			fmt.Sprintf("%s Email Accounts", or(string(pkg.EmailAccounts), "Unlimited")),
			fmt.Sprintf("%s Databases", or(string(pkg.DataBases), "Unlimited")),
			fmt.Sprintf("%s FTP Accounts", or(string(pkg.FTPAccounts), "Unlimited")),
		},
		Limits: PackageLimits{
			Websites:      orInt(pkg.AllowedDomains.Int(), 1),
			EmailAccounts: orInt(pkg.EmailAccounts.Int(), -1),
			Databases:     orInt(pkg.DataBases.Int(), -1),
			Bandwidth:     orInt(pkg.Bandwidth.Int(), defaultQuotaMB),
			Storage:       orInt(pkg.DiskSpace.Int(), defaultQuotaMB),
		},
	}
}

func newPanelUser(u usercache.User, now string) PanelUser {
	return PanelUser{
		ID:        u.ID,
		Name:      u.DisplayName,
		Email:     u.Email,
		Role:      u.Role,
		Websites:  len(u.Websites),
		Created:   stamp(u.CreatedAt, now),
		LastLogin: stamp(u.LastLoginAt, now),
		Status:    or(u.Status, usercache.StatusActive),
	}
}

func stamp(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return t.UTC().Format(time.RFC3339)
}

// UserPanelDataResponse is the panel listing scoped to the caller.
type UserPanelDataResponse struct {
	User     UserPanelSummary       `json:"user"`
	Websites []UserPanelWebsite     `json:"websites"`
	Packages []panel.PackageListing `json:"packages"`
	Stats    UserPanelStats         `json:"stats"`
}

type UserPanelSummary struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	WebsiteCount int    `json:"websiteCount"`
}

type UserPanelWebsite struct {
	Domain    string `json:"domain"`
	Package   string `json:"package"`
	State     string `json:"state"`
	DiskUsed  string `json:"diskUsed"`
	IPAddress string `json:"ipAddress"`
}

type UserPanelStats struct {
	TotalWebsites     int    `json:"totalWebsites"`
	ActiveWebsites    int    `json:"activeWebsites"`
	TotalDiskUsage    string `json:"totalDiskUsage"`
	AvailablePackages int    `json:"availablePackages"`
}

func NewUserPanelDataResponse(d *service.UserPanelData) UserPanelDataResponse {
	role := usercache.RoleUser
	if d.IsAdmin {
		role = usercache.RoleAdmin
	}
	websites := make([]UserPanelWebsite, 0, len(d.Websites))
	active, disk := 0, 0
	for _, site := range d.Websites {
		if site.Active() {
			active++
		}
		disk += site.DiskUsed.Int()
		websites = append(websites, UserPanelWebsite{
			Domain:    site.DomainName(),
			Package:   string(site.Package),
			State:     string(site.State),
			DiskUsed:  or(string(site.DiskUsed), "0MB"),
			IPAddress: string(site.IPAddress),
		})
	}
	packages := d.Packages
	if packages == nil {
		packages = []panel.PackageListing{}
	}
	return UserPanelDataResponse{
		User:     UserPanelSummary{Username: d.Username, Role: role, WebsiteCount: len(websites)},
		Websites: websites,
		Packages: packages,
		Stats: UserPanelStats{
			TotalWebsites:     len(websites),
			ActiveWebsites:    active,
			TotalDiskUsage:    fmt.Sprintf("%dMB", disk),
			AvailablePackages: len(packages),
		},
	}
}

// StatusResponse reports panel connectivity. Secrets are only reported as
// set or unset.
type StatusResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Services    StatusServices    `json:"services"`
	Environment StatusEnvironment `json:"environment"`
}

type StatusServices struct {
	CyberPanel PanelStatus `json:"cyberPanel"`
}

type PanelStatus struct {
	Status string  `json:"status"`
	Code   string  `json:"code,omitempty"`
	Error  *string `json:"error"`
}

type StatusEnvironment struct {
	AppEnv                string `json:"appEnv"`
	CyberPanelURL         string `json:"cyberPanelUrl"`
	CyberPanelUsername    string `json:"cyberPanelUsername"`
	CyberPanelPasswordSet bool   `json:"cyberPanelPasswordSet"`
	CyberPanelTokenSet    bool   `json:"cyberPanelTokenSet"`
}

func NewStatusResponse(r service.StatusReport) StatusResponse {
	panelStatus := PanelStatus{Status: "connected"}
	if !r.PanelConnected {
		msg := r.PanelError
		panelStatus = PanelStatus{Status: "failed", Code: string(r.PanelCode), Error: &msg}
	}
	return StatusResponse{
		Status:    "ok",
		Timestamp: r.Timestamp,
		Services:  StatusServices{CyberPanel: panelStatus},
		Environment: StatusEnvironment{
			AppEnv:                r.AppEnv,
			CyberPanelURL:         r.PanelURL,
			CyberPanelUsername:    r.PanelUsername,
			CyberPanelPasswordSet: r.PanelPasswordSet,
			CyberPanelTokenSet:    r.PanelTokenSet,
		},
	}
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
