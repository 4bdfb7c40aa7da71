package dto

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/panel"
	"github.com/spec-kit/panel-dashboard/internal/repository"
	"github.com/spec-kit/panel-dashboard/internal/service"
	"github.com/spec-kit/panel-dashboard/internal/usercache"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

func TestSizeFormatting(t *testing.T) {
	assert.Equal(t, "0 GB", GB(0))
	assert.Equal(t, "10 GB", GB(10*1024))
	assert.Equal(t, "2 GB", GB(1600))
	assert.Equal(t, "0.15 GB", PreciseGB(150))
	assert.Equal(t, "0.1 GB", PreciseGB(102))
	assert.Equal(t, "2 GB", PreciseGB(2048))
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&LoginRequest{Email: "a@b.com", Password: "x"}))

	err := v.Validate(&CreateWebsiteRequest{Domain: "not a domain", Owner: "nope"})
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	fields := domainErr.Details["fields"].(map[string]any)
	assert.Contains(t, fields, "domain")
	assert.Contains(t, fields, "owner")

	err = v.Validate(&LoginRequest{Password: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
}

func TestProvisionRequest_ToInput(t *testing.T) {
	req := ProvisionRequest{
		Domain:         "a.com",
		OwnerEmail:     "o@a.com",
		DatabaseName:   "db",
		CreateEmail:    true,
		EmailAddress:   "info@a.com",
		EmailPassword:  "pw",
		CreateDatabase: false,
	}
	input := req.ToInput()
	assert.Equal(t, "Default", input.PackageName)
	assert.Nil(t, input.Database)
	require.NotNil(t, input.Mailbox)
	assert.Equal(t, "info@a.com", input.Mailbox.Address)
}

func TestNewPanelOverviewResponse(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	websites := []panel.WebsiteListing{
		{Domain: "a.com", Admin: "jane", State: "Active", DiskUsed: "120MB", MonthlyBandwidthUsage: "30", SSL: "Yes", Created: "2025-05-01"},
		{WebsiteName: "b.com", State: "Suspended", Package: "Pro"},
	}
	overview := &service.PanelOverview{
		Websites:    websites,
		Packages:    []panel.PackageListing{{Name: "Pro", DiskSpace: "5000", AllowedDomains: "3"}},
		Users:       usercache.GroupByAdmin(websites, now),
		GeneratedAt: now,
	}

	resp := NewPanelOverviewResponse(overview)

	require.Len(t, resp.Websites, 2)
	a, b := resp.Websites[0], resp.Websites[1]
	assert.Equal(t, PanelWebsite{
		ID: "a.com", Domain: "a.com", Status: "active", Owner: "jane", Created: "2025-05-01",
		Plan: "Default", DiskUsed: 120, DiskLimit: 1000, BandwidthUsed: 30, BandwidthLimit: 1000,
		PHPVersion: "8.1", SSL: true,
	}, a)
	assert.Equal(t, "suspended", b.Status)
	assert.Equal(t, "admin", b.Owner)
	assert.Equal(t, "2026-01-02T03:04:05Z", b.Created)

	require.Len(t, resp.Packages, 1)
	pkg := resp.Packages[0]
	assert.Equal(t, "Package: Pro", pkg.Description)
	assert.Equal(t, []string{
		"5000 MB Disk Space",
		"1000 MB Bandwidth",
		"Unlimited Email Accounts",
		"Unlimited Databases",
		"Unlimited FTP Accounts",
	}, pkg.Features)
	assert.Equal(t, PackageLimits{Websites: 3, EmailAccounts: -1, Databases: -1, Bandwidth: 1000, Storage: 5000}, pkg.Limits)

	assert.Equal(t, PanelStats{
		TotalUsers: 2, TotalWebsites: 2, ActiveWebsites: 1, SuspendedWebsites: 1,
		TotalBandwidth: 30, TotalStorage: 120, TotalPackages: 1,
	}, resp.Stats)
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "Jane", resp.Users[0].Name)
	assert.Equal(t, 1, resp.Users[0].Websites)
	assert.Equal(t, "2026-01-02T03:04:05Z", resp.Users[0].Created)
	assert.Equal(t, "2026-01-02T03:04:05Z", resp.Users[0].LastLogin)
	assert.Equal(t, "active", resp.Users[0].Status)
}

func TestNewUserPanelDataResponse(t *testing.T) {
	resp := NewUserPanelDataResponse(&service.UserPanelData{
		Username: "jane",
		Websites: []panel.WebsiteListing{
			{Domain: "a.com", State: "Active", DiskUsed: "100MB", IPAddress: "10.0.0.1"},
			{Domain: "b.com", State: "Suspended"},
		},
	})

	assert.Equal(t, UserPanelSummary{Username: "jane", Role: "user", WebsiteCount: 2}, resp.User)
	assert.Equal(t, "0MB", resp.Websites[1].DiskUsed)
	assert.Equal(t, UserPanelStats{TotalWebsites: 2, ActiveWebsites: 1, TotalDiskUsage: "100MB", AvailablePackages: 0}, resp.Stats)
	assert.NotNil(t, resp.Packages)
}

func TestNewAdminStatsResponse(t *testing.T) {
	resp := NewAdminStatsResponse(4, repository.WebsiteTotals{Total: 3, Active: 2, StorageUsed: 3072, StorageLimit: 10240, BandwidthUsed: 512},
		[]domain.Activity{{Action: "Website Created", UserEmail: "a@b.com"}})

	assert.Equal(t, "10 GB", resp.TotalStorage)
	assert.Equal(t, "3 GB", resp.UsedStorage)
	assert.Equal(t, "1 GB", resp.Bandwidth)
	require.Len(t, resp.RecentActivities, 1)
	assert.Equal(t, "a@b.com", resp.RecentActivities[0].User)
}

func TestNewStatusResponse_HidesSecrets(t *testing.T) {
	resp := NewStatusResponse(service.StatusReport{PanelCode: panel.CodeNotConfigured, PanelError: "not configured", PanelPasswordSet: true})

	assert.Equal(t, "failed", resp.Services.CyberPanel.Status)
	assert.Equal(t, "NOT_CONFIGURED", resp.Services.CyberPanel.Code)
	assert.True(t, resp.Environment.CyberPanelPasswordSet)
}
