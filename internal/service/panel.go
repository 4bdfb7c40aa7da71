package service

import (
	"context"
	"encoding/json"

	"github.com/spec-kit/panel-dashboard/internal/panel"
	"github.com/spec-kit/panel-dashboard/internal/usercache"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

// PanelAPI is the set of panel operations the services use.
// *panel.Operations satisfies it.
type PanelAPI interface {
	CreateWebsite(ctx context.Context, domain, ownerEmail, packageName string) panel.Result
	DeleteWebsite(ctx context.Context, domain string) panel.Result
	CreateDatabase(ctx context.Context, dbName, dbUser, dbPassword, websiteDomain string) panel.Result
	CreateEmail(ctx context.Context, address, password string) panel.Result
	FetchWebsites(ctx context.Context, page, pageSize int) panel.Result
	FetchPackages(ctx context.Context) panel.Result
	VerifyLogin(ctx context.Context) panel.Result
	InstallSSL(ctx context.Context, domain, email string) panel.Result
}

// UserDirectory is the panel user mirror. *usercache.Cache satisfies it.
type UserDirectory interface {
	ListUsers(ctx context.Context) []usercache.User
	GetUser(ctx context.Context, identifier string) (usercache.User, bool)
	GetUserWebsites(ctx context.Context, identifier string) []string
	IsUserAdmin(ctx context.Context, identifier string) bool
	Expire()
}

const listingPageSize = 100

func panelError(summary string, result panel.Result) error {
	return apperrors.NewPanelFailure(summary, string(result.Code), result.ErrorMessage)
}

// payloadField reads a scalar field from an object payload, nil when absent.
func payloadField(payload json.RawMessage, key string) *string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil
	}
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var value panel.Text
	if err := json.Unmarshal(raw, &value); err != nil || value == "" {
		return nil
	}
	s := string(value)
	return &s
}

func fetchWebsites(ctx context.Context, api PanelAPI) ([]panel.WebsiteListing, error) {
	result := api.FetchWebsites(ctx, 1, listingPageSize)
	if !result.Succeeded {
		return nil, panelError("Failed to fetch websites from CyberPanel", result)
	}
	listings, err := panel.DecodeWebsites(result.Payload)
	if err != nil {
		return nil, apperrors.NewPanelFailure("Failed to fetch websites from CyberPanel", string(panel.CodeInvalidFormat), err.Error())
	}
	return listings, nil
}
