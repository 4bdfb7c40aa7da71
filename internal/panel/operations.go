package panel

import (
	"context"
	"strings"
)

// Caller performs a raw panel operation. *Client satisfies it.
type Caller interface {
	Call(ctx context.Context, operation string, params map[string]any) Result
}

const (
	defaultPackage = "Default"
	websiteOwner   = "admin"
)

// Operations names the panel controllers the dashboard uses. Results are
// returned untouched; interpreting payloads is the caller's job.
type Operations struct {
	caller Caller
}

func NewOperations(caller Caller) *Operations {
	return &Operations{caller: caller}
}

// CreateWebsite provisions a site owned by the panel admin account.
func (o *Operations) CreateWebsite(ctx context.Context, domain, ownerEmail, packageName string) Result {
	if packageName == "" {
		packageName = defaultPackage
	}
	return o.caller.Call(ctx, "submitWebsiteCreation", map[string]any{
		"domainName":   domain,
		"ownerEmail":   ownerEmail,
		"packageName":  packageName,
		"websiteOwner": websiteOwner,
	})
}

func (o *Operations) DeleteWebsite(ctx context.Context, domain string) Result {
	return o.caller.Call(ctx, "submitWebsiteDeletion", map[string]any{"websiteName": domain})
}

func (o *Operations) CreateDatabase(ctx context.Context, dbName, dbUser, dbPassword, websiteDomain string) Result {
	return o.caller.Call(ctx, "submitDBCreation", map[string]any{
		"databaseWebsite": websiteDomain,
		"dbName":          dbName,
		"dbUsername":      dbUser,
		"dbPassword":      dbPassword,
	})
}

// CreateEmail creates a mailbox. The address is split at its last "@"; an
// address without both halves fails locally without reaching the panel.
func (o *Operations) CreateEmail(ctx context.Context, address, password string) Result {
	at := strings.LastIndex(address, "@")
	if at <= 0 || at == len(address)-1 {
		return failure(CodeUnknown, "invalid email address: "+address)
	}
	return o.caller.Call(ctx, "submitEmailCreation", map[string]any{
		"domain":   address[at+1:],
		"userName": address[:at],
		"password": password,
	})
}

func (o *Operations) FetchWebsites(ctx context.Context, page, pageSize int) Result {
	return o.caller.Call(ctx, "fetchWebsites", map[string]any{
		"page":          page,
		"recordsToShow": pageSize,
	})
}

func (o *Operations) FetchPackages(ctx context.Context) Result {
	return o.caller.Call(ctx, "fetchPackages", nil)
}

// VerifyLogin checks the configured credentials.
func (o *Operations) VerifyLogin(ctx context.Context) Result {
	return o.caller.Call(ctx, "verifyLogin", nil)
}

func (o *Operations) InstallSSL(ctx context.Context, domain, email string) Result {
	return o.caller.Call(ctx, "issueSSL", map[string]any{
		"domainName": domain,
		"email":      email,
	})
}

func (o *Operations) GetWebsiteDetails(ctx context.Context, domain string) Result {
	return o.caller.Call(ctx, "getWebsiteDetails", map[string]any{"domainName": domain})
}

func (o *Operations) CreateBackup(ctx context.Context, domain string) Result {
	return o.caller.Call(ctx, "submitBackupCreation", map[string]any{"websiteName": domain})
}

func (o *Operations) FetchUsers(ctx context.Context) Result {
	return o.caller.Call(ctx, "fetchUsers", nil)
}

func (o *Operations) FetchChildUsers(ctx context.Context) Result {
	return o.caller.Call(ctx, "fetchChildUsers", nil)
}
