package panel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text is a panel scalar. The panel mixes strings, numbers and booleans for
// the same field across versions, so everything is kept as text.
type Text string

func (t *Text) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		*t = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		return fmt.Errorf("panel: expected scalar, got %s", raw)
	}
	*t = Text(raw)
	return nil
}

// Int parses the leading integer, ignoring units such as "MB".
func (t Text) Int() int {
	s := strings.TrimSpace(string(t))
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && s[end] == '-') {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Truthy mirrors the panel's loose yes/no fields.
func (t Text) Truthy() bool {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// WebsiteListing is one entry of the fetchWebsites listing.
type WebsiteListing struct {
	Domain                Text `json:"domain"`
	WebsiteName           Text `json:"websiteName"`
	Name                  Text `json:"name"`
	Admin                 Text `json:"admin"`
	AdminEmail            Text `json:"adminEmail"`
	Package               Text `json:"package"`
	State                 Text `json:"state"`
	DiskUsed              Text `json:"diskUsed"`
	MonthlyBandwidthUsage Text `json:"monthlyBandwidthUsage"`
	IPAddress             Text `json:"ipAddress"`
	PHPVersion            Text `json:"phpVersion"`
	SSL                   Text `json:"ssl"`
	SSLIssued             Text `json:"sslIssued"`
	Created               Text `json:"created"`
}

// DomainName returns the first non-empty of domain, websiteName and name.
func (w WebsiteListing) DomainName() string {
	for _, v := range []Text{w.Domain, w.WebsiteName, w.Name} {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

// Owner returns the owning panel account, "admin" when unset.
func (w WebsiteListing) Owner() string {
	if w.Admin == "" {
		return "admin"
	}
	return string(w.Admin)
}

func (w WebsiteListing) Suspended() bool { return w.State == "Suspended" }

func (w WebsiteListing) Active() bool { return w.State == "Active" }

func (w WebsiteListing) HasSSL() bool { return w.SSL == "Yes" || w.SSLIssued.Truthy() }

// PackageListing is one entry of the fetchPackages listing.
type PackageListing struct {
	PackageName    Text `json:"packageName"`
	Name           Text `json:"name"`
	Description    Text `json:"description"`
	DiskSpace      Text `json:"diskSpace"`
	Bandwidth      Text `json:"bandwidth"`
	EmailAccounts  Text `json:"emailAccounts"`
	DataBases      Text `json:"dataBases"`
	FTPAccounts    Text `json:"ftpAccounts"`
	AllowedDomains Text `json:"allowedDomains"`
}

func (p PackageListing) DisplayName() string {
	if p.PackageName != "" {
		return string(p.PackageName)
	}
	return string(p.Name)
}

// DecodeWebsites decodes a fetchWebsites payload.
func DecodeWebsites(payload json.RawMessage) ([]WebsiteListing, error) {
	var out []WebsiteListing
	if err := decodeList(payload, &out); err != nil {
		return nil, fmt.Errorf("decode websites: %w", err)
	}
	return out, nil
}

// DecodePackages decodes a fetchPackages payload.
func DecodePackages(payload json.RawMessage) ([]PackageListing, error) {
	var out []PackageListing
	if err := decodeList(payload, &out); err != nil {
		return nil, fmt.Errorf("decode packages: %w", err)
	}
	return out, nil
}

// decodeList accepts a JSON array or a JSON string holding one; listings
// arrive double-encoded.
func decodeList(payload json.RawMessage, dst any) error {
	raw := bytes.TrimSpace(payload)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return err
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	if len(raw) == 0 || raw[0] != '[' {
		return fmt.Errorf("expected a JSON array")
	}
	return json.Unmarshal(raw, dst)
}
