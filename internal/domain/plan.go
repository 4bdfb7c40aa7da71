package domain

import "strings"

// PlanLimits are the quota of a hosting plan, in megabytes.
type PlanLimits struct {
	StorageMB   int64
	BandwidthMB int64
}

var planLimits = map[string]PlanLimits{
	"starter":      {StorageMB: 10 * 1024, BandwidthMB: 100 * 1024},
	"professional": {StorageMB: 100 * 1024, BandwidthMB: 1000 * 1024},
	"enterprise":   {StorageMB: 1000 * 1024, BandwidthMB: 10000 * 1024},
	"basic":        {StorageMB: 50 * 1024, BandwidthMB: 500 * 1024},
}

// LimitsForPlan resolves a plan name case-insensitively; unknown plans get
// the basic quota.
func LimitsForPlan(plan string) PlanLimits {
	if limits, ok := planLimits[strings.ToLower(strings.TrimSpace(plan))]; ok {
		return limits
	}
	return planLimits["basic"]
}
