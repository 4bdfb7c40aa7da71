package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/events"
	"github.com/spec-kit/panel-dashboard/internal/panel"
)

func TestUsageSync_UpdatesMatchingRecords(t *testing.T) {
	websites := newMemWebsites(
		&domain.Website{ID: "s1", Domain: "a.com", StorageLimit: 100},
		&domain.Website{ID: "s2", Domain: "b.com", StorageLimit: 1000},
	)
	users := newMemUsers(&domain.User{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin})
	api := newStubPanel().set("FetchWebsites", listingResult(
		map[string]any{"domain": "a.com", "diskUsed": "250MB", "monthlyBandwidthUsage": 40},
		map[string]any{"domain": "b.com", "diskUsed": "12.5MB"},
		map[string]any{"domain": "elsewhere.com", "diskUsed": "1MB"},
		map[string]any{"state": "Active"},
	))
	dispatcher := &captureDispatcher{}
	svc := NewUsageService(UsageDependencies{WebsiteRepo: websites, UserRepo: users, Panel: api, Dispatcher: dispatcher})

	report, err := svc.Sync(context.Background(), Actor{})
	require.NoError(t, err)
	assert.Equal(t, UsageReport{Listed: 4, Updated: 2, Unmatched: 1}, *report)

	a, _ := websites.GetByID(context.Background(), "s1")
	assert.Equal(t, int64(100), a.StorageUsed, "usage is capped at the limit")
	assert.Equal(t, int64(40), a.BandwidthUsed)
	b, _ := websites.GetByID(context.Background(), "s2")
	assert.Equal(t, int64(12), b.StorageUsed)

	require.Equal(t, []events.EventType{events.EventStatsUpdated}, dispatcher.types())
	actor := dispatcher.events[0].Actor
	require.NotNil(t, actor.UserID)
	assert.Equal(t, "admin-1", *actor.UserID)
}

func TestUsageSync_PanelFailure(t *testing.T) {
	api := newStubPanel().set("FetchWebsites", panel.Failure(panel.CodeTransport, "refused"))
	dispatcher := &captureDispatcher{}
	svc := NewUsageService(UsageDependencies{WebsiteRepo: newMemWebsites(), UserRepo: newMemUsers(), Panel: api, Dispatcher: dispatcher})

	_, err := svc.Sync(context.Background(), Actor{UserID: "u1"})
	require.Error(t, err)
	assert.Empty(t, dispatcher.types())
}
