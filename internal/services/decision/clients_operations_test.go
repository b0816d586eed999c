package decision

import (
	"context"
	"testing"

	"leasing_hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientManagement_WelcomesNewClients(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategoryClientManagement), nil)
	fresh := f.store.PutClient(domain.Client{
		ClientName:  "Sara",
		ContactInfo: domain.ContactInfo{Email: "sara@example.com"},
		CreatedAt:   testNow.Add(-2 * domain.Day),
	})
	f.store.PutClient(domain.Client{ClientName: "Old", CreatedAt: testNow.Add(-30 * domain.Day)})
	f.store.PutClient(domain.Client{ClientName: "Returning", PreviousLeases: 1, CreatedAt: testNow.Add(-1 * domain.Day)})

	report := f.engine.ExecuteDecisionRules(context.Background())

	require.Len(t, report.Results, 1)
	assert.Equal(t, fresh.ID, *report.Results[0].EntityID)
	assert.Equal(t, []string{"welcome_package_sent"}, report.Results[0].ActionsApplied)

	notifications := f.store.AllNotifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationTypeClientWelcome, notifications[0].Type)
	assert.Equal(t, "Welcome to Boulevard World", notifications[0].Title)
	assert.Equal(t, "Welcome Sara! We're excited to have you join our community.", notifications[0].Message)
	assert.Equal(t, "sara@example.com", notifications[0].RecipientEmail)
	assert.Equal(t, "welcome_package", notifications[0].Template)

	entries := f.store.AllDecisionLog()
	require.Len(t, entries, 1)
	assert.Equal(t, "client_management", entries[0].RuleName)
	assert.Equal(t, "New client onboarding", entries[0].Result)
}

func TestOperationalEfficiency_LowOccupancyAlert(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategoryOperationalEfficiency), nil)
	f.store.PutInsight(domain.OperationalInsight{Date: testNow.Add(-2 * domain.Day), OccupancyRate: 80})
	latest := f.store.PutInsight(domain.OperationalInsight{Date: testNow.Add(-1 * domain.Day), OccupancyRate: 45.5})

	report := f.engine.ExecuteDecisionRules(context.Background())

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.Equal(t, "operational_efficiency", res.RuleName)
	assert.Equal(t, latest.ID, *res.EntityID)
	assert.Equal(t, 45.5, res.Details["occupancy_rate"])

	notifications := f.store.AllNotifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Low Occupancy Alert", notifications[0].Title)
	assert.Equal(t, "Current occupancy rate is 45.5%. Marketing campaign recommended.", notifications[0].Message)
	assert.Equal(t, "ops@example.com", notifications[0].RecipientEmail)
	assert.Equal(t, "low_occupancy_alert", notifications[0].Template)

	entries := f.store.AllDecisionLog()
	require.Len(t, entries, 1)
	assert.Equal(t, "low_occupancy_alert", entries[0].ActionTaken)
	assert.Equal(t, "Occupancy rate: 45.5%", entries[0].Result)
	assert.Equal(t, domain.EntityTypeOperationalInsight, entries[0].EntityType)
}

func TestOperationalEfficiency_NoAlert(t *testing.T) {
	t.Run("healthy occupancy", func(t *testing.T) {
		f := newFixture(t, onlyCategories(domain.CategoryOperationalEfficiency), nil)
		f.store.PutInsight(domain.OperationalInsight{Date: testNow, OccupancyRate: 60})

		report := f.engine.ExecuteDecisionRules(context.Background())

		assert.Empty(t, report.Results)
		assert.Empty(t, f.store.AllNotifications())
	})

	t.Run("no insights recorded", func(t *testing.T) {
		f := newFixture(t, onlyCategories(domain.CategoryOperationalEfficiency), nil)

		report := f.engine.ExecuteDecisionRules(context.Background())

		assert.True(t, report.Success)
		assert.Empty(t, report.Results)
	})
}
