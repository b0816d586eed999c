package decision

import (
	"context"
	"testing"
	"time"

	"leasing_hub/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMonitoring_TenDaysOverdueFiresReminderAndEscalation(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategoryPaymentMonitoring), nil)
	contract := f.seedContract(domain.ContractStatusActive, testNow.Add(200*domain.Day), testNow.Add(-300*domain.Day))
	payment := f.store.PutPayment(domain.RentPayment{
		ContractID: contract.ID,
		Amount:     1000,
		DueDate:    testNow.Add(-10*domain.Day - time.Hour),
		Status:     domain.PaymentStatusPending,
	})

	report := f.engine.ExecuteDecisionRules(context.Background())

	require.True(t, report.Success)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.Equal(t, "payment_monitoring", res.RuleName)
	assert.True(t, res.Success)
	assert.Equal(t, payment.ID, *res.EntityID)
	assert.Equal(t, []string{"3_day_reminder_sent", "late_fee_added", "7_day_escalation_sent"}, res.ActionsApplied)
	assert.Equal(t, 10, res.Details["overdue_days"])

	stored, err := f.store.Payments().GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.LateFee)

	notifications := f.store.AllNotifications()
	require.Len(t, notifications, 2)
	assert.Equal(t, "Payment Reminder - 3 Days Overdue", notifications[0].Title)
	assert.Equal(t, "Payment of 1000 SAR is now 3 days overdue", notifications[0].Message)
	assert.Equal(t, "payment_reminder", notifications[0].Template)
	assert.Equal(t, "tenant@example.com", notifications[0].RecipientEmail)
	assert.Equal(t, domain.NotificationTypePaymentOverdue, notifications[0].Type)
	assert.Equal(t, "Payment Overdue - 7 Days", notifications[1].Title)
	assert.Equal(t, "Payment of 1000 SAR is now 7 days overdue. Late fee applied.", notifications[1].Message)

	entries := f.store.AllDecisionLog()
	require.Len(t, entries, 1)
	assert.Equal(t, "payment_monitoring", entries[0].RuleName)
	assert.Equal(t, domain.EntityTypeRentPayment, entries[0].EntityType)
	assert.Equal(t, "3_day_reminder_sent, late_fee_added, 7_day_escalation_sent", entries[0].ActionTaken)
	assert.Equal(t, "Payment 10 days overdue", entries[0].Result)

	contractAfter, err := f.store.Contracts().GetByID(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusActive, contractAfter.Status)
}

func TestPaymentMonitoring_FourteenDaysFlagsContract(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategoryPaymentMonitoring), nil)
	contract := f.seedContract(domain.ContractStatusActive, testNow.Add(200*domain.Day), testNow.Add(-300*domain.Day))
	f.store.PutPayment(domain.RentPayment{
		ContractID: contract.ID,
		Amount:     2500.5,
		DueDate:    testNow.Add(-15 * domain.Day),
		Status:     domain.PaymentStatusPending,
	})

	report := f.engine.ExecuteDecisionRules(context.Background())

	require.Len(t, report.Results, 1)
	assert.Equal(t, []string{
		"3_day_reminder_sent",
		"late_fee_added",
		"7_day_escalation_sent",
		"flagged_for_termination",
		"legal_notice_sent",
	}, report.Results[0].ActionsApplied)

	stored, err := f.store.Contracts().GetByID(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusAtRisk, stored.Status)
	assert.True(t, stored.TerminationFlag)

	notifications := f.store.AllNotifications()
	require.Len(t, notifications, 3)
	assert.Equal(t, "Legal Notice - Payment Overdue", notifications[2].Title)
	assert.Equal(t, "Payment of 2500.5 SAR is now 14 days overdue. Legal action may be taken.", notifications[2].Message)
}

func TestPaymentMonitoring_BelowThreeDaysDoesNothing(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategoryPaymentMonitoring), nil)
	contract := f.seedContract(domain.ContractStatusActive, testNow.Add(200*domain.Day), testNow.Add(-300*domain.Day))
	f.store.PutPayment(domain.RentPayment{
		ContractID: contract.ID,
		Amount:     1000,
		DueDate:    testNow.Add(-2 * domain.Day),
		Status:     domain.PaymentStatusPending,
	})

	report := f.engine.ExecuteDecisionRules(context.Background())

	assert.True(t, report.Success)
	assert.Empty(t, report.Results)
	assert.Empty(t, f.store.AllNotifications())
	assert.Empty(t, f.store.AllDecisionLog())
}

func TestPaymentMonitoring_MutationErrorMarksEntityFailed(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategoryPaymentMonitoring), func(r *Repositories) {
		r.Payments = &paymentRepoMock{
			PaymentRepository: r.Payments,
			UpdatePaymentFunc: func(context.Context, uuid.UUID, domain.PaymentUpdate) error {
				return errStorage
			},
		}
	})
	contract := f.seedContract(domain.ContractStatusActive, testNow.Add(200*domain.Day), testNow.Add(-300*domain.Day))
	f.store.PutPayment(domain.RentPayment{
		ContractID: contract.ID,
		Amount:     1000,
		DueDate:    testNow.Add(-20 * domain.Day),
		Status:     domain.PaymentStatusPending,
	})
	second := f.store.PutPayment(domain.RentPayment{
		ContractID: contract.ID,
		Amount:     300,
		DueDate:    testNow.Add(-4 * domain.Day),
		Status:     domain.PaymentStatusPending,
	})

	report := f.engine.ExecuteDecisionRules(context.Background())

	require.True(t, report.Success)
	require.Len(t, report.Results, 2)

	failed := report.Results[0]
	assert.False(t, failed.Success)
	assert.Contains(t, failed.Error, errStorage.Error())
	assert.Equal(t, []string{"3_day_reminder_sent"}, failed.ActionsApplied)

	ok := report.Results[1]
	assert.True(t, ok.Success)
	assert.Equal(t, second.ID, *ok.EntityID)
	assert.Equal(t, 1, report.SuccessfulActions)

	entries := f.store.AllDecisionLog()
	require.Len(t, entries, 2)
	assert.Equal(t, "3_day_reminder_sent", entries[0].ActionTaken)

	// Договор не тронут: после ошибки следующие ступени не проверяются.
	stored, err := f.store.Contracts().GetByID(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusActive, stored.Status)
}

func TestPaymentMonitoring_NotificationFailureIsRecordedNotFatal(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategoryPaymentMonitoring), func(r *Repositories) {
		r.Notifications = &notificationRepoMock{
			CreateNotificationFunc: func(context.Context, domain.Notification) (uuid.UUID, error) {
				return uuid.Nil, errStorage
			},
		}
	})
	contract := f.seedContract(domain.ContractStatusActive, testNow.Add(200*domain.Day), testNow.Add(-300*domain.Day))
	f.store.PutPayment(domain.RentPayment{
		ContractID: contract.ID,
		Amount:     1000,
		DueDate:    testNow.Add(-5 * domain.Day),
		Status:     domain.PaymentStatusPending,
	})

	report := f.engine.ExecuteDecisionRules(context.Background())

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.True(t, res.Success)
	assert.Equal(t, []string{"3_day_reminder_sent"}, res.ActionsApplied)
	require.Len(t, res.SideEffects, 2)
	assert.Equal(t, SideEffectNotification, res.SideEffects[0].Kind)
	assert.False(t, res.SideEffects[0].Success)
	assert.Equal(t, errStorage.Error(), res.SideEffects[0].Error)
	assert.Equal(t, SideEffect{Kind: SideEffectDecisionLog, Success: true}, res.SideEffects[1])
}
