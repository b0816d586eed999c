package decision

import (
	"context"
	"fmt"
	"log/slog"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/money"

	"github.com/samber/lo"
)

const rulePaymentMonitoring = "payment_monitoring"

// Ступени эскалации просрочки. Ступени накопительные: платеж с просрочкой
// в 14 дней проходит все три.
const (
	overdueReminderDays    = 3
	overdueEscalationDays  = 7
	overdueLegalNoticeDays = 14
)

func (e *Engine) processPaymentMonitoring(ctx context.Context, cat domain.RuleCategory) ([]ActionResult, error) {
	const op = "decision.Engine.processPaymentMonitoring"

	log := e.log.With(slog.String("op", op))

	now := e.now()
	payments, err := e.repos.Payments.ListOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("overdue payments", slog.Int("count", len(payments)))

	results := make([]ActionResult, 0, len(payments))
	for _, p := range payments {
		if res, ok := e.escalatePayment(ctx, cat, p); ok {
			results = append(results, res)
		}
	}
	return results, nil
}

func (e *Engine) escalatePayment(ctx context.Context, cat domain.RuleCategory, p domain.PaymentWithClient) (ActionResult, bool) {
	pay := p.Payment
	run := e.startEntity(rulePaymentMonitoring, domain.EntityTypeRentPayment, pay.ID)

	overdueDays := domain.WholeDaysBetween(pay.DueDate, e.now())
	run.details["overdue_days"] = overdueDays
	amount := formatNumber(pay.Amount)

	if cond, ok := cat.Condition(domain.RulePaymentOverdue3Days); ok && overdueDays >= overdueReminderDays {
		run.effect(e.sendNotification(ctx, notification{
			Type:      domain.NotificationTypePaymentOverdue,
			Title:     "Payment Reminder - 3 Days Overdue",
			Message:   fmt.Sprintf("Payment of %s SAR is now 3 days overdue", amount),
			Recipient: p.ClientEmail,
			Template:  cond.Parameters.String("template"),
		}))
		run.apply("3_day_reminder_sent")
	}

	if cond, ok := cat.Condition(domain.RulePaymentOverdue7Days); ok && overdueDays >= overdueEscalationDays {
		if cond.Parameters.Bool("add_late_fee") {
			fee := money.Round2(money.Percent(pay.Amount, cond.Parameters.FloatOr("late_fee_percentage", 0)))
			err := e.repos.Payments.UpdatePayment(ctx, pay.ID, domain.PaymentUpdate{LateFee: &fee})
			if err != nil {
				run.fail(fmt.Errorf("add late fee: %w", err))
			} else {
				run.apply("late_fee_added")
				run.details["late_fee"] = fee
			}
		}

		if !run.failed() {
			run.effect(e.sendNotification(ctx, notification{
				Type:      domain.NotificationTypePaymentOverdue,
				Title:     "Payment Overdue - 7 Days",
				Message:   fmt.Sprintf("Payment of %s SAR is now 7 days overdue. Late fee applied.", amount),
				Recipient: p.ClientEmail,
				Template:  cond.Parameters.String("template"),
			}))
			run.apply("7_day_escalation_sent")
		}
	}

	if cond, ok := cat.Condition(domain.RulePaymentOverdue14Days); ok && !run.failed() && overdueDays >= overdueLegalNoticeDays {
		if cond.Parameters.Bool("flag_for_termination") {
			err := e.repos.Contracts.UpdateContract(ctx, pay.ContractID, domain.ContractUpdate{
				Status:          lo.ToPtr(domain.ContractStatusAtRisk),
				TerminationFlag: lo.ToPtr(true),
			})
			if err != nil {
				run.fail(fmt.Errorf("flag contract for termination: %w", err))
			} else {
				run.apply("flagged_for_termination")
			}
		}

		if !run.failed() {
			run.effect(e.sendNotification(ctx, notification{
				Type:      domain.NotificationTypePaymentOverdue,
				Title:     "Legal Notice - Payment Overdue",
				Message:   fmt.Sprintf("Payment of %s SAR is now 14 days overdue. Legal action may be taken.", amount),
				Recipient: p.ClientEmail,
				Template:  cond.Parameters.String("template"),
			}))
			run.apply("legal_notice_sent")
		}
	}

	return e.finish(ctx, run, fmt.Sprintf("Payment %d days overdue", overdueDays))
}
