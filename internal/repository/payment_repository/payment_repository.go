package payment_repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewPaymentRepository(db *pgxpool.Pool, log *slog.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, log: log}
}

// ListOverdue — неоплаченные платежи со сроком раньше asOf и email клиента по договору.
func (r *PaymentRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.PaymentWithClient, error) {
	const op = "PaymentRepository.ListOverdue"

	query := `
		SELECT
			p.payment_id, p.contract_id, p.amount, p.due_date, p.status, p.late_fee,
			COALESCE(c.contact_info->>'email', '')
		FROM rent_payments p
		LEFT JOIN lease_contracts lc ON lc.contract_id = p.contract_id
		LEFT JOIN lease_requests lr ON lr.request_id = lc.request_id
		LEFT JOIN clients c ON c.client_id = lr.client_id
		WHERE p.status = $1 AND p.due_date < $2
		ORDER BY p.due_date
	`

	rows, err := r.db.Query(ctx, query, domain.PaymentStatusPending.String(), asOf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var payments []domain.PaymentWithClient
	for rows.Next() {
		var p domain.PaymentWithClient
		err := rows.Scan(
			&p.Payment.ID,
			&p.Payment.ContractID,
			&p.Payment.Amount,
			&p.Payment.DueDate,
			&p.Payment.Status,
			&p.Payment.LateFee,
			&p.ClientEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payments, nil
}

// UpdatePayment — частичное обновление платежа.
func (r *PaymentRepository) UpdatePayment(ctx context.Context, id uuid.UUID, update domain.PaymentUpdate) error {
	const op = "PaymentRepository.UpdatePayment"

	setClauses := []string{}
	params := []interface{}{}
	paramCount := 1

	if update.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", paramCount))
		params = append(params, update.Status.String())
		paramCount++
	}
	if update.LateFee != nil {
		setClauses = append(setClauses, fmt.Sprintf("late_fee = $%d", paramCount))
		params = append(params, *update.LateFee)
		paramCount++
	}

	if len(setClauses) == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	query := fmt.Sprintf(`UPDATE rent_payments SET %s WHERE payment_id = $%d`, strings.Join(setClauses, ", "), paramCount)
	params = append(params, id)

	tag, err := r.db.Exec(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrPaymentNotFound)
	}

	return nil
}
