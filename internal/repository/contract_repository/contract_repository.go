package contract_repository

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

type ContractRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewContractRepository(db *pgxpool.Pool, log *slog.Logger) *ContractRepository {
	return &ContractRepository{db: db, log: log}
}

// ListExpiring — договоры со статусом status и датой окончания не позже endBefore.
func (r *ContractRepository) ListExpiring(ctx context.Context, status domain.ContractStatus, endBefore time.Time) ([]domain.ContractWithClient, error) {
	const op = "ContractRepository.ListExpiring"

	query := `
		SELECT
			lc.contract_id, lc.request_id, lc.status, lc.end_date, lc.termination_flag, lc.created_at,
			COALESCE(c.contact_info->>'email', '')
		FROM lease_contracts lc
		LEFT JOIN lease_requests lr ON lr.request_id = lc.request_id
		LEFT JOIN clients c ON c.client_id = lr.client_id
		WHERE lc.status = $1 AND lc.end_date <= $2
		ORDER BY lc.end_date
	`

	rows, err := r.db.Query(ctx, query, status.String(), endBefore)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var contracts []domain.ContractWithClient
	for rows.Next() {
		var c domain.ContractWithClient
		err := rows.Scan(
			&c.Contract.ID,
			&c.Contract.RequestID,
			&c.Contract.Status,
			&c.Contract.EndDate,
			&c.Contract.TerminationFlag,
			&c.Contract.CreatedAt,
			&c.ClientEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contracts, nil
}

// ListPendingSignature — неподписанные договоры, созданные раньше createdBefore.
func (r *ContractRepository) ListPendingSignature(ctx context.Context, createdBefore time.Time) ([]domain.LeaseContract, error) {
	const op = "ContractRepository.ListPendingSignature"

	query := `
		SELECT contract_id, request_id, status, end_date, termination_flag, created_at
		FROM lease_contracts
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, domain.ContractStatusPendingSignature.String(), createdBefore)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var contracts []domain.LeaseContract
	for rows.Next() {
		var c domain.LeaseContract
		if err := rows.Scan(&c.ID, &c.RequestID, &c.Status, &c.EndDate, &c.TerminationFlag, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contracts, nil
}

// UpdateContract — частичное обновление договора.
func (r *ContractRepository) UpdateContract(ctx context.Context, id uuid.UUID, update domain.ContractUpdate) error {
	const op = "ContractRepository.UpdateContract"

	setClauses := []string{}
	params := []interface{}{}
	paramCount := 1

	if update.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", paramCount))
		params = append(params, update.Status.String())
		paramCount++
	}
	if update.TerminationFlag != nil {
		setClauses = append(setClauses, fmt.Sprintf("termination_flag = $%d", paramCount))
		params = append(params, *update.TerminationFlag)
		paramCount++
	}

	if len(setClauses) == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	query := fmt.Sprintf(`UPDATE lease_contracts SET %s WHERE contract_id = $%d`, strings.Join(setClauses, ", "), paramCount)
	params = append(params, id)

	tag, err := r.db.Exec(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrContractNotFound)
	}

	return nil
}
