package lease_request_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

const requestColumns = `
	r.request_id, r.site_id, r.client_id,
	COALESCE(r.business_name, ''), COALESCE(r.activity_type, ''),
	r.requested_start_date, r.requested_duration_months, r.status,
	COALESCE(r.priority_score, 0), COALESCE(r.monthly_rent, 0), COALESCE(r.vat_amount, 0),
	COALESCE(r.platform_fee, 0), COALESCE(r.total_amount, 0), COALESCE(r.payment_method, ''),
	r.review_deadline, r.created_at, r.updated_at
`

type LeaseRequestRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewLeaseRequestRepository(db *pgxpool.Pool, log *slog.Logger) *LeaseRequestRepository {
	return &LeaseRequestRepository{db: db, log: log}
}

func requestDest(lr *domain.LeaseRequest) []any {
	return []any{
		&lr.ID,
		&lr.SiteID,
		&lr.ClientID,
		&lr.BusinessName,
		&lr.ActivityType,
		&lr.RequestedStartDate,
		&lr.RequestedDurationMonths,
		&lr.Status,
		&lr.PriorityScore,
		&lr.MonthlyRent,
		&lr.VATAmount,
		&lr.PlatformFee,
		&lr.TotalAmount,
		&lr.PaymentMethod,
		&lr.ReviewDeadline,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	}
}

// CreateLeaseRequest — создаёт новую заявку.
func (r *LeaseRequestRepository) CreateLeaseRequest(ctx context.Context, lr domain.LeaseRequest) (uuid.UUID, error) {
	const op = "LeaseRequestRepository.CreateLeaseRequest"

	query := `
		INSERT INTO lease_requests (
			site_id, client_id, business_name, activity_type,
			requested_start_date, requested_duration_months, status, priority_score,
			monthly_rent, vat_amount, platform_fee, total_amount, payment_method
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING request_id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		lr.SiteID,
		lr.ClientID,
		lr.BusinessName,
		lr.ActivityType,
		lr.RequestedStartDate,
		lr.RequestedDurationMonths,
		lr.Status.String(),
		lr.PriorityScore,
		lr.MonthlyRent,
		lr.VATAmount,
		lr.PlatformFee,
		lr.TotalAmount,
		lr.PaymentMethod,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// GetByID — получает заявку по ID.
func (r *LeaseRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.LeaseRequest, error) {
	const op = "LeaseRequestRepository.GetByID"

	query := `SELECT ` + requestColumns + ` FROM lease_requests r WHERE r.request_id = $1`

	var lr domain.LeaseRequest
	if err := r.db.QueryRow(ctx, query, id).Scan(requestDest(&lr)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LeaseRequest{}, fmt.Errorf("%s: %w", op, repository.ErrLeaseRequestNotFound)
		}
		return domain.LeaseRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	return lr, nil
}

// UpdateLeaseRequest — частичное обновление заявки.
func (r *LeaseRequestRepository) UpdateLeaseRequest(ctx context.Context, id uuid.UUID, update domain.LeaseRequestUpdate) error {
	const op = "LeaseRequestRepository.UpdateLeaseRequest"

	setClauses := []string{}
	params := []interface{}{}
	paramCount := 1

	if update.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", paramCount))
		params = append(params, update.Status.String())
		paramCount++
	}
	if update.PriorityScore != nil {
		setClauses = append(setClauses, fmt.Sprintf("priority_score = $%d", paramCount))
		params = append(params, *update.PriorityScore)
		paramCount++
	}
	if update.ReviewDeadline != nil {
		setClauses = append(setClauses, fmt.Sprintf("review_deadline = $%d", paramCount))
		params = append(params, *update.ReviewDeadline)
		paramCount++
	}

	if len(setClauses) == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE lease_requests SET %s WHERE request_id = $%d`, strings.Join(setClauses, ", "), paramCount)
	params = append(params, id)

	tag, err := r.db.Exec(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrLeaseRequestNotFound)
	}

	return nil
}

// ListLeaseRequests — возвращает заявки по фильтру, новые первыми.
func (r *LeaseRequestRepository) ListLeaseRequests(ctx context.Context, filter domain.LeaseRequestFilter) ([]domain.LeaseRequest, error) {
	const op = "LeaseRequestRepository.ListLeaseRequests"

	where := []string{}
	params := []interface{}{}
	paramCount := 1

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("r.status = $%d", paramCount))
		params = append(params, filter.Status.String())
		paramCount++
	}
	if filter.SiteID != nil {
		where = append(where, fmt.Sprintf("r.site_id = $%d", paramCount))
		params = append(params, *filter.SiteID)
		paramCount++
	}
	if filter.ClientID != nil {
		where = append(where, fmt.Sprintf("r.client_id = $%d", paramCount))
		params = append(params, *filter.ClientID)
		paramCount++
	}

	query := `SELECT ` + requestColumns + ` FROM lease_requests r`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	pager := domain.NewPager(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", paramCount, paramCount+1)
	params = append(params, pager.Limit(), pager.Offset())

	rows, err := r.db.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var requests []domain.LeaseRequest
	for rows.Next() {
		var lr domain.LeaseRequest
		if err := rows.Scan(requestDest(&lr)...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return requests, nil
}

// ListForReview — заявки с указанными статусами вместе с клиентом и площадкой.
func (r *LeaseRequestRepository) ListForReview(ctx context.Context, statuses []domain.LeaseRequestStatus) ([]domain.LeaseRequestForReview, error) {
	const op = "LeaseRequestRepository.ListForReview"

	query := `SELECT ` + requestColumns + `,
			c.client_id, c.client_name, c.contact_info, c.previous_leases, c.payment_history_score,
			s.site_id, s.site_code, COALESCE(s.location_premium, 0), COALESCE(s.demand_factor, 0)
		FROM lease_requests r
		LEFT JOIN clients c ON c.client_id = r.client_id
		LEFT JOIN operations_sites s ON s.site_id = r.site_id
		WHERE r.status = ANY($1)
		ORDER BY r.created_at`

	statusNames := lo.Map(statuses, func(s domain.LeaseRequestStatus, _ int) string {
		return s.String()
	})

	rows, err := r.db.Query(ctx, query, statusNames)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []domain.LeaseRequestForReview
	for rows.Next() {
		var (
			item        domain.LeaseRequestForReview
			clientID    *uuid.UUID
			clientName  *string
			contactInfo *domain.ContactInfo
			prevLeases  *int
			payScore    *float64
			siteID      *uuid.UUID
			siteCode    *string
			premium     float64
			demand      float64
		)

		dest := append(requestDest(&item.Request),
			&clientID, &clientName, &contactInfo, &prevLeases, &payScore,
			&siteID, &siteCode, &premium, &demand,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		if clientID != nil {
			item.Client = &domain.Client{
				ID:                  *clientID,
				ClientName:          lo.FromPtr(clientName),
				ContactInfo:         lo.FromPtr(contactInfo),
				PreviousLeases:      lo.FromPtr(prevLeases),
				PaymentHistoryScore: lo.FromPtr(payScore),
			}
		}
		if siteID != nil {
			item.Site = &domain.Site{
				ID:              *siteID,
				SiteCode:        lo.FromPtr(siteCode),
				LocationPremium: premium,
				DemandFactor:    demand,
			}
		}

		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// Stats — количество заявок по статусам.
func (r *LeaseRequestRepository) Stats(ctx context.Context) (domain.LeaseRequestStats, error) {
	const op = "LeaseRequestRepository.Stats"

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM lease_requests GROUP BY status`)
	if err != nil {
		return domain.LeaseRequestStats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	stats := domain.LeaseRequestStats{ByStatus: make(map[domain.LeaseRequestStatus]int)}
	for rows.Next() {
		var status domain.LeaseRequestStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.LeaseRequestStats{}, fmt.Errorf("%s: scan: %w", op, err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return domain.LeaseRequestStats{}, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}
