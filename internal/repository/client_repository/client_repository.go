package client_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `
	client_id, client_name, COALESCE(business_name, ''), contact_info,
	COALESCE(business_type, ''), previous_leases, payment_history_score, created_at
`

type ClientRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewClientRepository(db *pgxpool.Pool, log *slog.Logger) *ClientRepository {
	return &ClientRepository{db: db, log: log}
}

func scanClient(row pgx.Row) (domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID,
		&c.ClientName,
		&c.BusinessName,
		&c.ContactInfo,
		&c.BusinessType,
		&c.PreviousLeases,
		&c.PaymentHistoryScore,
		&c.CreatedAt,
	)
	return c, err
}

// CreateClient — создаёт нового клиента.
func (r *ClientRepository) CreateClient(ctx context.Context, c domain.Client) (uuid.UUID, error) {
	const op = "ClientRepository.CreateClient"

	query := `
		INSERT INTO clients (
			client_name, business_name, contact_info,
			business_type, previous_leases, payment_history_score
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING client_id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		c.ClientName,
		c.BusinessName,
		c.ContactInfo,
		c.BusinessType,
		c.PreviousLeases,
		c.PaymentHistoryScore,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// GetByID — получает клиента по ID.
func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	const op = "ClientRepository.GetByID"

	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1`

	c, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Client{}, fmt.Errorf("%s: %w", op, repository.ErrClientNotFound)
		}
		return domain.Client{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// ListClients — возвращает всех клиентов, новые первыми.
func (r *ClientRepository) ListClients(ctx context.Context) ([]domain.Client, error) {
	const op = "ClientRepository.ListClients"

	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC`

	return r.list(ctx, op, query)
}

// ListNewClients — клиенты без прошлых аренд, созданные не раньше createdAfter.
func (r *ClientRepository) ListNewClients(ctx context.Context, createdAfter time.Time) ([]domain.Client, error) {
	const op = "ClientRepository.ListNewClients"

	query := `SELECT ` + clientColumns + `
		FROM clients
		WHERE previous_leases = 0 AND created_at >= $1
		ORDER BY created_at`

	return r.list(ctx, op, query, createdAfter)
}

func (r *ClientRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Client, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return clients, nil
}
