package notification_repository

import (
	"context"
	"fmt"
	"log/slog"

	"leasing_hub/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, log *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, log: log}
}

// CreateNotification — добавляет уведомление в очередь.
func (r *NotificationRepository) CreateNotification(ctx context.Context, n domain.Notification) (uuid.UUID, error) {
	const op = "NotificationRepository.CreateNotification"

	query := `
		INSERT INTO notifications (type, title, message, recipient_email, template, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING notification_id
	`

	status := n.Status
	if status == "" {
		status = domain.NotificationStatusPending
	}

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		string(n.Type),
		n.Title,
		n.Message,
		n.RecipientEmail,
		n.Template,
		string(status),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// ListPending — уведомления, ожидающие отправки, старые первыми.
func (r *NotificationRepository) ListPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	const op = "NotificationRepository.ListPending"

	query := `
		SELECT notification_id, type, title, message,
			COALESCE(recipient_email, ''), COALESCE(template, ''), status, created_at
		FROM notifications
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, string(domain.NotificationStatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.RecipientEmail, &n.Template, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
