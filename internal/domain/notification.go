package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification — исходящее уведомление, ожидающее доставки.
type Notification struct {
	ID             uuid.UUID          `json:"notification_id"`
	Type           NotificationType   `json:"type"`
	Title          string             `json:"title"`
	Message        string             `json:"message"`
	RecipientEmail string             `json:"recipient_email"`
	Template       string             `json:"template,omitempty"`
	Status         NotificationStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

type NotificationType string

const (
	NotificationTypePaymentOverdue   NotificationType = "payment_overdue"
	NotificationTypeContractDeadline NotificationType = "contract_deadline"
	NotificationTypeClientWelcome    NotificationType = "client_welcome"
	NotificationTypeOperationalAlert NotificationType = "operational_alert"
	NotificationTypeLeaseRequest     NotificationType = "lease_request"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
)
