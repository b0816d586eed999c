package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client — арендатор.
type Client struct {
	ID                  uuid.UUID   `json:"client_id"`
	ClientName          string      `json:"client_name"`
	BusinessName        string      `json:"business_name"`
	ContactInfo         ContactInfo `json:"contact_info"`
	BusinessType        string      `json:"business_type"`
	PreviousLeases      int         `json:"previous_leases"`
	PaymentHistoryScore float64     `json:"payment_history_score"`
	CreatedAt           time.Time   `json:"created_at"`
}

// Email возвращает адрес клиента, если он указан.
func (c Client) Email() string {
	return c.ContactInfo.Email
}
