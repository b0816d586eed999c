package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeaseRequest — заявка клиента на аренду площадки.
type LeaseRequest struct {
	ID                      uuid.UUID          `json:"request_id"`
	SiteID                  uuid.UUID          `json:"site_id"`
	ClientID                uuid.UUID          `json:"client_id"`
	BusinessName            string             `json:"business_name"`
	ActivityType            string             `json:"activity_type"`
	RequestedStartDate      *time.Time         `json:"requested_start_date,omitempty"`
	RequestedDurationMonths int                `json:"requested_duration_months"`
	Status                  LeaseRequestStatus `json:"status"`
	PriorityScore           float64            `json:"priority_score"`
	MonthlyRent             float64            `json:"monthly_rent"`
	VATAmount               float64            `json:"vat_amount"`
	PlatformFee             float64            `json:"platform_fee"`
	TotalAmount             float64            `json:"total_amount"`
	PaymentMethod           string             `json:"payment_method,omitempty"`
	ReviewDeadline          *time.Time         `json:"review_deadline,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// LeaseRequestStatus — статус заявки.
type LeaseRequestStatus string

const (
	LeaseRequestStatusNew            LeaseRequestStatus = "new"
	LeaseRequestStatusUnderReview    LeaseRequestStatus = "under_review"
	LeaseRequestStatusApproved       LeaseRequestStatus = "approved"
	LeaseRequestStatusContractSigned LeaseRequestStatus = "contract_signed"
	LeaseRequestStatusPaid           LeaseRequestStatus = "paid"
	LeaseRequestStatusLeased         LeaseRequestStatus = "leased"
	LeaseRequestStatusRejected       LeaseRequestStatus = "rejected"
)

func (s LeaseRequestStatus) String() string {
	return string(s)
}

// LeaseRequestStatuses — все известные статусы в порядке жизненного цикла.
var LeaseRequestStatuses = []LeaseRequestStatus{
	LeaseRequestStatusNew,
	LeaseRequestStatusUnderReview,
	LeaseRequestStatusApproved,
	LeaseRequestStatusContractSigned,
	LeaseRequestStatusPaid,
	LeaseRequestStatusLeased,
	LeaseRequestStatusRejected,
}

// LeaseRequestFilter — фильтр для выборки заявок.
type LeaseRequestFilter struct {
	Status   *LeaseRequestStatus
	SiteID   *uuid.UUID
	ClientID *uuid.UUID
	Page     int32
	PageSize int32
}

// LeaseRequestUpdate — частичное обновление заявки.
type LeaseRequestUpdate struct {
	Status         *LeaseRequestStatus
	PriorityScore  *float64
	ReviewDeadline *time.Time
}

func (u LeaseRequestUpdate) IsEmpty() bool {
	return u.Status == nil && u.PriorityScore == nil && u.ReviewDeadline == nil
}

// LeaseRequestForReview — заявка вместе с клиентом и площадкой.
type LeaseRequestForReview struct {
	Request LeaseRequest
	Client  *Client
	Site    *Site
}

// LeaseRequestStats — количество заявок по статусам.
type LeaseRequestStats struct {
	Total    int                        `json:"total"`
	ByStatus map[LeaseRequestStatus]int `json:"by_status"`
}
