package domain

import (
	"time"

	"github.com/google/uuid"
)

// RentPayment — платеж по договору аренды.
type RentPayment struct {
	ID         uuid.UUID     `json:"payment_id"`
	ContractID uuid.UUID     `json:"contract_id"`
	Amount     float64       `json:"amount"`
	DueDate    time.Time     `json:"due_date"`
	Status     PaymentStatus `json:"status"`
	LateFee    float64       `json:"late_fee"`
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentUpdate — частичное обновление платежа.
type PaymentUpdate struct {
	Status  *PaymentStatus
	LateFee *float64
}

func (u PaymentUpdate) IsEmpty() bool {
	return u.Status == nil && u.LateFee == nil
}

// PaymentWithClient — просроченный платеж с email клиента.
type PaymentWithClient struct {
	Payment     RentPayment
	ClientEmail string
}
