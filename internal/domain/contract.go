package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeaseContract — договор аренды.
type LeaseContract struct {
	ID              uuid.UUID      `json:"contract_id"`
	RequestID       uuid.UUID      `json:"request_id"`
	Status          ContractStatus `json:"status"`
	EndDate         time.Time      `json:"end_date"`
	TerminationFlag bool           `json:"termination_flag"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ContractStatus — статус договора.
type ContractStatus string

const (
	ContractStatusActive           ContractStatus = "active"
	ContractStatusPendingSignature ContractStatus = "pending_signature"
	ContractStatusAtRisk           ContractStatus = "at_risk"
	ContractStatusTerminated       ContractStatus = "terminated"
	ContractStatusExpired          ContractStatus = "expired"
)

func (s ContractStatus) String() string {
	return string(s)
}

// ContractUpdate — частичное обновление договора.
type ContractUpdate struct {
	Status          *ContractStatus
	TerminationFlag *bool
}

func (u ContractUpdate) IsEmpty() bool {
	return u.Status == nil && u.TerminationFlag == nil
}

// ContractWithClient — договор с email клиента из связанной заявки.
type ContractWithClient struct {
	Contract    LeaseContract
	ClientEmail string
}
