package domain

import (
	"time"

	"github.com/google/uuid"
)

// DecisionLogEntry — запись аудита действий движка правил.
type DecisionLogEntry struct {
	ID              uuid.UUID `json:"log_id"`
	RuleName        string    `json:"rule_name"`
	EntityType      string    `json:"entity_type"`
	EntityID        uuid.UUID `json:"entity_id"`
	ActionTaken     string    `json:"action_taken"`
	Result          string    `json:"result"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	ExecutedAt      time.Time `json:"executed_at"`
}

// Типы сущностей в журнале решений.
const (
	EntityTypeLeaseRequest       = "lease_request"
	EntityTypeRentPayment        = "rent_payment"
	EntityTypeLeaseContract      = "lease_contract"
	EntityTypeSite               = "operations_site"
	EntityTypeClient             = "client"
	EntityTypeOperationalInsight = "operational_insight"
)
