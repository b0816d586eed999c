package domain

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

// Категории правил движка решений.
const (
	CategoryLeaseRequestPriority  = "leaseRequestPriority"
	CategoryPaymentMonitoring     = "paymentMonitoring"
	CategoryContractManagement    = "contractManagement"
	CategorySiteOptimization      = "siteOptimization"
	CategoryClientManagement      = "clientManagement"
	CategoryOperationalEfficiency = "operationalEfficiency"
)

// Имена условий внутри категорий.
const (
	RuleHighValueClient = "high_value_client"
	RulePremiumLocation = "premium_location"
	RuleLongTermLease   = "long_term_lease"
	RuleHighDemandZone  = "high_demand_zone"

	RulePaymentOverdue3Days  = "payment_overdue_3_days"
	RulePaymentOverdue7Days  = "payment_overdue_7_days"
	RulePaymentOverdue14Days = "payment_overdue_14_days"

	RuleContractExpiry90Days  = "contract_expiry_90_days"
	RuleContractExpiry30Days  = "contract_expiry_30_days"
	RuleUnsignedContract7Days = "unsigned_contract_7_days"

	RuleHighDemandPricing   = "high_demand_pricing"
	RuleLowDemandPricing    = "low_demand_pricing"
	RuleVacantSitePromotion = "vacant_site_promotion"

	RuleNewClientOnboarding = "new_client_onboarding"

	RuleLowOccupancyAlert = "low_occupancy_alert"
)

// DecisionRuleConfig — набор категорий правил в порядке объявления в документе.
type DecisionRuleConfig struct {
	Categories []RuleCategory `json:"categories"`
}

// RuleCategory — категория правил с флагом включения и списком условий.
type RuleCategory struct {
	Name       string      `json:"name"`
	Enabled    bool        `json:"enabled"`
	Conditions []Condition `json:"conditions"`
}

// Condition — именованное условие с параметрами.
type Condition struct {
	Rule       string     `json:"rule" yaml:"rule"`
	Parameters Parameters `json:"parameters" yaml:"parameters"`
}

// Parameters — произвольный набор параметров условия.
type Parameters map[string]any

// EnabledCategories возвращает включенные категории, сохраняя порядок.
func (c DecisionRuleConfig) EnabledCategories() []RuleCategory {
	return lo.Filter(c.Categories, func(rc RuleCategory, _ int) bool {
		return rc.Enabled
	})
}

// Category ищет категорию по имени.
func (c DecisionRuleConfig) Category(name string) (RuleCategory, bool) {
	return lo.Find(c.Categories, func(rc RuleCategory) bool {
		return rc.Name == name
	})
}

// Condition возвращает первое условие с заданным именем.
func (rc RuleCategory) Condition(rule string) (Condition, bool) {
	return lo.Find(rc.Conditions, func(c Condition) bool {
		return c.Rule == rule
	})
}

// Float читает числовой параметр. Строки с числом тоже принимаются.
func (p Parameters) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FloatOr возвращает параметр или значение по умолчанию.
func (p Parameters) FloatOr(key string, def float64) float64 {
	if f, ok := p.Float(key); ok {
		return f
	}
	return def
}

// Bool читает булев параметр.
func (p Parameters) Bool(key string) bool {
	switch b := p[key].(type) {
	case bool:
		return b
	case string:
		v, err := strconv.ParseBool(b)
		return err == nil && v
	}
	return false
}

// String читает строковый параметр.
func (p Parameters) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// DefaultDecisionRules — документ правил, используемый, если файл не задан.
func DefaultDecisionRules() DecisionRuleConfig {
	return DecisionRuleConfig{Categories: []RuleCategory{
		{
			Name:    CategoryLeaseRequestPriority,
			Enabled: true,
			Conditions: []Condition{
				{Rule: RuleHighValueClient, Parameters: Parameters{"priority_boost": 2.0, "auto_approve_threshold": 9.0}},
				{Rule: RulePremiumLocation, Parameters: Parameters{"priority_boost": 1.5}},
				{Rule: RuleLongTermLease, Parameters: Parameters{"priority_boost": 1.0}},
				{Rule: RuleHighDemandZone, Parameters: Parameters{"priority_boost": 1.0, "review_deadline_hours": 48}},
			},
		},
		{
			Name:    CategoryPaymentMonitoring,
			Enabled: true,
			Conditions: []Condition{
				{Rule: RulePaymentOverdue3Days, Parameters: Parameters{"template": "payment_reminder"}},
				{Rule: RulePaymentOverdue7Days, Parameters: Parameters{"template": "payment_escalation", "add_late_fee": true, "late_fee_percentage": 5.0}},
				{Rule: RulePaymentOverdue14Days, Parameters: Parameters{"template": "legal_notice", "flag_for_termination": true}},
			},
		},
		{
			Name:    CategoryContractManagement,
			Enabled: true,
			Conditions: []Condition{
				{Rule: RuleContractExpiry90Days, Parameters: Parameters{"template": "renewal_notice_90"}},
				{Rule: RuleContractExpiry30Days, Parameters: Parameters{"template": "renewal_notice_30"}},
				{Rule: RuleUnsignedContract7Days, Parameters: Parameters{"template": "signature_followup"}},
			},
		},
		{
			Name:    CategorySiteOptimization,
			Enabled: true,
			Conditions: []Condition{
				{Rule: RuleHighDemandPricing, Parameters: Parameters{"price_increase_percentage": 10.0, "max_price_ceiling": 500.0}},
				{Rule: RuleLowDemandPricing, Parameters: Parameters{"price_decrease_percentage": 10.0, "min_price_floor": 50.0}},
				{Rule: RuleVacantSitePromotion, Parameters: Parameters{"promotion_duration_days": 30}},
			},
		},
		{
			Name:    CategoryClientManagement,
			Enabled: true,
			Conditions: []Condition{
				{Rule: RuleNewClientOnboarding, Parameters: Parameters{"template": "welcome_package"}},
			},
		},
		{
			Name:    CategoryOperationalEfficiency,
			Enabled: true,
			Conditions: []Condition{
				{Rule: RuleLowOccupancyAlert, Parameters: Parameters{"occupancy_threshold": 60.0}},
			},
		},
	}}
}
