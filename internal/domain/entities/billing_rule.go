package entities

// Rule types assigned by keyword classification, in priority order.
const (
	RuleTypeFrequency   = "frequency"
	RuleTypeRestriction = "restriction"
	RuleTypeCombination = "combination"
	RuleTypeConditional = "conditional"
	RuleTypeGeneral     = "general"
)

// BillingRule represents a textual constraint governing one or more service
// codes. A sentence matching several rule patterns yields several rules, one
// per matched fragment; duplicates are not suppressed.
type BillingRule struct {
	RuleID        string   `json:"rule_id" db:"rule_id"`
	RuleType      string   `json:"rule_type" db:"rule_type"`
	Description   string   `json:"description" db:"description"`
	AffectedCodes []string `json:"affected_codes" db:"affected_codes"`
	Conditions    []string `json:"conditions" db:"conditions"`
	PageNumber    int      `json:"page_number" db:"page_number"`
	Section       string   `json:"section" db:"section"`
}
