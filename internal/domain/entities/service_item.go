package entities

// Service categories assigned by the extraction categorizer.
const (
	CategoryAssessment   = "Assessment"
	CategoryConsultation = "Consultation"
	CategoryEmergency    = "Emergency"
	CategoryFollowUp     = "Follow-up"
	CategoryHospital     = "Hospital"
	CategoryLaboratory   = "Laboratory"
	CategoryProcedure    = "Procedure"
	CategoryRadiology    = "Radiology"
	CategorySurgery      = "Surgery"
	CategoryTreatment    = "Treatment"
	CategoryExamination  = "Examination"
	CategoryOther        = "Other"
)

// ServiceItem represents a billable procedure extracted from a fee schedule.
// Codes are unique per page within one extraction pass; the same code may
// legitimately reappear on a later page as a distinct record.
type ServiceItem struct {
	Code               string   `json:"code" db:"code"`
	Name               string   `json:"name" db:"name"`
	Description        string   `json:"description" db:"description"`
	Fee                float64  `json:"fee" db:"fee"`
	Category           string   `json:"category" db:"category"`
	BillingConstraints []string `json:"billing_constraints" db:"billing_constraints"`
	PageNumber         int      `json:"page_number" db:"page_number"`
	Section            string   `json:"section" db:"section"`
	Notes              string   `json:"notes" db:"notes"`
}
