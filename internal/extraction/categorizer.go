package extraction

import (
	"strings"

	"github.com/medkb/billing-kb/internal/domain/entities"
)

// codeCategories maps a service code's first character to a category.
var codeCategories = map[byte]string{
	'A': entities.CategoryAssessment,
	'C': entities.CategoryConsultation,
	'E': entities.CategoryEmergency,
	'F': entities.CategoryFollowUp,
	'H': entities.CategoryHospital,
	'L': entities.CategoryLaboratory,
	'P': entities.CategoryProcedure,
	'R': entities.CategoryRadiology,
	'S': entities.CategorySurgery,
	'T': entities.CategoryTreatment,
}

// nameCategories is scanned in order; the first keyword found in the
// lower-cased name wins. Kept as a slice so categorization is deterministic.
var nameCategories = []struct {
	keyword  string
	category string
}{
	{"assessment", entities.CategoryAssessment},
	{"consultation", entities.CategoryConsultation},
	{"emergency", entities.CategoryEmergency},
	{"follow", entities.CategoryFollowUp},
	{"lab", entities.CategoryLaboratory},
	{"x-ray", entities.CategoryRadiology},
	{"surgery", entities.CategorySurgery},
	{"procedure", entities.CategoryProcedure},
	{"treatment", entities.CategoryTreatment},
	{"examination", entities.CategoryExamination},
}

// ruleTypeKeywords is checked in priority order: frequency cues beat
// restriction cues, which beat combination and conditional cues.
var ruleTypeKeywords = []struct {
	ruleType string
	keywords []string
}{
	{entities.RuleTypeFrequency, []string{"maximum", "max", "limit", "once", "twice"}},
	{entities.RuleTypeRestriction, []string{"cannot", "prohibited", "restricted"}},
	{entities.RuleTypeCombination, []string{"same day", "concurrent", "simultaneous"}},
	{entities.RuleTypeConditional, []string{"if", "when", "provided"}},
}

// Categorize derives a service category from the code's first character, then
// from name keywords, falling back to Other.
func Categorize(code, name string) string {
	if len(code) > 0 {
		if category, ok := codeCategories[code[0]]; ok {
			return category
		}
	}

	nameLower := strings.ToLower(name)
	for _, entry := range nameCategories {
		if strings.Contains(nameLower, entry.keyword) {
			return entry.category
		}
	}

	return entities.CategoryOther
}

// ClassifyRuleType derives a rule type from the matched fragment, first
// keyword group wins.
func ClassifyRuleType(fragment string) string {
	textLower := strings.ToLower(fragment)
	for _, group := range ruleTypeKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(textLower, keyword) {
				return group.ruleType
			}
		}
	}
	return entities.RuleTypeGeneral
}
