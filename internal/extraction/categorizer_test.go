package extraction

import (
	"testing"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestCategorize_CodePrefixWins(t *testing.T) {
	testCases := []struct {
		code     string
		name     string
		expected string
	}{
		{"A001", "Minor assessment", entities.CategoryAssessment},
		{"C124", "Something unrelated", entities.CategoryConsultation},
		{"E080", "visit", entities.CategoryEmergency},
		{"L700", "panel", entities.CategoryLaboratory},
		{"R100", "chest view", entities.CategoryRadiology},
		{"S200", "repair", entities.CategorySurgery},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.expected, Categorize(tc.code, tc.name))
		})
	}
}

func TestCategorize_NameKeywordFallback(t *testing.T) {
	// X is not in the prefix table, so the name keyword decides.
	assert.Equal(t, entities.CategoryRadiology, Categorize("X100", "Chest x-ray two views"))
	assert.Equal(t, entities.CategoryExamination, Categorize("G100", "Annual examination"))
	assert.Equal(t, entities.CategoryFollowUp, Categorize("G101", "Follow-up visit"))
}

func TestCategorize_Other(t *testing.T) {
	assert.Equal(t, entities.CategoryOther, Categorize("G313", "miscellaneous item"))
}

func TestCategorize_Deterministic(t *testing.T) {
	first := Categorize("X200", "laboratory examination follow-up")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Categorize("X200", "laboratory examination follow-up"))
	}
}

func TestClassifyRuleType_PriorityOrder(t *testing.T) {
	// frequency cues are checked before restriction cues
	assert.Equal(t, entities.RuleTypeFrequency, ClassifyRuleType("a maximum of two services, others prohibited"))
	assert.Equal(t, entities.RuleTypeRestriction, ClassifyRuleType("this service is prohibited when rendered alone"))
	assert.Equal(t, entities.RuleTypeCombination, ClassifyRuleType("not payable on the same day as A001"))
	assert.Equal(t, entities.RuleTypeConditional, ClassifyRuleType("payable only if rendered by the attending physician"))
	assert.Equal(t, entities.RuleTypeGeneral, ClassifyRuleType("see the general preamble for details"))
}
