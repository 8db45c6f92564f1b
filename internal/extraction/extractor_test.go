package extraction

import (
	"fmt"
	"testing"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractServices_BasicLine(t *testing.T) {
	e := NewExtractor()

	services := e.ExtractServices("A001 Minor assessment 23.75", 12)
	require.NotEmpty(t, services)

	svc := services[0]
	assert.Equal(t, "A001", svc.Code)
	assert.Equal(t, "Minor assessment", svc.Name)
	assert.Equal(t, svc.Name, svc.Description)
	assert.Equal(t, 23.75, svc.Fee)
	assert.Equal(t, entities.CategoryAssessment, svc.Category)
	assert.Equal(t, 12, svc.PageNumber)
}

func TestExtractServices_CurrencySymbolStripped(t *testing.T) {
	e := NewExtractor()

	services := e.ExtractServices("C124 Repeat consultation $45.00", 3)
	require.NotEmpty(t, services)
	assert.Equal(t, 45.0, services[0].Fee)
}

func TestExtractServices_CodesUniquePerPage(t *testing.T) {
	e := NewExtractor()
	text := "A001 Minor assessment 23.75\nA001 Minor assessment repeated 23.75\nA002 General assessment 77.20"

	services := e.ExtractServices(text, 1)

	seen := make(map[string]int)
	for _, svc := range services {
		seen[svc.Code]++
	}
	for code, count := range seen {
		assert.Equal(t, 1, count, "code %s extracted more than once on one page", code)
	}
	assert.Contains(t, seen, "A001")
	assert.Contains(t, seen, "A002")
}

func TestExtractServices_SameCodeAllowedAcrossPages(t *testing.T) {
	e := NewExtractor()

	first := e.ExtractServices("A001 Minor assessment 23.75", 1)
	second := e.ExtractServices("A001 Minor assessment 23.75", 2)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, 1, first[0].PageNumber)
	assert.Equal(t, 2, second[0].PageNumber)
}

func TestExtractServices_ImplausiblySmallFeeRejected(t *testing.T) {
	e := NewExtractor()

	// 0.50 is below the plausibility threshold; the candidate is dropped.
	services := e.ExtractServices("A003 Brief check 0.50", 1)
	for _, svc := range services {
		assert.NotEqual(t, "A003", svc.Code)
	}
}

func TestExtractServices_FeeAtThresholdKept(t *testing.T) {
	e := NewExtractor()

	services := e.ExtractServices("A004 Brief check 1.00", 1)
	require.NotEmpty(t, services)
	assert.Equal(t, 1.0, services[0].Fee)
}

func TestExtractServices_ShortOrNonAlphaCodeRejected(t *testing.T) {
	e := NewExtractor()

	services := e.ExtractServices("no codes on this line at all", 1)
	assert.Empty(t, services)
}

func TestExtract_SectionCursorCarriesForward(t *testing.T) {
	e := NewExtractor()
	pages := []entities.Page{
		{PageNumber: 1, Text: "CONSULTATIONS AND VISITS\nA001 Minor assessment 23.75"},
		{PageNumber: 2, Text: "A002 General assessment 77.20"},
	}

	result := e.Extract(pages)

	require.Len(t, result.Services, 2)
	assert.Equal(t, "CONSULTATIONS AND VISITS", result.Services[0].Section)
	// page 2 has no header of its own, so it inherits page 1's section
	assert.Equal(t, "CONSULTATIONS AND VISITS", result.Services[1].Section)
}

func TestExtract_SectionUpdatesOnNewHeader(t *testing.T) {
	e := NewExtractor()
	pages := []entities.Page{
		{PageNumber: 1, Text: "CONSULTATIONS AND VISITS\nA001 Minor assessment 23.75"},
		{PageNumber: 2, Text: "DIAGNOSTIC RADIOLOGY\nX090 Chest radiograph 35.10"},
	}

	result := e.Extract(pages)

	require.Len(t, result.Services, 2)
	assert.Equal(t, "DIAGNOSTIC RADIOLOGY", result.Services[1].Section)
}

func TestExtract_SectionOnlyScansLeadingLines(t *testing.T) {
	e := NewExtractor()
	text := "line one\nline two\nline three\nline four\nline five\nBURIED HEADER LINE"

	e.updateSection(text)
	assert.Equal(t, "", e.CurrentSection())
}

func TestExtract_Summary(t *testing.T) {
	e := NewExtractor()
	pages := []entities.Page{
		{PageNumber: 1, Text: "A001 Minor assessment 23.75"},
		{PageNumber: 2, Text: ""},
	}

	result := e.Extract(pages)

	assert.Equal(t, len(result.Services), result.Summary.TotalServices)
	assert.Equal(t, len(result.Rules), result.Summary.TotalRules)
	assert.Equal(t, 2, result.Summary.PagesProcessed)
	assert.False(t, result.Summary.ExtractionDate.IsZero())
}

func TestExtractRules_RestrictionSentence(t *testing.T) {
	e := NewExtractor()
	text := "Code A250 is not eligible for payment when billed with A251 on the same day."

	rules := e.ExtractRules(text, 7)
	require.NotEmpty(t, rules)

	for _, rule := range rules {
		assert.Contains(t, []string{entities.RuleTypeRestriction, entities.RuleTypeCombination}, rule.RuleType)
		assert.Equal(t, []string{"A250", "A251"}, rule.AffectedCodes)
		assert.Equal(t, 7, rule.PageNumber)
	}
}

func TestExtractRules_OverlappingPatternsYieldMultipleRules(t *testing.T) {
	e := NewExtractor()
	// carries an eligibility cue, a timing cue, a conditional cue and a
	// billing cue; each matching pattern emits its own rule
	text := "This service is not eligible for payment when billed within the same day as a consultation."

	rules := e.ExtractRules(text, 1)
	assert.Greater(t, len(rules), 1)
}

func TestExtractRules_RuleIDsPerPageCounter(t *testing.T) {
	e := NewExtractor()
	text := "Service A100 is not eligible for payment when rendered twice. Claims must be submitted within six months."

	rules := e.ExtractRules(text, 4)
	require.NotEmpty(t, rules)
	for i, rule := range rules {
		assert.Equal(t, fmt.Sprintf("RULE_4_%d", i+1), rule.RuleID)
	}
}

func TestExtractRules_ShortSentencesDiscarded(t *testing.T) {
	e := NewExtractor()

	rules := e.ExtractRules("Billed. No.", 1)
	assert.Empty(t, rules)
}

func TestExtractRules_ConditionsFromClausesAndTimeQualifiers(t *testing.T) {
	e := NewExtractor()
	text := "A200 is payable only when rendered personally by the physician, within thirty days."

	rules := e.ExtractRules(text, 2)
	require.NotEmpty(t, rules)

	found := false
	for _, rule := range rules {
		for _, cond := range rule.Conditions {
			if cond == "rendered personally by the physician" {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a when-clause condition fragment")
}

func TestExtractRules_NoCodesYieldsEmptySet(t *testing.T) {
	e := NewExtractor()
	text := "Claims must be submitted to the ministry within three months of the service date."

	rules := e.ExtractRules(text, 9)
	require.NotEmpty(t, rules)
	for _, rule := range rules {
		assert.Empty(t, rule.AffectedCodes)
	}
}
