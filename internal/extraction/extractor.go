package extraction

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medkb/billing-kb/internal/domain/entities"
)

// Extractor converts raw fee-schedule page text into service items and
// billing rules. It carries the current-section cursor across pages, so pages
// must be fed strictly in page order; it is not safe for concurrent use.
type Extractor struct {
	currentSection string
}

// NewExtractor creates a new extractor with an empty section cursor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// CurrentSection returns the section label the cursor currently points at.
func (e *Extractor) CurrentSection() string {
	return e.currentSection
}

// SetSection overrides the section cursor, for callers that shard extraction
// by known section boundaries.
func (e *Extractor) SetSection(section string) {
	e.currentSection = section
}

// Extract processes pages in order and returns the full extraction result.
// Extraction is best effort: malformed lines and sentences are skipped, never
// surfaced as errors.
func (e *Extractor) Extract(pages []entities.Page) *entities.ExtractionResult {
	result := &entities.ExtractionResult{
		Services: []entities.ServiceItem{},
		Rules:    []entities.BillingRule{},
	}

	for _, page := range pages {
		if page.Text == "" {
			continue
		}
		e.updateSection(page.Text)
		result.Services = append(result.Services, e.ExtractServices(page.Text, page.PageNumber)...)
		result.Rules = append(result.Rules, e.ExtractRules(page.Text, page.PageNumber)...)
	}

	result.Summary = entities.ExtractionSummary{
		TotalServices:  len(result.Services),
		TotalRules:     len(result.Rules),
		PagesProcessed: len(pages),
		ExtractionDate: time.Now().UTC(),
	}
	return result
}

// updateSection scans the first lines of a page for a section header. The
// first line matching any header pattern updates the cursor and ends the scan.
func (e *Extractor) updateSection(text string) {
	lines := strings.Split(text, "\n")
	if len(lines) > sectionScanLines {
		lines = lines[:sectionScanLines]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 3 {
			continue
		}
		for _, pattern := range sectionPatterns {
			if pattern.MatchString(line) {
				e.currentSection = line
				return
			}
		}
	}
}

// ExtractServices extracts service items from one page of text. Codes are
// de-duplicated per page, first occurrence wins; the same code may reappear
// on other pages.
func (e *Extractor) ExtractServices(text string, pageNumber int) []entities.ServiceItem {
	var services []entities.ServiceItem
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, pattern := range servicePatterns {
			for _, match := range pattern.re.FindAllStringSubmatch(line, -1) {
				var code, name, feeStr string
				if pattern.hasName {
					code, name, feeStr = match[1], match[2], match[3]
				} else {
					code, feeStr = match[1], match[2]
					name = code
				}

				code = strings.TrimSpace(code)
				name = strings.TrimSpace(name)
				feeStr = strings.Trim(feeStr, currencyTrimCutset)

				if len(code) < 3 || !isAlpha(code[0]) {
					continue
				}

				// A fee string that fails to parse is still a
				// candidate with fee 0; a fee below the threshold
				// is an accidental numeric match (page numbers,
				// list indices) and drops the candidate.
				fee, err := strconv.ParseFloat(feeStr, 64)
				if err != nil {
					fee = 0.0
				} else if fee < minPlausibleFee {
					continue
				}

				if _, dup := seen[code]; dup {
					continue
				}
				seen[code] = struct{}{}

				services = append(services, entities.ServiceItem{
					Code:               code,
					Name:               name,
					Description:        name,
					Fee:                fee,
					Category:           Categorize(code, name),
					BillingConstraints: []string{},
					PageNumber:         pageNumber,
					Section:            e.currentSection,
				})
			}
		}
	}

	return services
}

// ExtractRules extracts billing rules from one page of text. Every pattern
// match on every sentence yields an independent rule; a sentence carrying
// both a restriction cue and a timing cue produces two records.
func (e *Extractor) ExtractRules(text string, pageNumber int) []entities.BillingRule {
	var rules []entities.BillingRule
	ruleCounter := 1

	for _, sentence := range sentenceSplitPattern.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSentenceLength {
			continue
		}

		for _, pattern := range rulePatterns {
			for _, fragment := range pattern.FindAllString(sentence, -1) {
				fragment = strings.TrimSpace(fragment)
				if len(fragment) <= minRuleFragmentLength {
					continue
				}

				rules = append(rules, entities.BillingRule{
					RuleID:        fmt.Sprintf("RULE_%d_%d", pageNumber, ruleCounter),
					RuleType:      ClassifyRuleType(fragment),
					Description:   fragment,
					AffectedCodes: uniqueCodes(codePattern.FindAllString(fragment, -1)),
					Conditions:    extractConditions(fragment),
					PageNumber:    pageNumber,
					Section:       e.currentSection,
				})
				ruleCounter++
			}
		}
	}

	return rules
}

// extractConditions collects if/when clause fragments and literal
// time-qualifier occurrences from a rule fragment.
func extractConditions(fragment string) []string {
	var conditions []string

	for _, match := range conditionPattern.FindAllStringSubmatch(fragment, -1) {
		conditions = append(conditions, strings.TrimSpace(match[1]))
	}
	conditions = append(conditions, timeQualifierPattern.FindAllString(fragment, -1)...)

	return conditions
}

// uniqueCodes drops repeated codes while preserving first-seen order.
func uniqueCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	unique := codes[:0]
	for _, code := range codes {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		unique = append(unique, code)
	}
	return unique
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
