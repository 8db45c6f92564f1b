package extraction

import "regexp"

// codePattern matches service codes: one uppercase letter followed by 3-4
// digits (A007, G313, Z5550).
var codePattern = regexp.MustCompile(`[A-Z]\d{3,4}`)

// servicePattern is one structural pattern isolating a (code, name, fee) or
// (code, fee) tuple from a schedule line. Patterns are applied in order and
// are not mutually exclusive: one line may yield candidates from several
// patterns.
type servicePattern struct {
	re      *regexp.Regexp
	hasName bool
}

var servicePatterns = []servicePattern{
	// code name fee
	{regexp.MustCompile(`([A-Z]\d{3,4})\s+([A-Za-z\s,]+?)\s+(\$?\d+\.?\d*)`), true},
	// code - name - fee
	{regexp.MustCompile(`([A-Z]\d{3,4})\s*[-–]\s*([A-Za-z\s,]+?)\s*[-–]\s*(\$?\d+\.?\d*)`), true},
	// code name (fee)
	{regexp.MustCompile(`([A-Z]\d{3,4})\s+([A-Za-z\s,]+?)\s*\((\$?\d+\.?\d*)\)`), true},
	// code description fee, description may contain periods
	{regexp.MustCompile(`([A-Z]\d{3,4})\s+([A-Za-z\s,.]+?)\s+(\d+\.?\d*)`), true},
	// code description integer fee
	{regexp.MustCompile(`([A-Z]\d{3,4})\s+([A-Za-z\s,.]+?)\s+(\d+)`), true},
	// bare code and fee
	{regexp.MustCompile(`([A-Z]\d{3,4})\s+(\d+\.?\d*)`), false},
}

// rulePatterns detect rule sentences by keyword group. Every matching pattern
// produces an independent rule record; overlap across groups is intentional.
var rulePatterns = []*regexp.Regexp{
	// eligibility
	regexp.MustCompile(`(?i)[^.]*(?:is only eligible for payment if|is not eligible for payment when|not eligible for payment)[^.]*`),
	// service restrictions
	regexp.MustCompile(`(?i)[^.]*(?:cannot|can't|not allowed|prohibited|restricted|excluded|no more than|not to be billed)[^.]*`),
	// time-based
	regexp.MustCompile(`(?i)[^.]*(?:same day|concurrent|simultaneous|within|during|on the same|in the same)[^.]*`),
	// conditional
	regexp.MustCompile(`(?i)[^.]*(?:if|when|provided|subject to|conditional|unless|except)[^.]*`),
	// billing instructions
	regexp.MustCompile(`(?i)[^.]*(?:submit claims|claims submission|bill|billing|claim|report|document)[^.]*`),
	// coverage exclusions
	regexp.MustCompile(`(?i)[^.]*(?:not covered|not eligible|not payable|not reimbursed)[^.]*`),
	// fee adjustments
	regexp.MustCompile(`(?i)[^.]*(?:reduce.*fee|increase.*fee|adjust.*fee|fee.*reduced|fee.*increased)[^.]*`),
	// special conditions
	regexp.MustCompile(`(?i)[^.]*(?:special|additional|extra|premium|bonus|add|plus)[^.]*`),
	// administrative
	regexp.MustCompile(`(?i)[^.]*(?:must|should|required|mandatory|obligatory)[^.]*`),
	// service combinations
	regexp.MustCompile(`(?i)[^.]*(?:when rendered with|in combination with|together with)[^.]*`),
	// minimum duration
	regexp.MustCompile(`(?i)[^.]*(?:minimum.*minutes|at least.*minutes|spend.*minutes)[^.]*`),
	// documentation requirements
	regexp.MustCompile(`(?i)[^.]*(?:recorded in|documented in|permanent medical record)[^.]*`),
}

// sectionPatterns detect section headers in the first lines of a page:
// ALL-CAPS lines, numbered headings, Title-Case headings with optional colon.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][A-Z\s]+$`),
	regexp.MustCompile(`^\d+\.\s*[A-Z][A-Za-z\s]+$`),
	regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s*:?$`),
}

var (
	sentenceSplitPattern = regexp.MustCompile(`[.!?]`)
	conditionPattern     = regexp.MustCompile(`(?i)(?:if|when)\s+([^,]+)`)
	timeQualifierPattern = regexp.MustCompile(`(?i)(?:within|during|same day|concurrent)`)
)

const (
	currencyTrimCutset    = "$ \t"
	minSentenceLength     = 10
	minRuleFragmentLength = 8
	minPlausibleFee       = 1.0
	sectionScanLines      = 5
)
