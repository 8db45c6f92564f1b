package entities

import "time"

// RetrievalCandidate is an ephemeral service match produced by a similarity
// search. Candidates are merged across sub-queries by code, first occurrence
// wins.
type RetrievalCandidate struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Fee      float64 `json:"fee"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// QueryResult is the answer to a single retrieval query.
type QueryResult struct {
	Context  string               `json:"context"`
	Services []RetrievalCandidate `json:"services"`
}

// MultiQueryResult is the merged answer to a decomposed multi-service query.
type MultiQueryResult struct {
	Services         []RetrievalCandidate `json:"services"`
	TotalFound       int                  `json:"total_found"`
	QueriesProcessed int                  `json:"queries_processed"`
}

// Page is one page of raw fee-schedule text handed to the extraction engine.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// ExtractionSummary reports totals for one extraction run.
type ExtractionSummary struct {
	TotalServices  int       `json:"total_services"`
	TotalRules     int       `json:"total_rules"`
	PagesProcessed int       `json:"pages_processed"`
	ExtractionDate time.Time `json:"extraction_date"`
}

// ExtractionResult is the persisted artifact format for one extraction run.
type ExtractionResult struct {
	Services []ServiceItem     `json:"services"`
	Rules    []BillingRule     `json:"rules"`
	Summary  ExtractionSummary `json:"summary"`
}
