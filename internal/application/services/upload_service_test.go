package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/providers"
)

type recordingIndex struct {
	batchSizes []int
	failBatch  bool
	failIDs    map[string]bool
}

func (r *recordingIndex) EnsureCollection(ctx context.Context) error { return nil }

func (r *recordingIndex) Search(ctx context.Context, vector []float32, topK int, filter *providers.SearchFilter) ([]providers.Match, error) {
	return nil, nil
}

func (r *recordingIndex) Upsert(ctx context.Context, records []providers.VectorRecord) error {
	r.batchSizes = append(r.batchSizes, len(records))
	if r.failBatch && len(records) > 1 {
		return errors.New("batch rejected")
	}
	for _, record := range records {
		if r.failIDs[record.ID] {
			return errors.New("record rejected")
		}
	}
	return nil
}

type constantEmbedder struct{}

func (constantEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func TestServiceEmbeddingText_AllFields(t *testing.T) {
	service := &entities.ServiceItem{
		Code:               "A003",
		Name:               "General assessment",
		Description:        "General assessment",
		Fee:                77.2,
		Category:           "Assessment",
		BillingConstraints: []string{"once per patient per day"},
		Section:            "CONSULTATIONS AND VISITS",
		Notes:              "see preamble",
	}

	text := services.ServiceEmbeddingText(service)

	assert.Equal(t,
		"Service Code: A003 | Service Name: General assessment | Description: General assessment | Category: Assessment | Fee: $77.2 | Billing Constraints: once per patient per day | Section: CONSULTATIONS AND VISITS | Notes: see preamble",
		text)
}

func TestServiceEmbeddingText_OptionalFieldsOmitted(t *testing.T) {
	service := &entities.ServiceItem{
		Code:        "A001",
		Name:        "Minor assessment",
		Description: "Minor assessment",
		Fee:         23.75,
		Category:    "Assessment",
	}

	text := services.ServiceEmbeddingText(service)

	assert.Equal(t,
		"Service Code: A001 | Service Name: Minor assessment | Description: Minor assessment | Category: Assessment | Fee: $23.75",
		text)
}

func TestRuleEmbeddingText(t *testing.T) {
	rule := &entities.BillingRule{
		RuleID:        "RULE_7_1",
		RuleType:      entities.RuleTypeCombination,
		Description:   "Code A250 is not eligible for payment when billed with A251 on the same day",
		AffectedCodes: []string{"A250", "A251"},
		Conditions:    []string{"billed with A251 on the same day", "same day"},
		Section:       "GENERAL PREAMBLE",
	}

	text := services.RuleEmbeddingText(rule)

	assert.Equal(t,
		"Rule ID: RULE_7_1 | Rule Type: combination | Description: Code A250 is not eligible for payment when billed with A251 on the same day | Affected Codes: A250, A251 | Conditions: billed with A251 on the same day, same day | Section: GENERAL PREAMBLE",
		text)
}

func TestUploadServices_Batches(t *testing.T) {
	index := &recordingIndex{}
	svc := services.NewUploadService(constantEmbedder{}, index)

	items := make([]entities.ServiceItem, 250)
	for i := range items {
		items[i] = entities.ServiceItem{Code: "A001", Name: "Minor assessment", Fee: 23.75}
	}

	report, err := svc.UploadServices(context.Background(), items)

	require.NoError(t, err)
	assert.Equal(t, 250, report.Uploaded)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []int{100, 100, 50}, index.batchSizes)
}

func TestUploadServices_BatchFailureFallsBackToIndividual(t *testing.T) {
	index := &recordingIndex{failBatch: true}
	svc := services.NewUploadService(constantEmbedder{}, index)

	items := []entities.ServiceItem{
		{Code: "A001", Name: "Minor assessment", Fee: 23.75},
		{Code: "A003", Name: "General assessment", Fee: 77.2},
	}

	report, err := svc.UploadServices(context.Background(), items)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Uploaded)
	assert.Empty(t, report.Failed)
	// one failed batch call, then one call per record
	assert.Equal(t, []int{2, 1, 1}, index.batchSizes)
}

func TestUploadRules_RecordIDFormat(t *testing.T) {
	var captured []providers.VectorRecord
	index := &capturingIndex{records: &captured}
	svc := services.NewUploadService(constantEmbedder{}, index)

	rules := []entities.BillingRule{{RuleID: "RULE_7_1", RuleType: entities.RuleTypeGeneral, Description: "rule"}}

	_, err := svc.UploadRules(context.Background(), rules)

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Regexp(t, regexp.MustCompile(`^rule_RULE_7_1_[0-9a-f]{8}$`), captured[0].ID)
	assert.Equal(t, providers.RecordKindRule, captured[0].Payload["type"])
	assert.Equal(t, "RULE_7_1", captured[0].Payload["rule_id"])
}

type capturingIndex struct {
	records *[]providers.VectorRecord
}

func (c *capturingIndex) EnsureCollection(ctx context.Context) error { return nil }

func (c *capturingIndex) Search(ctx context.Context, vector []float32, topK int, filter *providers.SearchFilter) ([]providers.Match, error) {
	return nil, nil
}

func (c *capturingIndex) Upsert(ctx context.Context, records []providers.VectorRecord) error {
	*c.records = append(*c.records, records...)
	return nil
}
