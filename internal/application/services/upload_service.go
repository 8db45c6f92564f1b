package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/providers"
	"github.com/medkb/billing-kb/pkg/retry"
)

// uploadBatchSize is the index upsert batch limit.
const uploadBatchSize = 100

// UploadReport summarises one upload run. Failed holds the record IDs that
// could not be upserted even individually.
type UploadReport struct {
	Uploaded int      `json:"uploaded"`
	Failed   []string `json:"failed"`
}

// UploadService embeds extracted records and upserts them into the vector
// index in batches. A failed batch degrades to per-record uploads with retry,
// so one poisoned record cannot sink the rest of its batch.
type UploadService struct {
	embedder providers.Embedder
	index    providers.VectorIndex
}

// NewUploadService creates a new upload service.
func NewUploadService(embedder providers.Embedder, index providers.VectorIndex) *UploadService {
	return &UploadService{
		embedder: embedder,
		index:    index,
	}
}

// ServiceEmbeddingText renders a service item into the text that gets
// embedded. Field order is fixed; optional fields are appended only when set.
func ServiceEmbeddingText(service *entities.ServiceItem) string {
	parts := []string{
		fmt.Sprintf("Service Code: %s", service.Code),
		fmt.Sprintf("Service Name: %s", service.Name),
		fmt.Sprintf("Description: %s", service.Description),
		fmt.Sprintf("Category: %s", service.Category),
		fmt.Sprintf("Fee: $%s", strconv.FormatFloat(service.Fee, 'f', -1, 64)),
	}
	if len(service.BillingConstraints) > 0 {
		parts = append(parts, fmt.Sprintf("Billing Constraints: %s", strings.Join(service.BillingConstraints, ", ")))
	}
	if service.Section != "" {
		parts = append(parts, fmt.Sprintf("Section: %s", service.Section))
	}
	if service.Notes != "" {
		parts = append(parts, fmt.Sprintf("Notes: %s", service.Notes))
	}
	return strings.Join(parts, " | ")
}

// RuleEmbeddingText renders a billing rule into the text that gets embedded.
func RuleEmbeddingText(rule *entities.BillingRule) string {
	parts := []string{
		fmt.Sprintf("Rule ID: %s", rule.RuleID),
		fmt.Sprintf("Rule Type: %s", rule.RuleType),
		fmt.Sprintf("Description: %s", rule.Description),
	}
	if len(rule.AffectedCodes) > 0 {
		parts = append(parts, fmt.Sprintf("Affected Codes: %s", strings.Join(rule.AffectedCodes, ", ")))
	}
	if len(rule.Conditions) > 0 {
		parts = append(parts, fmt.Sprintf("Conditions: %s", strings.Join(rule.Conditions, ", ")))
	}
	if rule.Section != "" {
		parts = append(parts, fmt.Sprintf("Section: %s", rule.Section))
	}
	return strings.Join(parts, " | ")
}

// UploadServices embeds and upserts service items.
func (s *UploadService) UploadServices(ctx context.Context, services []entities.ServiceItem) (*UploadReport, error) {
	records := make([]providers.VectorRecord, 0, len(services))
	for i := range services {
		record, err := s.serviceRecord(ctx, &services[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return s.upsertBatched(ctx, records)
}

// UploadRules embeds and upserts billing rules.
func (s *UploadService) UploadRules(ctx context.Context, rules []entities.BillingRule) (*UploadReport, error) {
	records := make([]providers.VectorRecord, 0, len(rules))
	for i := range rules {
		record, err := s.ruleRecord(ctx, &rules[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return s.upsertBatched(ctx, records)
}

func (s *UploadService) serviceRecord(ctx context.Context, service *entities.ServiceItem) (providers.VectorRecord, error) {
	text := ServiceEmbeddingText(service)
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return providers.VectorRecord{}, fmt.Errorf("failed to embed service %s: %w", service.Code, err)
	}

	constraints, _ := json.Marshal(service.BillingConstraints)
	return providers.VectorRecord{
		ID:     recordID(providers.RecordKindService, service.Code),
		Vector: vector,
		Payload: map[string]any{
			"type":                providers.RecordKindService,
			"code":                service.Code,
			"name":                service.Name,
			"description":         service.Description,
			"fee":                 service.Fee,
			"category":            service.Category,
			"section":             service.Section,
			"page_number":         service.PageNumber,
			"text":                text,
			"billing_constraints": string(constraints),
			"notes":               service.Notes,
		},
	}, nil
}

func (s *UploadService) ruleRecord(ctx context.Context, rule *entities.BillingRule) (providers.VectorRecord, error) {
	text := RuleEmbeddingText(rule)
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return providers.VectorRecord{}, fmt.Errorf("failed to embed rule %s: %w", rule.RuleID, err)
	}

	codes, _ := json.Marshal(rule.AffectedCodes)
	conditions, _ := json.Marshal(rule.Conditions)
	return providers.VectorRecord{
		ID:     recordID(providers.RecordKindRule, rule.RuleID),
		Vector: vector,
		Payload: map[string]any{
			"type":           providers.RecordKindRule,
			"rule_id":        rule.RuleID,
			"rule_type":      rule.RuleType,
			"description":    rule.Description,
			"affected_codes": string(codes),
			"conditions":     string(conditions),
			"section":        rule.Section,
			"page_number":    rule.PageNumber,
			"text":           text,
		},
	}, nil
}

// upsertBatched upserts records in fixed-size batches. When a batch upsert
// fails, every record in it is retried individually; records that still fail
// are reported, not fatal.
func (s *UploadService) upsertBatched(ctx context.Context, records []providers.VectorRecord) (*UploadReport, error) {
	report := &UploadReport{Failed: []string{}}

	for start := 0; start < len(records); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		if err := s.index.Upsert(ctx, batch); err == nil {
			report.Uploaded += len(batch)
			continue
		} else {
			log.Printf("Warning: batch upsert of %d records failed, retrying individually: %v", len(batch), err)
		}

		for _, record := range batch {
			record := record
			err := retry.Do(ctx, retry.UploadConfig(), func() error {
				return s.index.Upsert(ctx, []providers.VectorRecord{record})
			})
			if err != nil {
				log.Printf("Warning: individual upsert failed for %s: %v", record.ID, err)
				report.Failed = append(report.Failed, record.ID)
				continue
			}
			report.Uploaded++
		}
	}

	return report, nil
}

// recordID builds a unique index record id. The random suffix keeps repeated
// uploads of the same logical record from colliding.
func recordID(kind, logicalID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s", kind, logicalID, suffix)
}
