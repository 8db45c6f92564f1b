package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/providers"
	"github.com/medkb/billing-kb/internal/infrastructure/observability"
	apperrors "github.com/medkb/billing-kb/pkg/errors"
)

const (
	defaultTopK      = 3
	multiQueryTopK   = 2
	queryCacheTTL    = 300
	noMatchContext   = "No matching service found in the knowledge base."
	maxAlternatives  = 2
	queryCachePrefix = "query:"
)

// RetrievalService answers free-text questions about services from the
// embedding index.
type RetrievalService struct {
	embedder providers.Embedder
	index    providers.VectorIndex
	cache    providers.CacheProvider
	metrics  *observability.Metrics
}

// NewRetrievalService creates a new retrieval service. The cache is optional.
func NewRetrievalService(embedder providers.Embedder, index providers.VectorIndex, cache providers.CacheProvider) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		cache:    cache,
	}
}

// SetMetrics enables cache hit/miss metrics for cached query reads.
func (s *RetrievalService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// ProcessQuery embeds the query, searches the index for service records and
// renders a context string around the best match. topK <= 0 falls back to the
// default.
func (s *RetrievalService) ProcessQuery(ctx context.Context, query string, topK int) (*entities.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewValidationError("query must not be empty")
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	cacheKey := fmt.Sprintf("%s%d:%s", queryCachePrefix, topK, strings.ToLower(strings.TrimSpace(query)))
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached entities.QueryResult
			if err := json.Unmarshal(data, &cached); err == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, cacheKey)
				}
				return &cached, nil
			}
		}
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, cacheKey)
		}
	}

	matches, err := s.search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	candidates := make([]entities.RetrievalCandidate, 0, len(matches))
	for _, match := range matches {
		candidates = append(candidates, candidateFromMatch(match))
	}

	result := &entities.QueryResult{
		Context:  buildContext(candidates),
		Services: candidates,
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, queryCacheTTL); err != nil {
				log.Printf("Warning: failed to cache query result: %v", err)
			}
		}
	}

	return result, nil
}

// SearchMultipleServices runs one index search per sub-query concurrently and
// merges the hits in sub-query order, dropping repeated codes. Any failed
// sub-query fails the whole call.
func (s *RetrievalService) SearchMultipleServices(ctx context.Context, queries []string, topK int) (*entities.MultiQueryResult, error) {
	if len(queries) == 0 {
		return nil, apperrors.NewValidationError("at least one sub-query is required")
	}
	if topK <= 0 {
		topK = multiQueryTopK
	}

	type subResult struct {
		candidates []entities.RetrievalCandidate
		err        error
	}

	results := make([]subResult, len(queries))
	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			matches, err := s.search(ctx, query, topK)
			if err != nil {
				results[i] = subResult{err: err}
				return
			}
			candidates := make([]entities.RetrievalCandidate, 0, len(matches))
			for _, match := range matches {
				candidates = append(candidates, candidateFromMatch(match))
			}
			results[i] = subResult{candidates: candidates}
		}(i, query)
	}
	wg.Wait()

	var merged []entities.RetrievalCandidate
	seen := make(map[string]struct{})
	for _, result := range results {
		if result.err != nil {
			return nil, result.err
		}
		for _, candidate := range result.candidates {
			if _, dup := seen[candidate.Code]; dup {
				continue
			}
			seen[candidate.Code] = struct{}{}
			merged = append(merged, candidate)
		}
	}

	return &entities.MultiQueryResult{
		Services:         merged,
		TotalFound:       len(merged),
		QueriesProcessed: len(queries),
	}, nil
}

// ProcessMultiQuery decomposes the query into per-service sub-queries and
// searches them all.
func (s *RetrievalService) ProcessMultiQuery(ctx context.Context, query string) (*entities.MultiQueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewValidationError("query must not be empty")
	}
	return s.SearchMultipleServices(ctx, DecomposeQuery(query), multiQueryTopK)
}

// GetServiceInfo renders a query answer as a knowledge-base statement for
// conversational callers.
func (s *RetrievalService) GetServiceInfo(ctx context.Context, query string) (string, error) {
	result, err := s.ProcessQuery(ctx, query, defaultTopK)
	if err != nil {
		return "", err
	}
	return "From knowledge base: " + result.Context, nil
}

func (s *RetrievalService) search(ctx context.Context, query string, topK int) ([]providers.Match, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.NewExternalError("embedding request failed", err)
	}

	matches, err := s.index.Search(ctx, vector, topK, &providers.SearchFilter{Kind: providers.RecordKindService})
	if err != nil {
		return nil, apperrors.NewUnavailableError("vector index search failed", err)
	}
	return matches, nil
}

// buildContext renders the best match and up to two alternatives into a
// single context sentence.
func buildContext(candidates []entities.RetrievalCandidate) string {
	if len(candidates) == 0 {
		return noMatchContext
	}

	best := candidates[0]
	context := fmt.Sprintf("Service found: %s (code: %s, price: $%.2f)", best.Name, best.Code, best.Fee)
	if best.Category != "" {
		context += fmt.Sprintf(", category: %s", best.Category)
	}

	if len(candidates) > 1 {
		alternatives := candidates[1:]
		if len(alternatives) > maxAlternatives {
			alternatives = alternatives[:maxAlternatives]
		}
		parts := make([]string, 0, len(alternatives))
		for _, alt := range alternatives {
			parts = append(parts, fmt.Sprintf("%s (%s, $%.2f)", alt.Name, alt.Code, alt.Fee))
		}
		context += ". Alternative services: " + strings.Join(parts, ", ")
	}

	return context
}

// candidateFromMatch reads a retrieval candidate out of an index payload.
// Fees arrive as numbers or strings depending on how the record was indexed.
func candidateFromMatch(match providers.Match) entities.RetrievalCandidate {
	candidate := entities.RetrievalCandidate{Score: match.Score}

	if code, ok := match.Payload["code"].(string); ok {
		candidate.Code = code
	}
	if name, ok := match.Payload["name"].(string); ok {
		candidate.Name = name
	}
	if category, ok := match.Payload["category"].(string); ok {
		candidate.Category = category
	}
	switch fee := match.Payload["fee"].(type) {
	case float64:
		candidate.Fee = fee
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimPrefix(fee, "$"), 64); err == nil {
			candidate.Fee = parsed
		}
	}

	return candidate
}
