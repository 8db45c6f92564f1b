package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/providers"
	"github.com/medkb/billing-kb/internal/domain/repositories"
	"github.com/medkb/billing-kb/internal/infrastructure/observability"
	apperrors "github.com/medkb/billing-kb/pkg/errors"
)

const serviceCacheTTL = 300

// ServiceComparison pairs the compared services with the one yielding the
// highest fee.
type ServiceComparison struct {
	Services []*entities.ServiceItem `json:"services"`
	Best     *entities.ServiceItem   `json:"best,omitempty"`
}

// CatalogService handles business logic for the service catalog: lookups,
// listings, comparisons and lexical search. The search repository and cache
// are optional.
type CatalogService struct {
	repo       repositories.ServiceRepository
	ruleRepo   repositories.RuleRepository
	searchRepo repositories.ServiceSearchRepository
	cache      providers.CacheProvider
	metrics    *observability.Metrics
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	repo repositories.ServiceRepository,
	ruleRepo repositories.RuleRepository,
	searchRepo repositories.ServiceSearchRepository,
	cache providers.CacheProvider,
) *CatalogService {
	return &CatalogService{
		repo:       repo,
		ruleRepo:   ruleRepo,
		searchRepo: searchRepo,
		cache:      cache,
	}
}

// SetMetrics enables cache hit/miss metrics for cached service lookups.
func (s *CatalogService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// GetByCode retrieves one service item by code.
func (s *CatalogService) GetByCode(ctx context.Context, code string) (*entities.ServiceItem, error) {
	if code == "" {
		return nil, apperrors.NewValidationError("service code is required")
	}

	cacheKey := fmt.Sprintf("service:%s", code)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached entities.ServiceItem
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

	service, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(service); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, serviceCacheTTL); err != nil {
				log.Printf("Warning: failed to cache service %s: %v", code, err)
			}
		}
	}
	return service, nil
}

// List retrieves service items matching the filter.
func (s *CatalogService) List(ctx context.Context, filter repositories.ServiceFilter) ([]*entities.ServiceItem, error) {
	return s.repo.List(ctx, filter)
}

// Compare loads the requested codes and marks the service with the highest
// fee. The first maximal service wins ties.
func (s *CatalogService) Compare(ctx context.Context, codes []string) (*ServiceComparison, error) {
	if len(codes) < 2 {
		return nil, apperrors.NewValidationError("at least two service codes are required")
	}

	services, err := s.repo.GetByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, apperrors.NewNotFoundError("no services found for the given codes")
	}

	comparison := &ServiceComparison{Services: services, Best: services[0]}
	for _, service := range services[1:] {
		if service.Fee > comparison.Best.Fee {
			comparison.Best = service
		}
	}
	return comparison, nil
}

// RulesFor lists the billing rules that mention a service code.
func (s *CatalogService) RulesFor(ctx context.Context, code string) ([]*entities.BillingRule, error) {
	if code == "" {
		return nil, apperrors.NewValidationError("service code is required")
	}
	return s.ruleRepo.ListByCode(ctx, code)
}

// Search runs a lexical search over the catalog.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]*entities.ServiceItem, error) {
	if query == "" {
		return nil, apperrors.NewValidationError("search query is required")
	}
	if s.searchRepo == nil {
		return nil, apperrors.NewUnavailableError("lexical search is not configured", nil)
	}
	return s.searchRepo.Search(ctx, query, limit)
}

// SaveExtraction persists an extraction result into the catalog and, when a
// search repository is configured, indexes the services for lexical search.
// Indexing failures are logged, not fatal.
func (s *CatalogService) SaveExtraction(ctx context.Context, result *entities.ExtractionResult) error {
	for i := range result.Services {
		service := &result.Services[i]
		if err := s.repo.Upsert(ctx, service); err != nil {
			return fmt.Errorf("failed to store service %s: %w", service.Code, err)
		}
		if s.searchRepo != nil {
			if err := s.searchRepo.Index(ctx, service); err != nil {
				log.Printf("Warning: failed to index service %s: %v", service.Code, err)
			}
		}
	}

	for i := range result.Rules {
		rule := &result.Rules[i]
		if err := s.ruleRepo.Upsert(ctx, rule); err != nil {
			return fmt.Errorf("failed to store rule %s: %w", rule.RuleID, err)
		}
	}
	return nil
}
