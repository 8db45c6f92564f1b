package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/repositories"
	tsclient "github.com/medkb/billing-kb/internal/infrastructure/clients/typesense"
)

const defaultSearchLimit = 10

// TypesenseAdapter implements lexical service search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements ServiceSearchRepository
var _ repositories.ServiceSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the services collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a service item into the lexical index, keyed by code
func (a *TypesenseAdapter) Index(ctx context.Context, service *entities.ServiceItem) error {
	document := map[string]interface{}{
		"id":          service.Code,
		"code":        service.Code,
		"name":        service.Name,
		"description": service.Description,
		"category":    service.Category,
		"section":     service.Section,
		"fee":         service.Fee,
		"page_number": service.PageNumber,
	}

	_, err := a.client.Client().Collection(tsclient.ServicesCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index service: %w", err)
	}
	return nil
}

// Search runs a keyword search over service names, descriptions and codes
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.ServiceItem, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name,description,code"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.ServicesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}

	services := []*entities.ServiceItem{}
	if result.Hits == nil {
		return services, nil
	}

	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		services = append(services, serviceFromDocument(*hit.Document))
	}
	return services, nil
}

// serviceFromDocument rebuilds a service item from a Typesense document.
// Typesense returns map[string]interface{}, so every field is cast safely.
func serviceFromDocument(doc map[string]interface{}) *entities.ServiceItem {
	service := &entities.ServiceItem{BillingConstraints: []string{}}

	if val, ok := doc["code"].(string); ok {
		service.Code = val
	}
	if val, ok := doc["name"].(string); ok {
		service.Name = val
	}
	if val, ok := doc["description"].(string); ok {
		service.Description = val
	}
	if val, ok := doc["category"].(string); ok {
		service.Category = val
	}
	if val, ok := doc["section"].(string); ok {
		service.Section = val
	}
	if val, ok := doc["fee"].(float64); ok {
		service.Fee = val
	}
	if val, ok := doc["page_number"].(float64); ok {
		service.PageNumber = int(val)
	}
	return service
}
