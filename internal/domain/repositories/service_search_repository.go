package repositories

import (
	"context"

	"github.com/medkb/billing-kb/internal/domain/entities"
)

// ServiceSearchRepository is the lexical (keyword) search index over service
// items, complementing the semantic vector index.
type ServiceSearchRepository interface {
	InitSchema(ctx context.Context) error
	Index(ctx context.Context, service *entities.ServiceItem) error
	Search(ctx context.Context, query string, limit int) ([]*entities.ServiceItem, error)
}
