package repositories

import (
	"context"

	"github.com/medkb/billing-kb/internal/domain/entities"
)

// ServiceFilter narrows service listings.
type ServiceFilter struct {
	Category string
	Section  string
	Limit    int
}

// ServiceRepository persists extracted service items.
type ServiceRepository interface {
	Upsert(ctx context.Context, service *entities.ServiceItem) error
	GetByCode(ctx context.Context, code string) (*entities.ServiceItem, error)
	GetByCodes(ctx context.Context, codes []string) ([]*entities.ServiceItem, error)
	List(ctx context.Context, filter ServiceFilter) ([]*entities.ServiceItem, error)
}

// RuleRepository persists extracted billing rules.
type RuleRepository interface {
	Upsert(ctx context.Context, rule *entities.BillingRule) error
	ListByCode(ctx context.Context, code string) ([]*entities.BillingRule, error)
	List(ctx context.Context, limit int) ([]*entities.BillingRule, error)
}
