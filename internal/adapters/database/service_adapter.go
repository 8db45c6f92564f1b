package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/repositories"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/postgres"
	apperrors "github.com/medkb/billing-kb/pkg/errors"
)

// ServiceAdapter implements ServiceRepository
type ServiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func serviceRecord(service *entities.ServiceItem) goqu.Record {
	return goqu.Record{
		"code":                service.Code,
		"name":                service.Name,
		"description":         service.Description,
		"fee":                 service.Fee,
		"category":            service.Category,
		"billing_constraints": pq.Array(service.BillingConstraints),
		"page_number":         service.PageNumber,
		"section":             sql.NullString{String: service.Section, Valid: service.Section != ""},
		"notes":               sql.NullString{String: service.Notes, Valid: service.Notes != ""},
		"updated_at":          time.Now().UTC(),
	}
}

// Upsert inserts a service item or replaces the stored row for its code
func (a *ServiceAdapter) Upsert(ctx context.Context, service *entities.ServiceItem) error {
	record := serviceRecord(service)

	query, args, err := a.db.Insert("services").
		Rows(record).
		OnConflict(goqu.DoUpdate("code", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert service", err)
	}
	return nil
}

// GetByCode retrieves a service item by code
func (a *ServiceAdapter) GetByCode(ctx context.Context, code string) (*entities.ServiceItem, error) {
	query, args, err := a.db.Select(
		"code", "name", "description", "fee", "category",
		"billing_constraints", "page_number", "section", "notes",
	).From("services").
		Where(goqu.Ex{"code": code}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	service, err := scanService(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with code %s not found", code))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get service", err)
	}
	return service, nil
}

// GetByCodes retrieves multiple service items by their codes
func (a *ServiceAdapter) GetByCodes(ctx context.Context, codes []string) ([]*entities.ServiceItem, error) {
	if len(codes) == 0 {
		return []*entities.ServiceItem{}, nil
	}

	query, args, err := a.db.Select(
		"code", "name", "description", "fee", "category",
		"billing_constraints", "page_number", "section", "notes",
	).From("services").
		Where(goqu.Ex{"code": codes}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get services by codes", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

// List retrieves service items matching the filter
func (a *ServiceAdapter) List(ctx context.Context, filter repositories.ServiceFilter) ([]*entities.ServiceItem, error) {
	stmt := a.db.Select(
		"code", "name", "description", "fee", "category",
		"billing_constraints", "page_number", "section", "notes",
	).From("services").
		Order(goqu.C("code").Asc())

	if filter.Category != "" {
		stmt = stmt.Where(goqu.Ex{"category": filter.Category})
	}
	if filter.Section != "" {
		stmt = stmt.Where(goqu.Ex{"section": filter.Section})
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(uint(filter.Limit))
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list services", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (*entities.ServiceItem, error) {
	service := &entities.ServiceItem{}
	var section, notes sql.NullString

	err := row.Scan(
		&service.Code,
		&service.Name,
		&service.Description,
		&service.Fee,
		&service.Category,
		pq.Array(&service.BillingConstraints),
		&service.PageNumber,
		&section,
		&notes,
	)
	if err != nil {
		return nil, err
	}

	service.Section = section.String
	service.Notes = notes.String
	return service, nil
}

func scanServices(rows *sql.Rows) ([]*entities.ServiceItem, error) {
	var services []*entities.ServiceItem
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan service", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read services", err)
	}
	return services, nil
}
