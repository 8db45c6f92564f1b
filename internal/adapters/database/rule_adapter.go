package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/medkb/billing-kb/internal/domain/entities"
	"github.com/medkb/billing-kb/internal/domain/repositories"
	"github.com/medkb/billing-kb/internal/infrastructure/clients/postgres"
	apperrors "github.com/medkb/billing-kb/pkg/errors"
)

// RuleAdapter implements RuleRepository
type RuleAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRuleAdapter creates a new rule adapter
func NewRuleAdapter(client *postgres.Client) repositories.RuleRepository {
	return &RuleAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func ruleRecord(rule *entities.BillingRule) goqu.Record {
	return goqu.Record{
		"rule_id":        rule.RuleID,
		"rule_type":      rule.RuleType,
		"description":    rule.Description,
		"affected_codes": pq.Array(rule.AffectedCodes),
		"conditions":     pq.Array(rule.Conditions),
		"page_number":    rule.PageNumber,
		"section":        sql.NullString{String: rule.Section, Valid: rule.Section != ""},
	}
}

// Upsert inserts a billing rule or replaces the stored row for its id
func (a *RuleAdapter) Upsert(ctx context.Context, rule *entities.BillingRule) error {
	record := ruleRecord(rule)

	query, args, err := a.db.Insert("billing_rules").
		Rows(record).
		OnConflict(goqu.DoUpdate("rule_id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert rule", err)
	}
	return nil
}

// ListByCode retrieves the rules whose affected codes include the given code
func (a *RuleAdapter) ListByCode(ctx context.Context, code string) ([]*entities.BillingRule, error) {
	query, args, err := a.db.Select(
		"rule_id", "rule_type", "description", "affected_codes",
		"conditions", "page_number", "section",
	).From("billing_rules").
		Where(goqu.L("? = ANY(affected_codes)", code)).
		Order(goqu.C("rule_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list rules by code", err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// List retrieves billing rules up to the given limit
func (a *RuleAdapter) List(ctx context.Context, limit int) ([]*entities.BillingRule, error) {
	stmt := a.db.Select(
		"rule_id", "rule_type", "description", "affected_codes",
		"conditions", "page_number", "section",
	).From("billing_rules").
		Order(goqu.C("rule_id").Asc())

	if limit > 0 {
		stmt = stmt.Limit(uint(limit))
	}

	query, args, err := stmt.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list rules", err)
	}
	defer rows.Close()

	return scanRules(rows)
}

func scanRules(rows *sql.Rows) ([]*entities.BillingRule, error) {
	var rules []*entities.BillingRule
	for rows.Next() {
		rule := &entities.BillingRule{}
		var section sql.NullString

		err := rows.Scan(
			&rule.RuleID,
			&rule.RuleType,
			&rule.Description,
			pq.Array(&rule.AffectedCodes),
			pq.Array(&rule.Conditions),
			&rule.PageNumber,
			&section,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan rule", err)
		}

		rule.Section = section.String
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read rules", err)
	}
	return rules, nil
}
