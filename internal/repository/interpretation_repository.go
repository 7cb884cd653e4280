package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// InterpretationRepository handles normative band range tables. Tables are
// configuration data: versioned rows in the database, never constants in code.
type InterpretationRepository struct {
	pool *pgxpool.Pool
}

// NewInterpretationRepository creates a new InterpretationRepository.
func NewInterpretationRepository(pool *pgxpool.Pool) *InterpretationRepository {
	return &InterpretationRepository{pool: pool}
}

// GetTable retrieves the ordered range table of one domain. An empty slice is
// a valid answer; the engine degrades it to the "not available" band.
func (r *InterpretationRepository) GetTable(ctx context.Context, templateID uuid.UUID, domain string) ([]model.BandRange, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, template_id, domain, min_score, max_score, label, position
		 FROM interpretation_ranges
		 WHERE template_id = $1 AND domain = $2
		 ORDER BY position`, templateID, domain,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRanges(rows)
}

// GetTables retrieves every domain table of an instrument, keyed by domain.
func (r *InterpretationRepository) GetTables(ctx context.Context, templateID uuid.UUID) (map[string][]model.BandRange, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, template_id, domain, min_score, max_score, label, position
		 FROM interpretation_ranges
		 WHERE template_id = $1
		 ORDER BY domain, position`, templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranges, err := scanRanges(rows)
	if err != nil {
		return nil, err
	}

	tables := make(map[string][]model.BandRange)
	for _, br := range ranges {
		tables[br.Domain] = append(tables[br.Domain], br)
	}
	return tables, nil
}

// ReplaceDomain swaps one domain's table in a single transaction.
func (r *InterpretationRepository) ReplaceDomain(ctx context.Context, templateID uuid.UUID, domain string, ranges []model.BandRange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM interpretation_ranges WHERE template_id = $1 AND domain = $2`,
		templateID, domain,
	); err != nil {
		return err
	}

	for i, br := range ranges {
		_, err = tx.Exec(ctx,
			`INSERT INTO interpretation_ranges (template_id, domain, min_score, max_score, label, position)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			templateID, domain, br.Min, br.Max, br.Label, i,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func scanRanges(rows pgx.Rows) ([]model.BandRange, error) {
	var ranges []model.BandRange
	for rows.Next() {
		var br model.BandRange
		if err := rows.Scan(&br.ID, &br.TemplateID, &br.Domain, &br.Min, &br.Max, &br.Label, &br.Position); err != nil {
			return nil, err
		}
		ranges = append(ranges, br)
	}
	return ranges, rows.Err()
}
