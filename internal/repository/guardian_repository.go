package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// GuardianRepository handles guardian data access.
type GuardianRepository struct {
	pool *pgxpool.Pool
}

// NewGuardianRepository creates a new GuardianRepository.
func NewGuardianRepository(pool *pgxpool.Pool) *GuardianRepository {
	return &GuardianRepository{pool: pool}
}

// GetByID retrieves a guardian by id.
func (r *GuardianRepository) GetByID(ctx context.Context, id int) (*model.Guardian, error) {
	g := &model.Guardian{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, relationship, created_at, updated_at
		 FROM guardians WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &g.Relationship, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// List retrieves guardians with pagination and optional name/email search.
func (r *GuardianRepository) List(ctx context.Context, limit, offset int, search string) ([]model.Guardian, int, error) {
	baseQuery := ` FROM guardians`
	args := []any{}

	if search != "" {
		args = append(args, "%"+search+"%")
		baseQuery += fmt.Sprintf(" WHERE name ILIKE $%d OR email ILIKE $%d", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, email, phone, relationship, created_at, updated_at` + baseQuery +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var guardians []model.Guardian
	for rows.Next() {
		var g model.Guardian
		if err := rows.Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &g.Relationship, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, 0, err
		}
		guardians = append(guardians, g)
	}
	return guardians, total, rows.Err()
}

// Create inserts a new guardian.
func (r *GuardianRepository) Create(ctx context.Context, g *model.Guardian) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO guardians (name, email, phone, relationship)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		g.Name, g.Email, g.Phone, g.Relationship,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

// Update modifies an existing guardian.
func (r *GuardianRepository) Update(ctx context.Context, g *model.Guardian) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE guardians
		 SET name = $2, email = $3, phone = $4, relationship = $5, updated_at = NOW()
		 WHERE id = $1`,
		g.ID, g.Name, g.Email, g.Phone, g.Relationship)
	return err
}

// Delete removes a guardian. Patients referencing it keep a NULL guardian.
func (r *GuardianRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM guardians WHERE id = $1`, id)
	return err
}
