package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// PsychologistRepository handles clinician data access.
type PsychologistRepository struct {
	pool *pgxpool.Pool
}

// NewPsychologistRepository creates a new PsychologistRepository.
func NewPsychologistRepository(pool *pgxpool.Pool) *PsychologistRepository {
	return &PsychologistRepository{pool: pool}
}

// GetByEmail retrieves a psychologist by email (login identifier).
func (r *PsychologistRepository) GetByEmail(ctx context.Context, email string) (*model.Psychologist, error) {
	p := &model.Psychologist{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, license_number, password_hash, created_at, updated_at
		 FROM psychologists WHERE email = $1`, email,
	).Scan(&p.ID, &p.Email, &p.Name, &p.LicenseNumber, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a psychologist by id.
func (r *PsychologistRepository) GetByID(ctx context.Context, id int) (*model.Psychologist, error) {
	p := &model.Psychologist{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, license_number, password_hash, created_at, updated_at
		 FROM psychologists WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.Name, &p.LicenseNumber, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new psychologist.
func (r *PsychologistRepository) Create(ctx context.Context, p *model.Psychologist) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO psychologists (email, name, license_number, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		p.Email, p.Name, p.LicenseNumber, p.PasswordHash,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}
