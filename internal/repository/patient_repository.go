package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// PatientRepository handles patient data access.
type PatientRepository struct {
	pool *pgxpool.Pool
}

// NewPatientRepository creates a new PatientRepository.
func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

const patientColumns = `id, document_number, name, email, birth_date, password_hash, psychologist_id, guardian_id, created_at, updated_at`

func scanPatient(row interface{ Scan(dest ...any) error }, p *model.Patient) error {
	return row.Scan(&p.ID, &p.DocumentNumber, &p.Name, &p.Email, &p.BirthDate, &p.PasswordHash, &p.PsychologistID, &p.GuardianID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByDocument retrieves a patient by document number (login identifier).
func (r *PatientRepository) GetByDocument(ctx context.Context, document string) (*model.Patient, error) {
	p := &model.Patient{}
	err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE document_number = $1`, document), p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a patient by id.
func (r *PatientRepository) GetByID(ctx context.Context, id int) (*model.Patient, error) {
	p := &model.Patient{}
	err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1`, id), p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new patient.
func (r *PatientRepository) Create(ctx context.Context, p *model.Patient) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO patients (document_number, name, email, birth_date, password_hash, psychologist_id, guardian_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		p.DocumentNumber, p.Name, p.Email, p.BirthDate, p.PasswordHash, p.PsychologistID, p.GuardianID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update modifies an existing patient. An empty password hash keeps the
// stored one.
func (r *PatientRepository) Update(ctx context.Context, p *model.Patient) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE patients
		 SET document_number = $1, name = $2, email = $3, birth_date = $4,
		     password_hash = COALESCE(NULLIF($5, ''), password_hash),
		     guardian_id = $6, updated_at = NOW()
		 WHERE id = $7`,
		p.DocumentNumber, p.Name, p.Email, p.BirthDate, p.PasswordHash, p.GuardianID, p.ID,
	)
	return err
}

// Delete removes a patient.
func (r *PatientRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

// ListByPsychologist retrieves a clinician's patients with optional name or
// document search, paginated.
func (r *PatientRepository) ListByPsychologist(ctx context.Context, psychologistID, limit, offset int, search string) ([]model.Patient, int, error) {
	baseQuery := ` FROM patients WHERE psychologist_id = $1`
	args := []any{psychologistID}

	if search != "" {
		args = append(args, "%"+search+"%")
		baseQuery += fmt.Sprintf(" AND (name ILIKE $%d OR document_number ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + patientColumns + baseQuery +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []model.Patient
	for rows.Next() {
		var p model.Patient
		if err := scanPatient(rows, &p); err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}
