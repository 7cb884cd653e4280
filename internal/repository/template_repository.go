package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// TemplateRepository handles assessment template data access.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// Create inserts a new template.
func (r *TemplateRepository) Create(ctx context.Context, t *model.AssessmentTemplate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assessment_templates (title, description, author_id, total_value, weighting_mode, negative_marker, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.AuthorID, t.TotalValue, t.WeightingMode, t.NegativeMarker, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a template by its UUID.
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AssessmentTemplate, error) {
	t := &model.AssessmentTemplate{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, author_id, total_value, weighting_mode, COALESCE(negative_marker, ''), status, created_at, updated_at
		 FROM assessment_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.AuthorID, &t.TotalValue, &t.WeightingMode, &t.NegativeMarker, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByAuthorPaginated retrieves templates, optionally filtered by author.
// authorID 0 lists every template.
func (r *TemplateRepository) ListByAuthorPaginated(ctx context.Context, authorID, limit, offset int) ([]model.AssessmentTemplate, int, error) {
	where := ``
	args := []any{}
	if authorID != 0 {
		where = `WHERE author_id = $1`
		args = append(args, authorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assessment_templates `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, title, description, author_id, total_value, weighting_mode, COALESCE(negative_marker, ''), status, created_at, updated_at
	          FROM assessment_templates ` + where + `
	          ORDER BY created_at DESC`
	if authorID != 0 {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var templates []model.AssessmentTemplate
	for rows.Next() {
		var t model.AssessmentTemplate
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.AuthorID, &t.TotalValue, &t.WeightingMode, &t.NegativeMarker, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		templates = append(templates, t)
	}
	return templates, total, rows.Err()
}

// Update modifies an existing template's editable fields.
func (r *TemplateRepository) Update(ctx context.Context, t *model.AssessmentTemplate) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assessment_templates
		 SET title = $1, description = $2, total_value = $3, weighting_mode = $4, negative_marker = $5, updated_at = NOW()
		 WHERE id = $6`,
		t.Title, t.Description, t.TotalValue, t.WeightingMode, t.NegativeMarker, t.ID,
	)
	return err
}

// UpdateStatus changes a template's lifecycle status.
func (r *TemplateRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TemplateStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assessment_templates SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	return err
}

// Delete removes a template and its question set (cascade).
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM assessment_templates WHERE id = $1`, id)
	return err
}

// ListQuestions retrieves a template's questions with their options, ordered
// by order_num.
func (r *TemplateRepository) ListQuestions(ctx context.Context, templateID uuid.UUID) ([]model.QuestionTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, template_id, text, type, order_num, mandatory, weight, domain,
		        min_value, max_value, step_value, placeholder
		 FROM question_templates
		 WHERE template_id = $1
		 ORDER BY order_num`, templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.QuestionTemplate
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var q model.QuestionTemplate
		if err := rows.Scan(
			&q.ID, &q.TemplateID, &q.Text, &q.Type, &q.OrderNum, &q.Mandatory,
			&q.Weight, &q.Domain, &q.MinValue, &q.MaxValue, &q.StepValue, &q.Placeholder,
		); err != nil {
			return nil, err
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	optRows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_template_id, o.label, o.value, o.is_other, o.order_num
		 FROM option_templates o
		 JOIN question_templates q ON o.question_template_id = q.id
		 WHERE q.template_id = $1
		 ORDER BY o.question_template_id, o.order_num`, templateID,
	)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o model.OptionTemplate
		if err := optRows.Scan(&o.ID, &o.QuestionTemplateID, &o.Label, &o.Value, &o.IsOther, &o.OrderNum); err != nil {
			return nil, err
		}
		if i, ok := index[o.QuestionTemplateID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, optRows.Err()
}

// AddQuestion inserts a question template with its options in one transaction.
func (r *TemplateRepository) AddQuestion(ctx context.Context, q *model.QuestionTemplate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO question_templates (template_id, text, type, order_num, mandatory, weight, domain, min_value, max_value, step_value, placeholder)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		q.TemplateID, q.Text, q.Type, q.OrderNum, q.Mandatory, q.Weight,
		q.Domain, q.MinValue, q.MaxValue, q.StepValue, q.Placeholder,
	).Scan(&q.ID)
	if err != nil {
		return err
	}

	for i := range q.Options {
		o := &q.Options[i]
		o.QuestionTemplateID = q.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO option_templates (question_template_id, label, value, is_other, order_num)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			o.QuestionTemplateID, o.Label, o.Value, o.IsOther, o.OrderNum,
		).Scan(&o.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ReplaceQuestions swaps a template's whole question set in one transaction.
func (r *TemplateRepository) ReplaceQuestions(ctx context.Context, templateID uuid.UUID, questions []model.QuestionTemplate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM question_templates WHERE template_id = $1`, templateID); err != nil {
		return err
	}

	for i := range questions {
		q := &questions[i]
		q.TemplateID = templateID
		err = tx.QueryRow(ctx,
			`INSERT INTO question_templates (template_id, text, type, order_num, mandatory, weight, domain, min_value, max_value, step_value, placeholder)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id`,
			q.TemplateID, q.Text, q.Type, q.OrderNum, q.Mandatory, q.Weight,
			q.Domain, q.MinValue, q.MaxValue, q.StepValue, q.Placeholder,
		).Scan(&q.ID)
		if err != nil {
			return err
		}
		for j := range q.Options {
			o := &q.Options[j]
			o.QuestionTemplateID = q.ID
			_, err = tx.Exec(ctx,
				`INSERT INTO option_templates (question_template_id, label, value, is_other, order_num)
				 VALUES ($1, $2, $3, $4, $5)`,
				o.QuestionTemplateID, o.Label, o.Value, o.IsOther, o.OrderNum,
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}
