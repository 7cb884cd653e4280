package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// AssessmentRepository handles assessment instance data access.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// CreateFromTemplate instantiates an assessment by deep-copying the template's
// question set in a single transaction. The copied questions and options get
// fresh instance-scoped ids, so later template edits never reach the issued
// instance.
func (r *AssessmentRepository) CreateFromTemplate(
	ctx context.Context,
	tmpl *model.AssessmentTemplate,
	questions []model.QuestionTemplate,
	patientID, psychologistID int,
) (*model.AssessmentInstance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inst := &model.AssessmentInstance{
		TemplateID:     tmpl.ID,
		Title:          tmpl.Title,
		PatientID:      patientID,
		PsychologistID: psychologistID,
		TotalValue:     tmpl.TotalValue,
		WeightingMode:  tmpl.WeightingMode,
		NegativeMarker: tmpl.NegativeMarker,
		Status:         model.StatusNotStarted,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO assessments (template_id, title, patient_id, psychologist_id, total_value, weighting_mode, negative_marker, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		inst.TemplateID, inst.Title, inst.PatientID, inst.PsychologistID,
		inst.TotalValue, inst.WeightingMode, inst.NegativeMarker, inst.Status,
	).Scan(&inst.ID, &inst.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i := range questions {
		qt := &questions[i]
		q := model.Question{
			AssessmentID: inst.ID,
			Text:         qt.Text,
			Type:         qt.Type,
			OrderNum:     qt.OrderNum,
			Mandatory:    qt.Mandatory,
			Weight:       qt.Weight,
			Domain:       qt.Domain,
			MinValue:     qt.MinValue,
			MaxValue:     qt.MaxValue,
			StepValue:    qt.StepValue,
			Placeholder:  qt.Placeholder,
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO assessment_questions (assessment_id, text, type, order_num, mandatory, weight, domain, min_value, max_value, step_value, placeholder)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id`,
			q.AssessmentID, q.Text, q.Type, q.OrderNum, q.Mandatory, q.Weight,
			q.Domain, q.MinValue, q.MaxValue, q.StepValue, q.Placeholder,
		).Scan(&q.ID)
		if err != nil {
			return nil, err
		}

		for j := range qt.Options {
			ot := &qt.Options[j]
			_, err = tx.Exec(ctx,
				`INSERT INTO assessment_options (question_id, label, value, is_other, order_num)
				 VALUES ($1, $2, $3, $4, $5)`,
				q.ID, ot.Label, ot.Value, ot.IsOther, ot.OrderNum,
			)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// GetByID retrieves an assessment instance by its UUID.
func (r *AssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AssessmentInstance, error) {
	inst := &model.AssessmentInstance{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, template_id, title, patient_id, psychologist_id, total_value, weighting_mode,
		        COALESCE(negative_marker, ''), status, created_at, last_answer_at, completed_at,
		        evaluated, evaluated_at, final_score, commentary
		 FROM assessments WHERE id = $1`, id,
	).Scan(
		&inst.ID, &inst.TemplateID, &inst.Title, &inst.PatientID, &inst.PsychologistID,
		&inst.TotalValue, &inst.WeightingMode, &inst.NegativeMarker, &inst.Status,
		&inst.CreatedAt, &inst.LastAnswerAt, &inst.CompletedAt, &inst.Evaluated, &inst.EvaluatedAt,
		&inst.FinalScore, &inst.Commentary,
	)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// ListQuestions retrieves an instance's questions with their options, ordered
// by order_num.
func (r *AssessmentRepository) ListQuestions(ctx context.Context, assessmentID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assessment_id, text, type, order_num, mandatory, weight, domain,
		        min_value, max_value, step_value, placeholder
		 FROM assessment_questions
		 WHERE assessment_id = $1
		 ORDER BY order_num`, assessmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.AssessmentID, &q.Text, &q.Type, &q.OrderNum, &q.Mandatory,
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
		`SELECT o.id, o.question_id, o.label, o.value, o.is_other, o.order_num
		 FROM assessment_options o
		 JOIN assessment_questions q ON o.question_id = q.id
		 WHERE q.assessment_id = $1
		 ORDER BY o.question_id, o.order_num`, assessmentID,
	)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o model.Option
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Label, &o.Value, &o.IsOther, &o.OrderNum); err != nil {
			return nil, err
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, optRows.Err()
}

// ListAnswers retrieves every answer row of one respondent for an instance.
func (r *AssessmentRepository) ListAnswers(ctx context.Context, assessmentID uuid.UUID, patientID int) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assessment_id, question_id, patient_id, option_id, text_value, numeric_value, created_at
		 FROM assessment_answers
		 WHERE assessment_id = $1 AND patient_id = $2
		 ORDER BY created_at`, assessmentID, patientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.AssessmentID, &a.QuestionID, &a.PatientID, &a.OptionID, &a.TextValue, &a.NumericValue, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// SaveAnswers writes a batch of answer rows and the resulting status in ONE
// transaction, so no reader ever observes answers implying completion while
// the status still says IN_PROGRESS (or the reverse).
//
// replacedQuestionIDs lists the single-valued questions whose prior rows must
// be removed before insert (new answers replace, multi-choice accumulates).
func (r *AssessmentRepository) SaveAnswers(
	ctx context.Context,
	assessmentID uuid.UUID,
	patientID int,
	replacedQuestionIDs []uuid.UUID,
	answers []model.Answer,
	newStatus model.AssessmentStatus,
	answeredAt time.Time,
) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(replacedQuestionIDs) > 0 {
		_, err = tx.Exec(ctx,
			`DELETE FROM assessment_answers
			 WHERE assessment_id = $1 AND patient_id = $2 AND question_id = ANY($3)`,
			assessmentID, patientID, replacedQuestionIDs,
		)
		if err != nil {
			return err
		}
	}

	for i := range answers {
		a := &answers[i]
		_, err = tx.Exec(ctx,
			`INSERT INTO assessment_answers (assessment_id, question_id, patient_id, option_id, text_value, numeric_value, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			assessmentID, a.QuestionID, patientID, a.OptionID, a.TextValue, a.NumericValue, answeredAt,
		)
		if err != nil {
			return err
		}
	}

	// completed_at is a set-once marker; COALESCE keeps the first value so
	// a demote-and-recomplete cycle cannot re-arm the completion event.
	_, err = tx.Exec(ctx,
		`UPDATE assessments
		 SET status = $1, last_answer_at = $2,
		     completed_at = COALESCE(completed_at, CASE WHEN $1::text = $4 THEN $2::timestamptz END)
		 WHERE id = $3`,
		newStatus, answeredAt, assessmentID, string(model.StatusCompleted),
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RecordEvaluation persists the EVALUATED transition. The status guard in the
// WHERE clause makes the transition atomic against concurrent evaluators:
// pgx.ErrNoRows signals the instance was not in COMPLETED anymore.
func (r *AssessmentRepository) RecordEvaluation(ctx context.Context, inst *model.AssessmentInstance) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assessments
		 SET status = $1, evaluated = TRUE, evaluated_at = $2, final_score = $3, commentary = $4
		 WHERE id = $5 AND status = $6`,
		model.StatusEvaluated, inst.EvaluatedAt, inst.FinalScore, inst.Commentary,
		inst.ID, model.StatusCompleted,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByPatient retrieves a patient's assessments, newest first, paginated.
func (r *AssessmentRepository) ListByPatient(ctx context.Context, patientID, limit, offset int) ([]model.AssessmentInstance, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

// ListByPsychologist retrieves a clinician's assigned assessments, paginated.
func (r *AssessmentRepository) ListByPsychologist(ctx context.Context, psychologistID, limit, offset int) ([]model.AssessmentInstance, int, error) {
	return r.list(ctx, `psychologist_id`, psychologistID, limit, offset)
}

func (r *AssessmentRepository) list(ctx context.Context, column string, ownerID, limit, offset int) ([]model.AssessmentInstance, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assessments WHERE `+column+` = $1`, ownerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, template_id, title, patient_id, psychologist_id, total_value, weighting_mode,
		        COALESCE(negative_marker, ''), status, created_at, last_answer_at, completed_at,
		        evaluated, evaluated_at, final_score, commentary
		 FROM assessments
		 WHERE `+column+` = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, ownerID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var instances []model.AssessmentInstance
	for rows.Next() {
		var inst model.AssessmentInstance
		if err := rows.Scan(
			&inst.ID, &inst.TemplateID, &inst.Title, &inst.PatientID, &inst.PsychologistID,
			&inst.TotalValue, &inst.WeightingMode, &inst.NegativeMarker, &inst.Status,
			&inst.CreatedAt, &inst.LastAnswerAt, &inst.CompletedAt, &inst.Evaluated, &inst.EvaluatedAt,
			&inst.FinalScore, &inst.Commentary,
		); err != nil {
			return nil, 0, err
		}
		instances = append(instances, inst)
	}
	return instances, total, rows.Err()
}

// UpsertDomainScores bulk-writes the normative results of one instance using
// UNNEST, replacing any previous row per (assessment, domain).
func (r *AssessmentRepository) UpsertDomainScores(ctx context.Context, assessmentID uuid.UUID, scores []model.DomainScore) error {
	if len(scores) == 0 {
		return nil
	}

	n := len(scores)
	domains := make([]string, 0, n)
	raws := make([]int, 0, n)
	counts := make([]int, 0, n)
	bands := make([]string, 0, n)
	updatedAts := make([]time.Time, 0, n)

	for _, s := range scores {
		domains = append(domains, s.Domain)
		raws = append(raws, s.RawScore)
		counts = append(counts, s.QuestionCount)
		bands = append(bands, s.Band)
		updatedAts = append(updatedAts, s.UpdatedAt)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO assessment_domain_scores (assessment_id, domain, raw_score, question_count, band, updated_at)
		 SELECT $1, u.domain, u.raw_score, u.question_count, u.band, u.updated_at
		 FROM UNNEST($2::text[], $3::int[], $4::int[], $5::text[], $6::timestamptz[])
		      AS u (domain, raw_score, question_count, band, updated_at)
		 ON CONFLICT (assessment_id, domain) DO UPDATE
		 SET raw_score = EXCLUDED.raw_score,
		     question_count = EXCLUDED.question_count,
		     band = EXCLUDED.band,
		     updated_at = EXCLUDED.updated_at`,
		assessmentID, domains, raws, counts, bands, updatedAts,
	)
	return err
}

// ListDomainScores retrieves the persisted normative results of an instance.
func (r *AssessmentRepository) ListDomainScores(ctx context.Context, assessmentID uuid.UUID) ([]model.DomainScore, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT assessment_id, domain, raw_score, question_count, band, updated_at
		 FROM assessment_domain_scores
		 WHERE assessment_id = $1
		 ORDER BY domain`, assessmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []model.DomainScore
	for rows.Next() {
		var s model.DomainScore
		if err := rows.Scan(&s.AssessmentID, &s.Domain, &s.RawScore, &s.QuestionCount, &s.Band, &s.UpdatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
