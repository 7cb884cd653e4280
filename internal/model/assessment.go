package model

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentStatus enumerates the lifecycle states of an issued assessment.
// Forward-only: NOT_STARTED → IN_PROGRESS → COMPLETED → EVALUATED. The only
// defined backward move is COMPLETED → IN_PROGRESS when a mandatory question
// becomes unanswered again after an edit. EVALUATED is terminal.
type AssessmentStatus string

const (
	StatusNotStarted AssessmentStatus = "NOT_STARTED"
	StatusInProgress AssessmentStatus = "IN_PROGRESS"
	StatusCompleted  AssessmentStatus = "COMPLETED"
	StatusEvaluated  AssessmentStatus = "EVALUATED"
)

// AssessmentInstance is one issued copy of a questionnaire, bound to a patient.
type AssessmentInstance struct {
	ID             uuid.UUID        `json:"id"`
	TemplateID     uuid.UUID        `json:"template_id"`
	Title          string           `json:"title"`
	PatientID      int              `json:"patient_id"`
	PsychologistID int              `json:"psychologist_id"`
	TotalValue     float64          `json:"total_value"`
	WeightingMode  WeightingMode    `json:"weighting_mode"`
	NegativeMarker string           `json:"negative_marker,omitempty"`
	Status         AssessmentStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAnswerAt   *time.Time       `json:"last_answer_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	Evaluated      bool             `json:"evaluated"`
	EvaluatedAt    *time.Time       `json:"evaluated_at,omitempty"`
	FinalScore     *float64         `json:"final_score,omitempty"`
	Commentary     *string          `json:"commentary,omitempty"`
}

// Question is an instance-scoped copy of a QuestionTemplate. It belongs to
// exactly one assessment; template edits never reach it.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	AssessmentID uuid.UUID    `json:"assessment_id"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	OrderNum     int          `json:"order_num"`
	Mandatory    bool         `json:"mandatory"`
	Weight       *float64     `json:"weight,omitempty"`
	Domain       *string      `json:"domain,omitempty"`
	MinValue     *float64     `json:"min_value,omitempty"`
	MaxValue     *float64     `json:"max_value,omitempty"`
	StepValue    *float64     `json:"step_value,omitempty"`
	Placeholder  *string      `json:"placeholder,omitempty"`
	Options      []Option     `json:"options,omitempty"`
}

// OptionByID returns the question's option with the given id, or nil.
func (q *Question) OptionByID(id uuid.UUID) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// Option is an instance-scoped copy of an OptionTemplate.
type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Label      string    `json:"label"`
	Value      string    `json:"value"`
	IsOther    bool      `json:"is_other"`
	OrderNum   int       `json:"order_num"`
}

// Answer is one answer row for an instance question. Multi-choice questions
// may hold several rows per (patient, question); the other types are expected
// to hold at most one, but readers must tolerate zero, one, or many.
type Answer struct {
	ID           uuid.UUID  `json:"id"`
	AssessmentID uuid.UUID  `json:"assessment_id"`
	QuestionID   uuid.UUID  `json:"question_id"`
	PatientID    int        `json:"patient_id"`
	OptionID     *uuid.UUID `json:"option_id,omitempty"`
	TextValue    *string    `json:"text_value,omitempty"`
	NumericValue *float64   `json:"numeric_value,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AssignAssessmentRequest is the payload for issuing a template to a patient.
type AssignAssessmentRequest struct {
	TemplateID uuid.UUID `json:"template_id" binding:"required"`
	PatientID  int       `json:"patient_id" binding:"required,min=1"`
}

// AnswerSubmission is one candidate answer inside SubmitAnswersRequest.
// Exactly one of option_ids, text or number is meaningful per question type.
type AnswerSubmission struct {
	QuestionID uuid.UUID   `json:"question_id" binding:"required"`
	OptionIDs  []uuid.UUID `json:"option_ids" binding:"omitempty,max=50"`
	Text       *string     `json:"text" binding:"omitempty,max=8000"`
	Number     *float64    `json:"number" binding:"omitempty"`
}

// SubmitAnswersRequest is the payload for writing a batch of answers.
type SubmitAnswersRequest struct {
	Answers []AnswerSubmission `json:"answers" binding:"required,min=1,dive"`
}

// EvaluateRequest is the payload for the clinician evaluation transition.
type EvaluateRequest struct {
	FinalScore  *float64   `json:"final_score" binding:"omitempty,min=0"`
	Commentary  string     `json:"commentary" binding:"omitempty,max=4000"`
	EvaluatedAt *time.Time `json:"evaluated_at" binding:"omitempty"`
}
