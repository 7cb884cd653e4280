package model

import (
	"time"

	"github.com/google/uuid"
)

// TemplateStatus enumerates the possible states of an assessment template.
type TemplateStatus string

const (
	TemplateStatusDraft     TemplateStatus = "DRAFT"
	TemplateStatusPublished TemplateStatus = "PUBLISHED"
	TemplateStatusArchived  TemplateStatus = "ARCHIVED"
)

// WeightingMode is the policy governing how question scores combine.
type WeightingMode string

const (
	WeightingModeNone      WeightingMode = "none"
	WeightingModeEqual     WeightingMode = "equal"
	WeightingModeNormative WeightingMode = "normative"
)

// RequiresFinalScore reports whether clinician evaluation must carry a score.
func (m WeightingMode) RequiresFinalScore() bool {
	return m != WeightingModeNone
}

// AssessmentTemplate is the immutable, reusable definition of a questionnaire.
// Issued instances deep-copy its question set, so later edits never change
// assessments already in the field.
type AssessmentTemplate struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	AuthorID       int            `json:"author_id"`
	TotalValue     float64        `json:"total_value"`
	WeightingMode  WeightingMode  `json:"weighting_mode"`
	NegativeMarker string         `json:"negative_marker,omitempty"`
	Status         TemplateStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// QuestionTemplate is one question definition inside a template.
type QuestionTemplate struct {
	ID          uuid.UUID        `json:"id"`
	TemplateID  uuid.UUID        `json:"template_id"`
	Text        string           `json:"text"`
	Type        QuestionType     `json:"type"`
	OrderNum    int              `json:"order_num"`
	Mandatory   bool             `json:"mandatory"`
	Weight      *float64         `json:"weight,omitempty"`
	Domain      *string          `json:"domain,omitempty"`
	MinValue    *float64         `json:"min_value,omitempty"`
	MaxValue    *float64         `json:"max_value,omitempty"`
	StepValue   *float64         `json:"step_value,omitempty"`
	Placeholder *string          `json:"placeholder,omitempty"`
	Options     []OptionTemplate `json:"options,omitempty"`
}

// OptionTemplate is one selectable option of a choice question template.
type OptionTemplate struct {
	ID                 uuid.UUID `json:"id"`
	QuestionTemplateID uuid.UUID `json:"question_template_id"`
	Label              string    `json:"label"`
	Value              string    `json:"value"`
	IsOther            bool      `json:"is_other"`
	OrderNum           int       `json:"order_num"`
}

// QuestionPreview is the respondent-facing projection of a QuestionTemplate:
// weights and domains stay server-side.
type QuestionPreview struct {
	ID          uuid.UUID        `json:"id"`
	Text        string           `json:"text"`
	Type        QuestionType     `json:"type"`
	OrderNum    int              `json:"order_num"`
	Mandatory   bool             `json:"mandatory"`
	MinValue    *float64         `json:"min_value,omitempty"`
	MaxValue    *float64         `json:"max_value,omitempty"`
	StepValue   *float64         `json:"step_value,omitempty"`
	Placeholder *string          `json:"placeholder,omitempty"`
	Options     []OptionTemplate `json:"options,omitempty"`
}

// TemplatePayload is the cached preview of a published template.
type TemplatePayload struct {
	TemplateID uuid.UUID         `json:"template_id"`
	Title      string            `json:"title"`
	Questions  []QuestionPreview `json:"questions"`
}

// CreateTemplateRequest is the payload for creating a new draft template.
type CreateTemplateRequest struct {
	Title          string  `json:"title" binding:"required,min=3,max=255"`
	Description    string  `json:"description" binding:"omitempty,max=2000"`
	TotalValue     float64 `json:"total_value" binding:"omitempty,min=0"`
	WeightingMode  string  `json:"weighting_mode" binding:"required,oneof=none equal normative"`
	NegativeMarker string  `json:"negative_marker" binding:"omitempty,max=50"`
}

// UpdateTemplateRequest is the payload for updating an existing template.
type UpdateTemplateRequest struct {
	Title          string   `json:"title" binding:"omitempty,min=3,max=255"`
	Description    *string  `json:"description" binding:"omitempty,max=2000"`
	TotalValue     *float64 `json:"total_value" binding:"omitempty,min=0"`
	WeightingMode  string   `json:"weighting_mode" binding:"omitempty,oneof=none equal normative"`
	NegativeMarker *string  `json:"negative_marker" binding:"omitempty,max=50"`
}

// AddQuestionTemplateRequest is the payload for adding a question to a template.
type AddQuestionTemplateRequest struct {
	Text        string                     `json:"text" binding:"required,min=1,max=2000"`
	Type        string                     `json:"type" binding:"required,oneof=single_choice multi_choice free_text numeric_range"`
	OrderNum    int                        `json:"order_num" binding:"min=0"`
	Mandatory   bool                       `json:"mandatory"`
	Weight      *float64                   `json:"weight" binding:"omitempty,min=0"`
	Domain      *string                    `json:"domain" binding:"omitempty,max=100"`
	MinValue    *float64                   `json:"min_value" binding:"omitempty"`
	MaxValue    *float64                   `json:"max_value" binding:"omitempty"`
	StepValue   *float64                   `json:"step_value" binding:"omitempty,gt=0"`
	Placeholder *string                    `json:"placeholder" binding:"omitempty,max=255"`
	Options     []AddOptionTemplateRequest `json:"options" binding:"omitempty,dive"`
}

// AddOptionTemplateRequest is one option inside AddQuestionTemplateRequest.
type AddOptionTemplateRequest struct {
	Label    string `json:"label" binding:"required,min=1,max=500"`
	Value    string `json:"value" binding:"required,min=1,max=100"`
	IsOther  bool   `json:"is_other"`
	OrderNum int    `json:"order_num" binding:"min=0"`
}

// ReplaceQuestionTemplatesRequest is the payload for bulk replacing questions.
type ReplaceQuestionTemplatesRequest struct {
	Questions []AddQuestionTemplateRequest `json:"questions" binding:"dive"`
}
