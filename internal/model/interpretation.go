package model

import (
	"time"

	"github.com/google/uuid"
)

// BandRange maps an inclusive raw-score range to a categorical band label.
// Ranges are ordered; the first range containing the raw score wins.
type BandRange struct {
	ID         int       `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	Domain     string    `json:"domain"`
	Min        int       `json:"min"`
	Max        int       `json:"max"`
	Label      string    `json:"label"`
	Position   int       `json:"position"`
}

// DomainScore is the persisted normative result for one domain of an instance.
type DomainScore struct {
	AssessmentID  uuid.UUID `json:"assessment_id"`
	Domain        string    `json:"domain"`
	RawScore      int       `json:"raw_score"`
	QuestionCount int       `json:"question_count"`
	Band          string    `json:"band"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpsertBandRangeRequest is one range row inside UpsertBandRangesRequest.
type UpsertBandRangeRequest struct {
	Min   int    `json:"min" binding:"min=0"`
	Max   int    `json:"max" binding:"gtefield=Min"`
	Label string `json:"label" binding:"required,min=1,max=100"`
}

// UpsertBandRangesRequest replaces the interpretation table of one domain.
type UpsertBandRangesRequest struct {
	Domain string                   `json:"domain" binding:"required,min=1,max=100"`
	Ranges []UpsertBandRangeRequest `json:"ranges" binding:"required,min=1,dive"`
}
