package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// EventType identifies a domain event produced by a lifecycle transition.
type EventType string

const (
	EventAssessmentCompleted EventType = "assessment.completed"
	EventAssessmentEvaluated EventType = "assessment.evaluated"
)

// Event is emitted by the state machine instead of dispatching side effects
// inline. The caller forwards events to the notification collaborator after
// the transactional write commits, which keeps transitions pure and testable.
type Event struct {
	Type           EventType `json:"type"`
	AssessmentID   uuid.UUID `json:"assessment_id"`
	PatientID      int       `json:"patient_id"`
	PsychologistID int       `json:"psychologist_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NextStatus derives the lifecycle status from the current progress.
// Evaluated every time the answer set changes:
//
//	mandatoryComplete            → COMPLETED
//	some answers, not complete   → IN_PROGRESS
//	no answers                   → NOT_STARTED
func NextStatus(p Progress) model.AssessmentStatus {
	switch {
	case p.MandatoryComplete:
		return model.StatusCompleted
	case p.AnswerCount > 0:
		return model.StatusInProgress
	default:
		return model.StatusNotStarted
	}
}

// Transition applies the progress-driven status change to the instance and
// returns the domain events to dispatch. The completion event fires only on
// the first entry into COMPLETED ever: CompletedAt is the persisted marker,
// so an instance demoted to IN_PROGRESS and completed again stays silent.
// An EVALUATED instance never moves: no transition is defined to revert it,
// even when answers change afterwards.
func Transition(inst *model.AssessmentInstance, p Progress, now time.Time) []Event {
	if inst.Status == model.StatusEvaluated {
		return nil
	}

	next := NextStatus(p)
	if next == inst.Status {
		return nil
	}

	entering := next == model.StatusCompleted && inst.CompletedAt == nil
	inst.Status = next

	if !entering {
		return nil
	}
	inst.CompletedAt = &now
	return []Event{{
		Type:           EventAssessmentCompleted,
		AssessmentID:   inst.ID,
		PatientID:      inst.PatientID,
		PsychologistID: inst.PsychologistID,
		OccurredAt:     now,
	}}
}

// ApplyEvaluation performs the clinician-initiated EVALUATED transition.
// Allowed only from COMPLETED; irreversible once applied. The final score is
// required whenever the weighting mode demands one. The evaluation timestamp
// defaults to now when the caller supplies none.
func ApplyEvaluation(inst *model.AssessmentInstance, finalScore *float64, commentary string, at *time.Time, now time.Time) ([]Event, error) {
	if inst.Status != model.StatusCompleted {
		return nil, ErrInvalidStateTransition
	}
	if finalScore == nil && inst.WeightingMode.RequiresFinalScore() {
		return nil, ErrInvalidScore
	}

	evaluatedAt := now
	if at != nil {
		evaluatedAt = *at
	}

	inst.Status = model.StatusEvaluated
	inst.Evaluated = true
	inst.EvaluatedAt = &evaluatedAt
	inst.FinalScore = finalScore
	if commentary != "" {
		inst.Commentary = &commentary
	}

	return []Event{{
		Type:           EventAssessmentEvaluated,
		AssessmentID:   inst.ID,
		PatientID:      inst.PatientID,
		PsychologistID: inst.PsychologistID,
		OccurredAt:     evaluatedAt,
	}}, nil
}
