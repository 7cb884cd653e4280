package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinsa/psicotest-backend/internal/model"
)

func newInstance(status model.AssessmentStatus, mode model.WeightingMode) *model.AssessmentInstance {
	return &model.AssessmentInstance{
		ID:             uuid.New(),
		PatientID:      respondentID,
		PsychologistID: 7,
		WeightingMode:  mode,
		Status:         status,
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		want     model.AssessmentStatus
	}{
		{"no answers", Progress{Percent: 0, MandatoryComplete: false, AnswerCount: 0}, model.StatusNotStarted},
		{"partial", Progress{Percent: 50, MandatoryComplete: false, AnswerCount: 1}, model.StatusInProgress},
		{"complete", Progress{Percent: 100, MandatoryComplete: true, AnswerCount: 2}, model.StatusCompleted},
		{"complete with zero questions", Progress{Percent: 0, MandatoryComplete: true, AnswerCount: 0}, model.StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStatus(tt.progress); got != tt.want {
				t.Errorf("NextStatus(%+v) = %s, want %s", tt.progress, got, tt.want)
			}
		})
	}
}

func TestTransitionEmitsCompletedOnce(t *testing.T) {
	now := time.Now()
	inst := newInstance(model.StatusInProgress, model.WeightingModeNone)

	events := Transition(inst, Progress{Percent: 100, MandatoryComplete: true, AnswerCount: 2}, now)
	if inst.Status != model.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", inst.Status)
	}
	if len(events) != 1 || events[0].Type != EventAssessmentCompleted {
		t.Fatalf("events = %+v, want one completed event", events)
	}
	if events[0].AssessmentID != inst.ID || events[0].PatientID != inst.PatientID {
		t.Errorf("event payload mismatch: %+v", events[0])
	}

	// Recomputing the same progress again must not re-emit.
	events = Transition(inst, Progress{Percent: 100, MandatoryComplete: true, AnswerCount: 2}, now)
	if len(events) != 0 {
		t.Errorf("repeated transition emitted %d events, want 0", len(events))
	}
}

func TestTransitionCompletedEventNotRearmedByDemotion(t *testing.T) {
	now := time.Now()
	inst := newInstance(model.StatusInProgress, model.WeightingModeNone)

	events := Transition(inst, Progress{Percent: 100, MandatoryComplete: true, AnswerCount: 2}, now)
	if len(events) != 1 {
		t.Fatalf("first completion emitted %d events, want 1", len(events))
	}
	if inst.CompletedAt == nil || !inst.CompletedAt.Equal(now) {
		t.Fatalf("CompletedAt = %v, want %v", inst.CompletedAt, now)
	}

	// Retracting a mandatory answer demotes to IN_PROGRESS; completing
	// again afterwards must stay silent, the marker already exists.
	events = Transition(inst, Progress{Percent: 50, MandatoryComplete: false, AnswerCount: 1}, now)
	if inst.Status != model.StatusInProgress || len(events) != 0 {
		t.Fatalf("demotion: status = %s, events = %d", inst.Status, len(events))
	}

	events = Transition(inst, Progress{Percent: 100, MandatoryComplete: true, AnswerCount: 2}, now.Add(time.Minute))
	if inst.Status != model.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", inst.Status)
	}
	if len(events) != 0 {
		t.Errorf("re-entry into COMPLETED emitted %d events, want 0", len(events))
	}
	if !inst.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt moved to %v, want first completion %v", inst.CompletedAt, now)
	}
}

func TestTransitionRevertsToInProgress(t *testing.T) {
	inst := newInstance(model.StatusCompleted, model.WeightingModeNone)

	// A retracted mandatory answer demotes COMPLETED back to IN_PROGRESS
	// without emitting anything.
	events := Transition(inst, Progress{Percent: 50, MandatoryComplete: false, AnswerCount: 1}, time.Now())
	if inst.Status != model.StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", inst.Status)
	}
	if len(events) != 0 {
		t.Errorf("demotion emitted %d events, want 0", len(events))
	}
}

func TestTransitionNeverTouchesEvaluated(t *testing.T) {
	inst := newInstance(model.StatusEvaluated, model.WeightingModeNone)
	events := Transition(inst, Progress{Percent: 0, MandatoryComplete: false, AnswerCount: 0}, time.Now())
	if inst.Status != model.StatusEvaluated {
		t.Errorf("EVALUATED instance moved to %s", inst.Status)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestApplyEvaluationHappyPath(t *testing.T) {
	now := time.Now()
	inst := newInstance(model.StatusCompleted, model.WeightingModeEqual)

	events, err := ApplyEvaluation(inst, floatPtr(85), "ok", nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Status != model.StatusEvaluated || !inst.Evaluated {
		t.Errorf("instance not evaluated: %+v", inst)
	}
	if inst.EvaluatedAt == nil || !inst.EvaluatedAt.Equal(now) {
		t.Errorf("evaluatedAt = %v, want %v", inst.EvaluatedAt, now)
	}
	if inst.FinalScore == nil || *inst.FinalScore != 85 {
		t.Errorf("finalScore = %v, want 85", inst.FinalScore)
	}
	if len(events) != 1 || events[0].Type != EventAssessmentEvaluated {
		t.Errorf("events = %+v, want one evaluated event", events)
	}
}

func TestApplyEvaluationExplicitTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	inst := newInstance(model.StatusCompleted, model.WeightingModeNone)

	if _, err := ApplyEvaluation(inst, nil, "", &at, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.EvaluatedAt == nil || !inst.EvaluatedAt.Equal(at) {
		t.Errorf("evaluatedAt = %v, want %v", inst.EvaluatedAt, at)
	}
}

func TestApplyEvaluationRejectsWrongState(t *testing.T) {
	for _, status := range []model.AssessmentStatus{model.StatusNotStarted, model.StatusInProgress, model.StatusEvaluated} {
		inst := newInstance(status, model.WeightingModeNone)
		_, err := ApplyEvaluation(inst, floatPtr(50), "", nil, time.Now())
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("status %s: err = %v, want ErrInvalidStateTransition", status, err)
		}
		if inst.Status != status || inst.Evaluated {
			t.Errorf("status %s: instance mutated on rejected evaluation: %+v", status, inst)
		}
	}
}

func TestApplyEvaluationScoreRequiredByWeightingMode(t *testing.T) {
	for _, mode := range []model.WeightingMode{model.WeightingModeEqual, model.WeightingModeNormative} {
		inst := newInstance(model.StatusCompleted, mode)
		if _, err := ApplyEvaluation(inst, nil, "", nil, time.Now()); !errors.Is(err, ErrInvalidScore) {
			t.Errorf("mode %s: err = %v, want ErrInvalidScore", mode, err)
		}
	}

	// Mode none evaluates fine without a score.
	inst := newInstance(model.StatusCompleted, model.WeightingModeNone)
	if _, err := ApplyEvaluation(inst, nil, "sin puntaje", nil, time.Now()); err != nil {
		t.Errorf("mode none: unexpected error: %v", err)
	}
}
