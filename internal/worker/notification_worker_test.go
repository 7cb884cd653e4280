package worker

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinsa/psicotest-backend/internal/engine"
	"github.com/clinsa/psicotest-backend/internal/model"
)

func TestBuildAlertRoutesCompletionToClinician(t *testing.T) {
	ev := &engine.Event{
		Type:           engine.EventAssessmentCompleted,
		AssessmentID:   uuid.New(),
		PatientID:      42,
		PsychologistID: 7,
		OccurredAt:     time.Now(),
	}

	alert := buildAlert(ev)
	if alert.RecipientRole != model.RecipientPsychologist {
		t.Fatalf("recipient role = %s, want PSYCHOLOGIST", alert.RecipientRole)
	}
	if alert.RecipientID != ev.PsychologistID {
		t.Errorf("recipient id = %d, want %d", alert.RecipientID, ev.PsychologistID)
	}
	if alert.Category != model.AlertCategoryCompleted {
		t.Errorf("category = %s, want %s", alert.Category, model.AlertCategoryCompleted)
	}
	if !strings.Contains(alert.Message, ev.AssessmentID.String()) {
		t.Errorf("message %q does not name the assessment", alert.Message)
	}
}

func TestBuildAlertRoutesEvaluationToRespondent(t *testing.T) {
	ev := &engine.Event{
		Type:           engine.EventAssessmentEvaluated,
		AssessmentID:   uuid.New(),
		PatientID:      42,
		PsychologistID: 7,
		OccurredAt:     time.Now(),
	}

	alert := buildAlert(ev)
	if alert.RecipientRole != model.RecipientPatient {
		t.Fatalf("recipient role = %s, want PATIENT", alert.RecipientRole)
	}
	if alert.RecipientID != ev.PatientID {
		t.Errorf("recipient id = %d, want patient %d", alert.RecipientID, ev.PatientID)
	}
	if alert.Category != model.AlertCategoryEvaluated {
		t.Errorf("category = %s, want %s", alert.Category, model.AlertCategoryEvaluated)
	}

	// The payload round-trips the full event for the inbox detail view.
	var decoded engine.Event
	if err := json.Unmarshal(alert.Payload, &decoded); err != nil {
		t.Fatalf("payload unmarshal: %v", err)
	}
	if decoded.AssessmentID != ev.AssessmentID || decoded.Type != ev.Type {
		t.Errorf("payload event = %+v, want %+v", decoded, ev)
	}
}
