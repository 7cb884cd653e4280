package model

import (
	"encoding/json"
	"time"
)

// AlertCategory classifies notification events persisted as alerts.
type AlertCategory string

const (
	AlertCategoryCompleted AlertCategory = "ASSESSMENT_COMPLETED"
	AlertCategoryEvaluated AlertCategory = "ASSESSMENT_EVALUATED"
)

// RecipientRole disambiguates recipient_id: completion alerts go to the
// assigning clinician, evaluation alerts to the respondent.
type RecipientRole string

const (
	RecipientPsychologist RecipientRole = "PSYCHOLOGIST"
	RecipientPatient      RecipientRole = "PATIENT"
)

// Alert is a persisted notification row shown in the recipient's inbox.
// Delivery is fire-and-forget: alerts are written by a background worker
// consuming the notification queue, never inline with a state transition.
type Alert struct {
	ID            int             `json:"id"`
	RecipientRole RecipientRole   `json:"recipient_role"`
	RecipientID   int             `json:"recipient_id"`
	Category      AlertCategory   `json:"category"`
	Message       string          `json:"message"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	ReadAt        *time.Time      `json:"read_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
