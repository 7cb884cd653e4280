package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PatientSessionKey returns the cache key for a patient's login session.
func (r *CacheKeyStruct) PatientSessionKey(patientID int) string {
	return fmt.Sprintf("login:patient:%d", patientID)
}

// TemplatePayloadKey returns the cache key for a published template's
// patient-facing payload.
func (r *CacheKeyStruct) TemplatePayloadKey(templateID string) string {
	return fmt.Sprintf("template:%s:payload", templateID)
}

// AssessmentProgressKey returns the cache key for an instance's last computed
// progress snapshot.
func (r *CacheKeyStruct) AssessmentProgressKey(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:progress", assessmentID)
}

// PsychologistAlertChannel returns the Redis PubSub channel carrying live
// assessment events for one psychologist.
func (r *CacheKeyStruct) PsychologistAlertChannel(psychologistID int) string {
	return fmt.Sprintf("psychologist:%d:alerts", psychologistID)
}

var CacheKey = NewCacheKeyStruct()
