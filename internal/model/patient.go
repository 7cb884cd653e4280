package model

import "time"

// Patient represents a patient or adolescent respondent.
type Patient struct {
	ID             int        `json:"id"`
	DocumentNumber string     `json:"document_number"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	PasswordHash   string     `json:"-"`
	PsychologistID int        `json:"psychologist_id"`
	GuardianID     *int       `json:"guardian_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PatientLoginRequest is the payload for patient authentication.
type PatientLoginRequest struct {
	DocumentNumber string `json:"document_number" binding:"required,min=4,max=20"`
	Password       string `json:"password" binding:"required,min=4,max=128"`
}

// PatientLoginResponse is returned after successful patient login.
type PatientLoginResponse struct {
	Token   string  `json:"token"`
	Patient Patient `json:"patient"`
}

// CreatePatientRequest is the payload for registering a new patient.
type CreatePatientRequest struct {
	DocumentNumber string     `json:"document_number" binding:"required,min=4,max=20"`
	Name           string     `json:"name" binding:"required,min=2,max=100"`
	Email          string     `json:"email" binding:"omitempty,email,max=255"`
	BirthDate      *time.Time `json:"birth_date" binding:"omitempty"`
	Password       string     `json:"password" binding:"required,min=6,max=128"`
	GuardianID     *int       `json:"guardian_id" binding:"omitempty,min=1"`
}

// UpdatePatientRequest is the payload for updating an existing patient.
type UpdatePatientRequest struct {
	DocumentNumber string     `json:"document_number" binding:"required,min=4,max=20"`
	Name           string     `json:"name" binding:"required,min=2,max=100"`
	Email          string     `json:"email" binding:"omitempty,email,max=255"`
	BirthDate      *time.Time `json:"birth_date" binding:"omitempty"`
	Password       string     `json:"password" binding:"omitempty,min=6,max=128"`
	GuardianID     *int       `json:"guardian_id" binding:"omitempty,min=1"`
}
