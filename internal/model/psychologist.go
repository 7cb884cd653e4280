package model

import "time"

// Psychologist represents a clinician user.
type Psychologist struct {
	ID            int       `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	LicenseNumber string    `json:"license_number"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PsychologistLoginRequest is the payload for clinician authentication.
type PsychologistLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// PsychologistLoginResponse is returned after successful clinician login.
type PsychologistLoginResponse struct {
	Token        string       `json:"token"`
	Psychologist Psychologist `json:"psychologist"`
}
