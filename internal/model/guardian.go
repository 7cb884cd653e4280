package model

import "time"

// Guardian represents the legal guardian of an adolescent patient.
type Guardian struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Relationship string    `json:"relationship"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateGuardianRequest is the payload for registering a guardian.
type CreateGuardianRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Email        string `json:"email" binding:"omitempty,email,max=255"`
	Phone        string `json:"phone" binding:"omitempty,min=6,max=20"`
	Relationship string `json:"relationship" binding:"required,min=2,max=50"`
}

// UpdateGuardianRequest is the payload for updating a guardian.
type UpdateGuardianRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Email        string `json:"email" binding:"omitempty,email,max=255"`
	Phone        string `json:"phone" binding:"omitempty,min=6,max=20"`
	Relationship string `json:"relationship" binding:"required,min=2,max=50"`
}
