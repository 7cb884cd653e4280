package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
	"github.com/clinsa/psicotest-backend/internal/response"
)

// PatientService handles patient accounts and the patient login flow.
type PatientService struct {
	patientRepo *repository.PatientRepository
	authService *AuthService
	log         zerolog.Logger
}

// NewPatientService creates a new PatientService.
func NewPatientService(patientRepo *repository.PatientRepository, authService *AuthService, log zerolog.Logger) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		authService: authService,
		log:         log.With().Str("component", "patient_service").Logger(),
	}
}

// Login authenticates a patient by document number and opens a single-device
// session.
func (s *PatientService) Login(ctx context.Context, req *model.PatientLoginRequest) (*model.PatientLoginResponse, error) {
	patient, err := s.patientRepo.GetByDocument(ctx, req.DocumentNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}

	if err := s.authService.CheckPassword(patient.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.authService.GeneratePatientToken(ctx, patient.ID, patient.PsychologistID)
	if err != nil {
		return nil, err
	}

	return &model.PatientLoginResponse{Token: token, Patient: *patient}, nil
}

// GetByID retrieves a patient, enforcing that the requester is the assigned
// clinician.
func (s *PatientService) GetByID(ctx context.Context, psychologistID, patientID int) (*model.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.PsychologistID != psychologistID {
		return nil, ErrNotAssignedPatient
	}
	return patient, nil
}

// List returns the clinician's patients, searchable by name or document.
func (s *PatientService) List(ctx context.Context, psychologistID, page, perPage int, search string) ([]model.Patient, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	patients, total, err := s.patientRepo.ListByPsychologist(ctx, psychologistID, perPage, (page-1)*perPage, search)
	if err != nil {
		return nil, nil, err
	}
	if patients == nil {
		patients = []model.Patient{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return patients, pagination, nil
}

// Create registers a new patient under the clinician.
func (s *PatientService) Create(ctx context.Context, psychologistID int, req *model.CreatePatientRequest) (*model.Patient, error) {
	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	patient := &model.Patient{
		DocumentNumber: req.DocumentNumber,
		Name:           req.Name,
		Email:          req.Email,
		BirthDate:      req.BirthDate,
		PasswordHash:   hash,
		PsychologistID: psychologistID,
		GuardianID:     req.GuardianID,
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}

	s.log.Info().Int("patient_id", patient.ID).Int("psychologist_id", psychologistID).Msg("Patient created")
	return patient, nil
}

// Update modifies one of the clinician's patients. An empty password keeps
// the stored hash.
func (s *PatientService) Update(ctx context.Context, psychologistID, patientID int, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.GetByID(ctx, psychologistID, patientID)
	if err != nil {
		return nil, err
	}

	patient.DocumentNumber = req.DocumentNumber
	patient.Name = req.Name
	patient.Email = req.Email
	patient.BirthDate = req.BirthDate
	patient.GuardianID = req.GuardianID
	patient.PasswordHash = ""
	if req.Password != "" {
		hash, err := s.authService.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patient.PasswordHash = hash
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// Delete removes one of the clinician's patients.
func (s *PatientService) Delete(ctx context.Context, psychologistID, patientID int) error {
	if _, err := s.GetByID(ctx, psychologistID, patientID); err != nil {
		return err
	}
	return s.patientRepo.Delete(ctx, patientID)
}

// ResetSession clears a patient's active login so they can sign in on a new
// device.
func (s *PatientService) ResetSession(ctx context.Context, psychologistID, patientID int) error {
	if _, err := s.GetByID(ctx, psychologistID, patientID); err != nil {
		return err
	}
	return s.authService.ResetPatientSession(ctx, patientID)
}
