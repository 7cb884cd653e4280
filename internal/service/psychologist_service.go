package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
)

// PsychologistService handles clinician accounts and login.
type PsychologistService struct {
	psychRepo   *repository.PsychologistRepository
	authService *AuthService
}

// NewPsychologistService creates a new PsychologistService.
func NewPsychologistService(psychRepo *repository.PsychologistRepository, authService *AuthService) *PsychologistService {
	return &PsychologistService{psychRepo: psychRepo, authService: authService}
}

// Login authenticates a clinician by email.
func (s *PsychologistService) Login(ctx context.Context, req *model.PsychologistLoginRequest) (*model.PsychologistLoginResponse, error) {
	psych, err := s.psychRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get psychologist: %w", err)
	}

	if err := s.authService.CheckPassword(psych.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.authService.GeneratePsychologistToken(psych.ID)
	if err != nil {
		return nil, err
	}

	return &model.PsychologistLoginResponse{Token: token, Psychologist: *psych}, nil
}

// GetByID retrieves a clinician profile.
func (s *PsychologistService) GetByID(ctx context.Context, id int) (*model.Psychologist, error) {
	return s.psychRepo.GetByID(ctx, id)
}
