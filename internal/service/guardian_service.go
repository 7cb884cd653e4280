package service

import (
	"context"

	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
	"github.com/clinsa/psicotest-backend/internal/response"
)

// GuardianService handles guardian records for adolescent patients.
type GuardianService struct {
	guardianRepo *repository.GuardianRepository
}

// NewGuardianService creates a new GuardianService.
func NewGuardianService(guardianRepo *repository.GuardianRepository) *GuardianService {
	return &GuardianService{guardianRepo: guardianRepo}
}

// GetByID retrieves a guardian record.
func (s *GuardianService) GetByID(ctx context.Context, id int) (*model.Guardian, error) {
	return s.guardianRepo.GetByID(ctx, id)
}

// List retrieves guardians with pagination and optional search.
func (s *GuardianService) List(ctx context.Context, page, perPage int, search string) ([]model.Guardian, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	guardians, total, err := s.guardianRepo.List(ctx, perPage, (page-1)*perPage, search)
	if err != nil {
		return nil, nil, err
	}
	if guardians == nil {
		guardians = []model.Guardian{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return guardians, pagination, nil
}

// Create registers a guardian.
func (s *GuardianService) Create(ctx context.Context, req *model.CreateGuardianRequest) (*model.Guardian, error) {
	g := &model.Guardian{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Relationship: req.Relationship,
	}
	if err := s.guardianRepo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Update modifies a guardian record.
func (s *GuardianService) Update(ctx context.Context, id int, req *model.UpdateGuardianRequest) (*model.Guardian, error) {
	g, err := s.guardianRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g.Name = req.Name
	g.Email = req.Email
	g.Phone = req.Phone
	g.Relationship = req.Relationship

	if err := s.guardianRepo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes a guardian record.
func (s *GuardianService) Delete(ctx context.Context, id int) error {
	return s.guardianRepo.Delete(ctx, id)
}
