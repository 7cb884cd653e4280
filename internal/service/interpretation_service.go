package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
)

// ErrOverlappingRanges rejects band tables where two ranges claim the same score.
var ErrOverlappingRanges = errors.New("interpretation ranges overlap")

// InterpretationService manages the per-instrument normative band tables.
type InterpretationService struct {
	interpRepo   *repository.InterpretationRepository
	templateRepo *repository.TemplateRepository
	log          zerolog.Logger
}

// NewInterpretationService creates a new InterpretationService.
func NewInterpretationService(interpRepo *repository.InterpretationRepository, templateRepo *repository.TemplateRepository, log zerolog.Logger) *InterpretationService {
	return &InterpretationService{
		interpRepo:   interpRepo,
		templateRepo: templateRepo,
		log:          log.With().Str("component", "interpretation_service").Logger(),
	}
}

// ListTables returns every configured band table of an instrument, keyed by domain.
func (s *InterpretationService) ListTables(ctx context.Context, templateID uuid.UUID) (map[string][]model.BandRange, error) {
	return s.interpRepo.GetTables(ctx, templateID)
}

// ReplaceDomain swaps one domain's band table. Only the template author may
// edit tables; ranges keep their submitted order and must not overlap.
func (s *InterpretationService) ReplaceDomain(ctx context.Context, authorID int, templateID uuid.UUID, req *model.UpsertBandRangesRequest) ([]model.BandRange, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tmpl.AuthorID != authorID {
		return nil, ErrNotTemplateAuthor
	}

	ranges := make([]model.BandRange, len(req.Ranges))
	for i, r := range req.Ranges {
		ranges[i] = model.BandRange{
			TemplateID: templateID,
			Domain:     req.Domain,
			Min:        r.Min,
			Max:        r.Max,
			Label:      r.Label,
			Position:   i,
		}
	}
	if overlaps(ranges) {
		return nil, ErrOverlappingRanges
	}

	if err := s.interpRepo.ReplaceDomain(ctx, templateID, req.Domain, ranges); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("template_id", templateID.String()).
		Str("domain", req.Domain).
		Int("ranges", len(ranges)).
		Msg("Interpretation table replaced")

	return ranges, nil
}

// overlaps reports whether any two ranges share a score. Bounds are inclusive,
// so [0,3] and [3,5] overlap on 3.
func overlaps(ranges []model.BandRange) bool {
	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			if ranges[i].Min <= ranges[j].Max && ranges[j].Min <= ranges[i].Max {
				return true
			}
		}
	}
	return false
}
