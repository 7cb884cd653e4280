package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
	"github.com/clinsa/psicotest-backend/internal/response"
)

// Template lifecycle errors.
var (
	ErrNotTemplateAuthor      = errors.New("not the author of this template")
	ErrNoQuestions            = errors.New("template has no questions, cannot publish")
	ErrTemplateNotDraft       = errors.New("template status is not DRAFT")
	ErrTemplateNotPublished   = errors.New("template status is not PUBLISHED")
	ErrMissingInterpretations = errors.New("normative weighting requires interpretation ranges, cannot publish")
)

// TemplateService handles template business logic and the Redis preview cache.
type TemplateService struct {
	templateRepo *repository.TemplateRepository
	interpRepo   *repository.InterpretationRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(templateRepo *repository.TemplateRepository, interpRepo *repository.InterpretationRepository, rdb *redis.Client, log zerolog.Logger) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		interpRepo:   interpRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "template_service").Logger(),
	}
}

// GetByID retrieves a template by its UUID.
func (s *TemplateService) GetByID(ctx context.Context, id uuid.UUID) (*model.AssessmentTemplate, error) {
	return s.templateRepo.GetByID(ctx, id)
}

// ListByAuthor retrieves a clinician's templates, paginated.
func (s *TemplateService) ListByAuthor(ctx context.Context, authorID, page, perPage int) ([]model.AssessmentTemplate, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	templates, total, err := s.templateRepo.ListByAuthorPaginated(ctx, authorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if templates == nil {
		templates = []model.AssessmentTemplate{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return templates, pagination, nil
}

// Create inserts a new template as DRAFT.
func (s *TemplateService) Create(ctx context.Context, tmpl *model.AssessmentTemplate) error {
	tmpl.Status = model.TemplateStatusDraft
	return s.templateRepo.Create(ctx, tmpl)
}

// Update modifies an existing draft template.
func (s *TemplateService) Update(ctx context.Context, authorID int, tmpl *model.AssessmentTemplate) error {
	existing, err := s.templateRepo.GetByID(ctx, tmpl.ID)
	if err != nil {
		return err
	}
	if existing.AuthorID != authorID {
		return ErrNotTemplateAuthor
	}
	if existing.Status != model.TemplateStatusDraft {
		return ErrTemplateNotDraft
	}
	return s.templateRepo.Update(ctx, tmpl)
}

// Delete removes a draft template.
func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID, authorID int) error {
	existing, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != authorID {
		return ErrNotTemplateAuthor
	}
	if existing.Status != model.TemplateStatusDraft {
		return ErrTemplateNotDraft
	}
	return s.templateRepo.Delete(ctx, id)
}

// Publish moves a draft with at least one question to PUBLISHED and caches
// its preview payload. Only published templates can be assigned to patients.
func (s *TemplateService) Publish(ctx context.Context, templateID uuid.UUID, authorID int) error {
	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("get template: %w", err)
	}
	if tmpl.AuthorID != authorID {
		return ErrNotTemplateAuthor
	}
	if tmpl.Status != model.TemplateStatusDraft {
		return ErrTemplateNotDraft
	}

	// A normative instrument without interpretation ranges would degrade
	// every report to sentinel bands; refuse it here, where the author can
	// still fix the configuration.
	if tmpl.WeightingMode == model.WeightingModeNormative {
		tables, err := s.interpRepo.GetTables(ctx, templateID)
		if err != nil {
			return fmt.Errorf("get interpretation tables: %w", err)
		}
		if len(tables) == 0 {
			return ErrMissingInterpretations
		}
	}

	if err := s.WarmTemplateCache(ctx, tmpl); err != nil {
		return err
	}

	if err := s.templateRepo.UpdateStatus(ctx, templateID, model.TemplateStatusPublished); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("template_id", templateID.String()).Msg("Template published")
	return nil
}

// Archive retires a published template. Already issued assessments keep their
// deep-copied question set and continue unaffected.
func (s *TemplateService) Archive(ctx context.Context, templateID uuid.UUID, authorID int) error {
	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("get template: %w", err)
	}
	if tmpl.AuthorID != authorID {
		return ErrNotTemplateAuthor
	}
	if tmpl.Status != model.TemplateStatusPublished {
		return ErrTemplateNotPublished
	}

	if err := s.templateRepo.UpdateStatus(ctx, templateID, model.TemplateStatusArchived); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	s.rdb.Del(ctx, config.CacheKey.TemplatePayloadKey(templateID.String()))

	s.log.Info().Str("template_id", templateID.String()).Msg("Template archived")
	return nil
}

// ListQuestions retrieves a template's questions with their options.
func (s *TemplateService) ListQuestions(ctx context.Context, templateID uuid.UUID) ([]model.QuestionTemplate, error) {
	return s.templateRepo.ListQuestions(ctx, templateID)
}

// AddQuestion appends a question to a draft template.
func (s *TemplateService) AddQuestion(ctx context.Context, authorID int, q *model.QuestionTemplate) error {
	if err := s.requireDraftAuthor(ctx, q.TemplateID, authorID); err != nil {
		return err
	}
	if !q.Type.IsValid() {
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return s.templateRepo.AddQuestion(ctx, q)
}

// ReplaceQuestions swaps a draft template's whole question set atomically.
func (s *TemplateService) ReplaceQuestions(ctx context.Context, authorID int, templateID uuid.UUID, questions []model.QuestionTemplate) error {
	if err := s.requireDraftAuthor(ctx, templateID, authorID); err != nil {
		return err
	}
	for i := range questions {
		if !questions[i].Type.IsValid() {
			return fmt.Errorf("unknown question type %q", questions[i].Type)
		}
	}
	return s.templateRepo.ReplaceQuestions(ctx, templateID, questions)
}

func (s *TemplateService) requireDraftAuthor(ctx context.Context, templateID uuid.UUID, authorID int) error {
	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return err
	}
	if tmpl.AuthorID != authorID {
		return ErrNotTemplateAuthor
	}
	if tmpl.Status != model.TemplateStatusDraft {
		return ErrTemplateNotDraft
	}
	return nil
}

// WarmTemplateCache loads the template's preview payload into Redis. The
// preview strips weights and domains, which stay server-side.
func (s *TemplateService) WarmTemplateCache(ctx context.Context, tmpl *model.AssessmentTemplate) error {
	questions, err := s.templateRepo.ListQuestions(ctx, tmpl.ID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	previews := make([]model.QuestionPreview, len(questions))
	for i, q := range questions {
		previews[i] = model.QuestionPreview{
			ID:          q.ID,
			Text:        q.Text,
			Type:        q.Type,
			OrderNum:    q.OrderNum,
			Mandatory:   q.Mandatory,
			MinValue:    q.MinValue,
			MaxValue:    q.MaxValue,
			StepValue:   q.StepValue,
			Placeholder: q.Placeholder,
			Options:     q.Options,
		}
	}

	payload := model.TemplatePayload{
		TemplateID: tmpl.ID,
		Title:      tmpl.Title,
		Questions:  previews,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	key := config.CacheKey.TemplatePayloadKey(tmpl.ID.String())
	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("template_id", tmpl.ID.String()).
		Int("questions", len(questions)).
		Msg("Cache warmed")
	return nil
}

// GetPayload retrieves the cached preview of a published template.
func (s *TemplateService) GetPayload(ctx context.Context, templateID uuid.UUID) (*model.TemplatePayload, error) {
	key := config.CacheKey.TemplatePayloadKey(templateID.String())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTemplateNotPublished
		}
		return nil, fmt.Errorf("get payload: %w", err)
	}

	var payload model.TemplatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &payload, nil
}
