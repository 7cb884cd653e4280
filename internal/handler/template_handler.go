package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinsa/psicotest-backend/internal/middleware"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/response"
	"github.com/clinsa/psicotest-backend/internal/service"
	"github.com/clinsa/psicotest-backend/internal/validator"
)

// TemplateHandler handles template management endpoints.
type TemplateHandler struct {
	templateService *service.TemplateService
	interpService   *service.InterpretationService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService *service.TemplateService, interpService *service.InterpretationService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		interpService:   interpService,
	}
}

// List godoc
// GET /api/v1/psych/templates
// Lists the clinician's templates with pagination.
func (h *TemplateHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	templates, pagination, err := h.templateService.ListByAuthor(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"templates": templates}, pagination)
}

// Create godoc
// POST /api/v1/psych/templates
// Creates a new draft template.
func (h *TemplateHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateTemplateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	tmpl := &model.AssessmentTemplate{
		Title:          req.Title,
		Description:    req.Description,
		AuthorID:       claims.UserID,
		TotalValue:     req.TotalValue,
		WeightingMode:  model.WeightingMode(req.WeightingMode),
		NegativeMarker: req.NegativeMarker,
	}

	if err := h.templateService.Create(c.Request.Context(), tmpl); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"template": tmpl})
}

// Get godoc
// GET /api/v1/psych/templates/:template_id
// Returns one template with its question set.
func (h *TemplateHandler) Get(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	tmpl, err := h.templateService.GetByID(c.Request.Context(), templateID)
	if err != nil {
		failTemplateError(c, err)
		return
	}

	questions, err := h.templateService.ListQuestions(c.Request.Context(), templateID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []model.QuestionTemplate{}
	}

	response.Success(c, http.StatusOK, gin.H{"template": tmpl, "questions": questions})
}

// Update godoc
// PUT /api/v1/psych/templates/:template_id
// Updates a draft template's metadata.
func (h *TemplateHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateTemplateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	tmpl, err := h.templateService.GetByID(c.Request.Context(), templateID)
	if err != nil {
		failTemplateError(c, err)
		return
	}

	if req.Title != "" {
		tmpl.Title = req.Title
	}
	if req.Description != nil {
		tmpl.Description = *req.Description
	}
	if req.TotalValue != nil {
		tmpl.TotalValue = *req.TotalValue
	}
	if req.WeightingMode != "" {
		tmpl.WeightingMode = model.WeightingMode(req.WeightingMode)
	}
	if req.NegativeMarker != nil {
		tmpl.NegativeMarker = *req.NegativeMarker
	}

	if err := h.templateService.Update(c.Request.Context(), claims.UserID, tmpl); err != nil {
		failTemplateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"template": tmpl})
}

// Delete godoc
// DELETE /api/v1/psych/templates/:template_id
// Removes a draft template.
func (h *TemplateHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), templateID, claims.UserID); err != nil {
		failTemplateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "template deleted"})
}

// Publish godoc
// POST /api/v1/psych/templates/:template_id/publish
// Publishes a draft and warms its preview cache.
func (h *TemplateHandler) Publish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.templateService.Publish(c.Request.Context(), templateID, claims.UserID); err != nil {
		failTemplateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "template published"})
}

// Archive godoc
// POST /api/v1/psych/templates/:template_id/archive
// Retires a published template; issued assessments continue unaffected.
func (h *TemplateHandler) Archive(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.templateService.Archive(c.Request.Context(), templateID, claims.UserID); err != nil {
		failTemplateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "template archived"})
}

// Preview godoc
// GET /api/v1/psych/templates/:template_id/preview
// Returns the cached respondent-facing payload of a published template.
func (h *TemplateHandler) Preview(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.templateService.GetPayload(c.Request.Context(), templateID)
	if err != nil {
		failTemplateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// AddQuestion godoc
// POST /api/v1/psych/templates/:template_id/questions
// Appends a question to a draft template.
func (h *TemplateHandler) AddQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionTemplateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q := questionFromRequest(templateID, &req)
	if err := h.templateService.AddQuestion(c.Request.Context(), claims.UserID, q); err != nil {
		failTemplateError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// ReplaceQuestions godoc
// PUT /api/v1/psych/templates/:template_id/questions
// Replaces a draft template's whole question set atomically.
func (h *TemplateHandler) ReplaceQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReplaceQuestionTemplatesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions := make([]model.QuestionTemplate, len(req.Questions))
	for i := range req.Questions {
		questions[i] = *questionFromRequest(templateID, &req.Questions[i])
	}

	if err := h.templateService.ReplaceQuestions(c.Request.Context(), claims.UserID, templateID, questions); err != nil {
		failTemplateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ListInterpretations godoc
// GET /api/v1/psych/templates/:template_id/interpretations
// Returns every configured band table of the template, keyed by domain.
func (h *TemplateHandler) ListInterpretations(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	tables, err := h.interpService.ListTables(c.Request.Context(), templateID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"interpretations": tables})
}

// ReplaceInterpretations godoc
// PUT /api/v1/psych/templates/:template_id/interpretations
// Replaces one domain's band table.
func (h *TemplateHandler) ReplaceInterpretations(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpsertBandRangesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ranges, err := h.interpService.ReplaceDomain(c.Request.Context(), claims.UserID, templateID, &req)
	if err != nil {
		if errors.Is(err, service.ErrOverlappingRanges) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation)
			return
		}
		failTemplateError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"interpretations": ranges})
}

func questionFromRequest(templateID uuid.UUID, req *model.AddQuestionTemplateRequest) *model.QuestionTemplate {
	q := &model.QuestionTemplate{
		TemplateID:  templateID,
		Text:        req.Text,
		Type:        model.QuestionType(req.Type),
		OrderNum:    req.OrderNum,
		Mandatory:   req.Mandatory,
		Weight:      req.Weight,
		Domain:      req.Domain,
		MinValue:    req.MinValue,
		MaxValue:    req.MaxValue,
		StepValue:   req.StepValue,
		Placeholder: req.Placeholder,
	}
	for _, opt := range req.Options {
		q.Options = append(q.Options, model.OptionTemplate{
			Label:    opt.Label,
			Value:    opt.Value,
			IsOther:  opt.IsOther,
			OrderNum: opt.OrderNum,
		})
	}
	return q
}

// failTemplateError maps template lifecycle errors onto the API error taxonomy.
func failTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotTemplateAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotTemplateAuthor)
	case errors.Is(err, service.ErrTemplateNotDraft):
		response.Fail(c, http.StatusBadRequest, response.ErrTemplateNotDraft)
	case errors.Is(err, service.ErrTemplateNotPublished):
		response.Fail(c, http.StatusBadRequest, response.ErrTemplateNotPublished)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, service.ErrMissingInterpretations):
		response.Fail(c, http.StatusBadRequest, response.ErrConfigurationMissing)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
