package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinsa/psicotest-backend/internal/engine"
	"github.com/clinsa/psicotest-backend/internal/middleware"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/response"
	"github.com/clinsa/psicotest-backend/internal/service"
	"github.com/clinsa/psicotest-backend/internal/validator"
)

// PortalHandler serves the patient-facing assessment endpoints.
type PortalHandler struct {
	assessmentService *service.AssessmentService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(assessmentService *service.AssessmentService) *PortalHandler {
	return &PortalHandler{assessmentService: assessmentService}
}

// ListAssessments godoc
// GET /api/v1/patient/assessments
// Lists the authenticated patient's assessments, newest first.
func (h *PortalHandler) ListAssessments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	assessments, total, err := h.assessmentService.ListForPatient(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if assessments == nil {
		assessments = []model.AssessmentInstance{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"assessments": assessments}, pagination)
}

// GetPaper godoc
// GET /api/v1/patient/assessments/:assessment_id
// Returns the full answering view: questions, current answers, progress.
func (h *PortalHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assessmentID, err := uuid.Parse(c.Param("assessment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.assessmentService.GetPaperForPatient(c.Request.Context(), assessmentID, claims.UserID)
	if err != nil {
		failAssessmentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// SubmitAnswers godoc
// POST /api/v1/patient/assessments/:assessment_id/answers
// Writes a batch of answers and returns the resulting status and progress.
func (h *PortalHandler) SubmitAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assessmentID, err := uuid.Parse(c.Param("assessment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assessmentService.SubmitAnswers(c.Request.Context(), assessmentID, claims.UserID, &req)
	if err != nil {
		failAssessmentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetProgress godoc
// GET /api/v1/patient/assessments/:assessment_id/progress
// Returns the respondent's current progress.
func (h *PortalHandler) GetProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assessmentID, err := uuid.Parse(c.Param("assessment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	progress, err := h.assessmentService.Progress(c.Request.Context(), assessmentID, claims.UserID)
	if err != nil {
		failAssessmentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"progress": progress})
}

// failAssessmentError maps workflow errors onto the API error taxonomy.
func failAssessmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotAssignedPatient):
		response.Fail(c, http.StatusForbidden, response.ErrNotAssignedPatient)
	case errors.Is(err, service.ErrTemplateNotPublished):
		response.Fail(c, http.StatusBadRequest, response.ErrTemplateNotPublished)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, engine.ErrInvalidOption), errors.Is(err, engine.ErrQuestionMismatch):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidOption)
	case errors.Is(err, engine.ErrInvalidAnswerShape), errors.Is(err, engine.ErrUnknownQuestionType):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidAnswerShape)
	case errors.Is(err, engine.ErrInvalidStateTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidStateTransition)
	case errors.Is(err, engine.ErrInvalidScore):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidScore)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
