package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinsa/psicotest-backend/internal/middleware"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/response"
	"github.com/clinsa/psicotest-backend/internal/service"
	"github.com/clinsa/psicotest-backend/internal/validator"
)

// AssessmentHandler handles the clinician-side assessment endpoints.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
	evaluationService *service.EvaluationService
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService, evaluationService *service.EvaluationService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		evaluationService: evaluationService,
	}
}

// Assign godoc
// POST /api/v1/psych/assessments
// Issues a published template to one of the clinician's patients.
func (h *AssessmentHandler) Assign(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.AssignAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst, err := h.assessmentService.Assign(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failAssessmentError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assessment": inst})
}

// List godoc
// GET /api/v1/psych/assessments
// Lists the clinician's assigned assessments.
func (h *AssessmentHandler) List(c *gin.Context) {
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

	assessments, total, err := h.assessmentService.ListForPsychologist(c.Request.Context(), claims.UserID, page, perPage)
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
// GET /api/v1/psych/assessments/:assessment_id
// Returns the full view of an assigned assessment for review.
func (h *AssessmentHandler) GetPaper(c *gin.Context) {
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

	paper, err := h.assessmentService.GetPaperForPsychologist(c.Request.Context(), assessmentID, claims.UserID)
	if err != nil {
		failAssessmentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// Evaluate godoc
// POST /api/v1/psych/assessments/:assessment_id/evaluate
// Closes a COMPLETED assessment with an optional final score and commentary.
func (h *AssessmentHandler) Evaluate(c *gin.Context) {
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

	var req model.EvaluateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inst, err := h.evaluationService.Evaluate(c.Request.Context(), assessmentID, claims.UserID, &req)
	if err != nil {
		failAssessmentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assessment": inst})
}

// DomainReport godoc
// GET /api/v1/psych/assessments/:assessment_id/report
// Computes the normative interpretation from the live answer set.
func (h *AssessmentHandler) DomainReport(c *gin.Context) {
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

	scores, err := h.assessmentService.DomainReport(c.Request.Context(), assessmentID, claims.UserID)
	if err != nil {
		failAssessmentError(c, err)
		return
	}
	if scores == nil {
		scores = []model.DomainScore{}
	}

	response.Success(c, http.StatusOK, gin.H{"domain_scores": scores})
}
