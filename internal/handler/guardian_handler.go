package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/response"
	"github.com/clinsa/psicotest-backend/internal/service"
	"github.com/clinsa/psicotest-backend/internal/validator"
)

// GuardianHandler handles guardian record endpoints.
type GuardianHandler struct {
	guardianService *service.GuardianService
}

// NewGuardianHandler creates a new GuardianHandler.
func NewGuardianHandler(guardianService *service.GuardianService) *GuardianHandler {
	return &GuardianHandler{guardianService: guardianService}
}

// List godoc
// GET /api/v1/psych/guardians
func (h *GuardianHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	search := c.Query("search")

	guardians, pagination, err := h.guardianService.List(c.Request.Context(), page, perPage, search)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"guardians": guardians}, pagination)
}

// Get godoc
// GET /api/v1/psych/guardians/:guardian_id
func (h *GuardianHandler) Get(c *gin.Context) {
	guardianID, err := strconv.Atoi(c.Param("guardian_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	guardian, err := h.guardianService.GetByID(c.Request.Context(), guardianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"guardian": guardian})
}

// Create godoc
// POST /api/v1/psych/guardians
func (h *GuardianHandler) Create(c *gin.Context) {
	var req model.CreateGuardianRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	guardian, err := h.guardianService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"guardian": guardian})
}

// Update godoc
// PUT /api/v1/psych/guardians/:guardian_id
func (h *GuardianHandler) Update(c *gin.Context) {
	guardianID, err := strconv.Atoi(c.Param("guardian_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateGuardianRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	guardian, err := h.guardianService.Update(c.Request.Context(), guardianID, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"guardian": guardian})
}

// Delete godoc
// DELETE /api/v1/psych/guardians/:guardian_id
func (h *GuardianHandler) Delete(c *gin.Context) {
	guardianID, err := strconv.Atoi(c.Param("guardian_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.guardianService.Delete(c.Request.Context(), guardianID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "guardian deleted"})
}
