package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/clinsa/psicotest-backend/internal/middleware"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/response"
	"github.com/clinsa/psicotest-backend/internal/service"
	"github.com/clinsa/psicotest-backend/internal/validator"
)

// PatientHandler handles the clinician's patient management endpoints.
type PatientHandler struct {
	patientService *service.PatientService
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// List godoc
// GET /api/v1/psych/patients
// Lists the clinician's patients, searchable by name or document number.
func (h *PatientHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	search := c.Query("search")

	patients, pagination, err := h.patientService.List(c.Request.Context(), claims.UserID, page, perPage, search)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"patients": patients}, pagination)
}

// Get godoc
// GET /api/v1/psych/patients/:patient_id
func (h *PatientHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	patientID, err := strconv.Atoi(c.Param("patient_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	patient, err := h.patientService.GetByID(c.Request.Context(), claims.UserID, patientID)
	if err != nil {
		failPatientError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"patient": patient})
}

// Create godoc
// POST /api/v1/psych/patients
// Registers a new patient under the authenticated clinician.
func (h *PatientHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreatePatientRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	patient, err := h.patientService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"patient": patient})
}

// Update godoc
// PUT /api/v1/psych/patients/:patient_id
func (h *PatientHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	patientID, err := strconv.Atoi(c.Param("patient_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdatePatientRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	patient, err := h.patientService.Update(c.Request.Context(), claims.UserID, patientID, &req)
	if err != nil {
		failPatientError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"patient": patient})
}

// Delete godoc
// DELETE /api/v1/psych/patients/:patient_id
func (h *PatientHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	patientID, err := strconv.Atoi(c.Param("patient_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.patientService.Delete(c.Request.Context(), claims.UserID, patientID); err != nil {
		failPatientError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "patient deleted"})
}

// ResetSession godoc
// POST /api/v1/psych/patients/:patient_id/reset-session
// Clears the patient's active login so they can sign in on a new device.
func (h *PatientHandler) ResetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	patientID, err := strconv.Atoi(c.Param("patient_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.patientService.ResetSession(c.Request.Context(), claims.UserID, patientID); err != nil {
		failPatientError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "session reset"})
}

func failPatientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotAssignedPatient):
		response.Fail(c, http.StatusForbidden, response.ErrNotAssignedPatient)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
