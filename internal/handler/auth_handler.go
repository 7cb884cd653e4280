package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinsa/psicotest-backend/internal/middleware"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/response"
	"github.com/clinsa/psicotest-backend/internal/service"
	"github.com/clinsa/psicotest-backend/internal/validator"
)

// AuthHandler handles login and profile endpoints for both user kinds.
type AuthHandler struct {
	patientService *service.PatientService
	psychService   *service.PsychologistService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(patientService *service.PatientService, psychService *service.PsychologistService) *AuthHandler {
	return &AuthHandler{
		patientService: patientService,
		psychService:   psychService,
	}
}

// PatientLogin godoc
// POST /api/v1/auth/patient/login
// Authenticates a patient by document number. Single-device: a second login
// while a session is active is rejected.
func (h *AuthHandler) PatientLogin(c *gin.Context) {
	var req model.PatientLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.patientService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrSessionAlreadyActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// PsychologistLogin godoc
// POST /api/v1/auth/psychologist/login
// Authenticates a clinician by email.
func (h *AuthHandler) PsychologistLogin(c *gin.Context) {
	var req model.PsychologistLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.psychService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// PsychologistMe godoc
// GET /api/v1/psych/me
// Returns the authenticated clinician's profile.
func (h *AuthHandler) PsychologistMe(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	psych, err := h.psychService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"psychologist": psych})
}
