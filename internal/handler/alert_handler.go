package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinsa/psicotest-backend/internal/middleware"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/response"
	"github.com/clinsa/psicotest-backend/internal/service"
)

// AlertHandler serves a notification inbox. The same handler backs the
// clinician and the patient routes; the role fixes which inbox the caller's
// user id selects.
type AlertHandler struct {
	alertService *service.AlertService
	role         model.RecipientRole
}

// NewAlertHandler creates a new AlertHandler for one recipient role.
func NewAlertHandler(alertService *service.AlertService, role model.RecipientRole) *AlertHandler {
	return &AlertHandler{alertService: alertService, role: role}
}

// List godoc
// GET /api/v1/psych/alerts
// GET /api/v1/patient/alerts
// Lists the caller's alerts, newest first, with the unread count.
func (h *AlertHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	inbox, pagination, err := h.alertService.List(c.Request.Context(), h.role, claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, inbox, pagination)
}

// MarkRead godoc
// POST /api/v1/psych/alerts/:alert_id/read
// POST /api/v1/patient/alerts/:alert_id/read
func (h *AlertHandler) MarkRead(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	alertID, err := strconv.Atoi(c.Param("alert_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.alertService.MarkRead(c.Request.Context(), h.role, claims.UserID, alertID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "alert marked as read"})
}

// MarkAllRead godoc
// POST /api/v1/psych/alerts/read-all
// POST /api/v1/patient/alerts/read-all
func (h *AlertHandler) MarkAllRead(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.alertService.MarkAllRead(c.Request.Context(), h.role, claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "all alerts marked as read"})
}
