package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/response"
)

// CatalogHandler serves static catalogs used by template builders.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// QuestionTypes godoc
// GET /api/v1/psych/catalog/question-types
// Returns the closed set of supported question types.
func (h *CatalogHandler) QuestionTypes(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"question_types": model.QuestionTypeCatalog()})
}
