package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/http/response"
	"github.com/yungbote/bookhaven-backend/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/books?category=
func (h *CatalogHandler) List(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	if category == "" {
		category = services.CategoryAll
	}
	response.RespondOK(c, gin.H{
		"category":   category,
		"categories": h.catalog.Categories(),
		"books":      h.catalog.List(category),
	})
}

// GET /api/books/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	book, ok := h.catalog.Get(strings.TrimSpace(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, response.ErrorEnvelope{
			Error: response.APIError{Message: "book not found", Code: "book_not_found"},
		})
		return
	}
	response.RespondOK(c, gin.H{"book": book})
}
