package api

import (
	"net/http"

	"cvos/coach-app/internal/methodology"

	"github.com/gin-gonic/gin"
)

type MethodologyHandler struct {
	catalog *methodology.Catalog
}

func NewMethodologyHandler(catalog *methodology.Catalog) *MethodologyHandler {
	return &MethodologyHandler{catalog: catalog}
}

// ListMethodologies returns the catalog sorted by sort order.
func (h *MethodologyHandler) ListMethodologies(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.List())
}

func (h *MethodologyHandler) GetMethodology(c *gin.Context) {
	m, ok := h.catalog.Get(c.Param("code"))
	if !ok {
		abortWithError(c, http.StatusNotFound, "methodology not found")
		return
	}
	c.JSON(http.StatusOK, m)
}
