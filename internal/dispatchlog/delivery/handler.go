package delivery

import (
	"net/http"
	"strconv"

	"eduapp-backend/internal/dispatchlog/repository"

	"github.com/gin-gonic/gin"
)

// DispatchHandler exposes the dispatch log over HTTP
type DispatchHandler struct {
	repo repository.DispatchRepository
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(repo repository.DispatchRepository) *DispatchHandler {
	return &DispatchHandler{repo: repo}
}

// ListDispatches returns recent notification dispatches
// GET /api/dispatches?limit=50&offset=0
func (h *DispatchHandler) ListDispatches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, total, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dispatches": records,
		"total":      total,
	})
}
