package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"input-portal/internal/database"
	"input-portal/internal/models"
)

// ListAuditLogs: GET /admin/audit?limit=N
func (h *Handler) ListAuditLogs(c *gin.Context) {
	if h.db == nil {
		render(c, http.StatusOK, gin.H{"logs": []models.AuditLog{}})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := database.ListAuditLogs(h.db, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"logs": logs})
}
