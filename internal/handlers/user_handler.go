package handlers

import (
	"net/http"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/session"

	"github.com/gin-gonic/gin"
)

// MeResponse describes the signed-in user and their session
type MeResponse struct {
	User      models.UserInfo  `json:"user"`
	View      session.ViewMode `json:"view"`
	TaskCount int              `json:"taskCount"`
}

type SetViewRequest struct {
	View string `json:"view" binding:"required,oneof=board kanban"`
}

// Me returns the current user
// GET /api/me
func (h *Handler) Me(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MeResponse{
		User:      sess.User,
		View:      sess.View(),
		TaskCount: sess.Len(),
	})
}

// SetView switches between the board and kanban layouts
// PUT /api/view
func (h *Handler) SetView(c *gin.Context) {
	var req SetViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := session.ParseViewMode(req.View)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": gin.H{"view": "view must be one of board kanban"}})
		return
	}

	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	sess.SetView(view)
	c.JSON(http.StatusOK, gin.H{"view": view})
}
