package handlers

import (
	"net/http"

	"task-tracker-api/internal/tasks"

	"github.com/gin-gonic/gin"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	DueDate     string   `json:"dueDate"`
	Status      string   `json:"status"`
	Files       []string `json:"files"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	DueDate     *string   `json:"dueDate"`
	Status      *string   `json:"status"`
	Files       *[]string `json:"files"`
}

// UpdateTaskStatusRequest is the drag-and-drop, dropdown and form status change
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Source string `json:"source" binding:"omitempty,oneof=drag dropdown form"`
}

type BulkStatusRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1,dive,required"`
	Status string   `json:"status" binding:"required"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

func (h *Handler) filter(c *gin.Context) (tasks.Filter, bool) {
	var params tasks.FilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return tasks.Filter{}, false
	}
	f, err := params.Parse()
	if err != nil {
		writeError(c, err)
		return tasks.Filter{}, false
	}
	return f, true
}

/*
*
GetTasks handles GET /api/tasks
Returns the user's tasks ordered by index.
Optional query params: q (title search), from/to (due date range), category, status.
*/
func (h *Handler) GetTasks(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	list := h.Tasks.List(sess, f)
	c.JSON(http.StatusOK, gin.H{
		"tasks": list,
		"count": len(list),  // tasks matching the filter
		"total": sess.Len(), // every task the user owns
	})
}

// GetBoard handles GET /api/board, the tasks grouped by status
func (h *Handler) GetBoard(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Tasks.Board(sess, f))
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Tasks.Stats(sess))
}

// GetTaskByID handles GET /api/tasks/:id
func (h *Handler) GetTaskByID(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	task, err := h.Tasks.Get(sess, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

/*
*
CreateTask handles POST /api/tasks
Creates a new task at the end of its status for the authenticated user
*/
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), sess, tasks.Draft{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Files:       req.Files,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id; omitted fields keep their value
func (h *Handler) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Edit(c.Request.Context(), sess, c.Param("id"), tasks.Patch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Files:       req.Files,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	src := tasks.Source(req.Source)
	if src == "" {
		src = tasks.SourceDropdown
	}
	task, changed, err := h.Tasks.ChangeStatus(c.Request.Context(), sess, c.Param("id"), req.Status, src)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "changed": changed})
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	if err := h.Tasks.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// BulkUpdateStatus handles POST /api/tasks/bulk/status
func (h *Handler) BulkUpdateStatus(c *gin.Context) {
	var req BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	moved, err := h.Tasks.BulkChangeStatus(c.Request.Context(), sess, req.IDs, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": moved, "count": len(moved)})
}

// BulkDelete handles POST /api/tasks/bulk/delete
func (h *Handler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	if err := h.Tasks.BulkDelete(c.Request.Context(), sess, req.IDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tasks deleted successfully", "count": len(req.IDs)})
}
