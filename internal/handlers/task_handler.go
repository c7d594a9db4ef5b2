package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/board"
	"taskboard/internal/form"
	"taskboard/internal/models"
	"taskboard/internal/store"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Tags        []string            `json:"tags"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	Tags        *[]string            `json:"tags"`
}

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

type TaskHandler struct {
	store *store.Store
	board *board.Controller
}

func NewTaskHandler(s *store.Store, b *board.Controller) *TaskHandler {
	return &TaskHandler{store: s, board: b}
}

// validationStatus maps model validation errors to 400 and anything else to 500.
func validationStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrTitleRequired),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidPriority):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GetTasks handles GET /api/tasks
// Returns the whole collection in board order.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	tasks := h.store.List()
	c.JSON(http.StatusOK, gin.H{
		"tasks":   tasks,
		"count":   len(tasks),
		"version": h.store.Version(),
	})
}

// GetTaskByID handles GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	task, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask handles POST /api/tasks
// Applies the task form rules: trimmed title required, todo/medium defaults.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d := form.Draft{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}.Normalize()
	if err := d.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := d.TaskDraft()
	if req.Tags != nil {
		draft.Tags = req.Tags
	}
	task, err := h.store.Create(c.Request.Context(), draft)
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id
// Only the supplied fields change.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		req.Description = &trimmed
	}

	id := c.Param("id")
	found, err := h.store.Update(c.Request.Context(), id, models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
	})
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	task, _ := h.store.Get(id)
	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
// The card's status picker; picking the current status changes nothing.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	tr, err := h.board.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, board.ErrUnknownTask) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	task, _ := h.store.Get(id)
	c.JSON(http.StatusOK, gin.H{
		"task":       task,
		"transition": tr,
	})
}

// GetStatusOptions handles GET /api/tasks/:id/status-options
func (h *TaskHandler) GetStatusOptions(c *gin.Context) {
	task, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"taskId":  task.ID,
		"options": board.StatusOptions(task),
	})
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := c.Param("id")
	if !h.store.Delete(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      id,
	})
}
