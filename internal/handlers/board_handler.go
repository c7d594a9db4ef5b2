package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/board"
	"taskboard/internal/store"
)

// DragStartRequest names the card picked up by the pointer
type DragStartRequest struct {
	TaskID string `json:"taskId" binding:"required"`
}

// DragOverRequest carries the identifier of the zone under the pointer
type DragOverRequest struct {
	Target string `json:"target" binding:"required"`
}

// DragEndRequest omits target when the card was released outside any zone
type DragEndRequest struct {
	Target *string `json:"target"`
}

type BoardHandler struct {
	store *store.Store
	board *board.Controller
}

func NewBoardHandler(s *store.Store, b *board.Controller) *BoardHandler {
	return &BoardHandler{store: s, board: b}
}

// GetBoard handles GET /api/board
// Returns the four columns with their tasks and counts.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	cols := h.board.Columns()
	total := 0
	for _, col := range cols {
		total += col.Count
	}
	c.JSON(http.StatusOK, gin.H{
		"columns": cols,
		"total":   total,
		"version": h.store.Version(),
	})
}

// ResetBoard handles POST /api/board/reset
// Replaces the board with the sample tasks and clears any gesture.
func (h *BoardHandler) ResetBoard(c *gin.Context) {
	h.board.Cancel()
	if err := h.store.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"columns": h.board.Columns(),
		"version": h.store.Version(),
	})
}

// GetDrag handles GET /api/drag
// Includes the active task so the client can render the drag overlay.
func (h *BoardHandler) GetDrag(c *gin.Context) {
	phase, id := h.board.State()
	resp := gin.H{"phase": phase}
	if phase == board.PhaseDragging {
		resp["activeId"] = id
		if task, ok := h.store.Get(id); ok {
			resp["active"] = task
		}
	}
	c.JSON(http.StatusOK, resp)
}

// StartDrag handles POST /api/drag/start
func (h *BoardHandler) StartDrag(c *gin.Context) {
	var req DragStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.board.Start(req.TaskID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": board.PhaseDragging, "activeId": req.TaskID})
}

// OverDrag handles POST /api/drag/over
func (h *BoardHandler) OverDrag(c *gin.Context) {
	var req DragOverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := board.ParseTarget(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr, err := h.board.Over(c.Request.Context(), target)
	if err != nil {
		h.dragError(c, err)
		return
	}
	c.JSON(http.StatusOK, tr)
}

// EndDrag handles POST /api/drag/end
func (h *BoardHandler) EndDrag(c *gin.Context) {
	var req DragEndRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var target *board.Target
	if req.Target != nil && *req.Target != "" {
		t, err := board.ParseTarget(*req.Target)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		target = &t
	}

	tr, err := h.board.End(c.Request.Context(), target)
	if err != nil {
		h.dragError(c, err)
		return
	}
	c.JSON(http.StatusOK, tr)
}

// CancelDrag handles POST /api/drag/cancel
func (h *BoardHandler) CancelDrag(c *gin.Context) {
	h.board.Cancel()
	c.JSON(http.StatusOK, gin.H{"phase": board.PhaseIdle})
}

func (h *BoardHandler) dragError(c *gin.Context, err error) {
	if errors.Is(err, board.ErrNotDragging) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(validationStatus(err), gin.H{"error": err.Error()})
}
