package handlers

import (
	"context"
	"net/http"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/dto"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/timer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TimerHandler struct {
	service timer.Service
	logger  *zap.Logger
}

func NewTimerHandler(service timer.Service, logger *zap.Logger) *TimerHandler {
	return &TimerHandler{service: service, logger: logger}
}

// POST /api/tasks/:id/start-timer
func (h *TimerHandler) StartTimer(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.StartTimerRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.service.Start(c.Request.Context(), taskID, req.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": TimeEntryToResponse(entry)})
}

// POST /api/tasks/:id/pause-timer
func (h *TimerHandler) PauseTimer(c *gin.Context) {
	h.close(c, h.service.Pause)
}

// POST /api/tasks/:id/stop-timer
func (h *TimerHandler) StopTimer(c *gin.Context) {
	h.close(c, h.service.Stop)
}

func (h *TimerHandler) close(c *gin.Context, op func(ctx context.Context, taskID, entryID uuid.UUID) (*timer.StopResult, error)) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.StopTimerRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := op(c.Request.Context(), taskID, req.EntryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.StopTimerResponse{
		Entry: TimeEntryToResponse(result.Entry),
		Task:  TaskToResponse(result.Task),
	}})
}

// GetActiveTimer answers {"data": null} when no timer runs.
// GET /api/tasks/:id/active-timer
func (h *TimerHandler) GetActiveTimer(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.ActiveEntry(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TimeEntryToResponse(entry)})
}

// GET /api/tasks/:id/time-entries
func (h *TimerHandler) ListTimeEntries(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.service.ListEntries(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TimeEntriesToResponse(entries)})
}

// GET /api/tasks/:id/time-summary
func (h *TimerHandler) GetTimeSummary(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": SummaryToResponse(summary)})
}
