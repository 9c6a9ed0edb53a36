package handlers

import (
	"net/http"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/dto"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/task"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	service task.Service
	logger  *zap.Logger
}

// NewTaskHandler creates a new TaskHandler instance
func NewTaskHandler(service task.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

// CreateTask appends a new task to the end of its partition.
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := task.CreateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		ProjectID:        req.ProjectID,
		SprintID:         req.SprintID,
		MilestoneID:      req.MilestoneID,
		AssigneeID:       req.AssigneeID,
		CreatorID:        actorID(c),
		Priority:         task.TaskPriority(req.Priority),
		StoryPoints:      req.StoryPoints,
		EstimatedMinutes: req.EstimatedMinutes,
		DueDate:          req.DueDate,
		StartDate:        req.StartDate,
		StartTime:        req.StartTime,
	}

	created, err := h.service.CreateTask(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": TaskToResponse(created)})
}

// GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	t, err := h.service.GetTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(t)})
}

// ListTasks filters by projectId, sprintId, assigneeId and status.
// GET /api/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var filter task.TaskFilter
	var ok bool
	if filter.ProjectID, ok = parseOptionalIDQuery(c, "projectId"); !ok {
		return
	}
	if filter.SprintID, ok = parseOptionalIDQuery(c, "sprintId"); !ok {
		return
	}
	if filter.AssigneeID, ok = parseOptionalIDQuery(c, "assigneeId"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := task.TaskStatus(raw)
		filter.Status = &status
	}

	tasks, err := h.service.ListTasks(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TasksToResponse(tasks)})
}

// PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.service.UpdateTaskStatus(c.Request.Context(), id, task.TaskStatus(req.Status), actorID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(t)})
}

// DeleteTask removes the task and closes the gap it leaves in its partition.
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), id, actorID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MoveTask is the drag-and-drop endpoint.
// POST /api/tasks/move
func (h *TaskHandler) MoveTask(c *gin.Context) {
	var req dto.MoveTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	moved, err := h.service.MoveTask(c.Request.Context(), task.MoveTaskInput{
		TaskID:              req.TaskID,
		SourceSprintID:      req.SourceSprintID,
		DestinationSprintID: req.DestinationSprintID,
		DestinationIndex:    req.DestinationIndex,
		ActorID:             actorID(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(moved)})
}

// GET /api/tasks/:id/activity
func (h *TaskHandler) GetTaskActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	activity, err := h.service.GetTaskActivity(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]*dto.TaskActivityResponse, len(activity))
	for i := range activity {
		out[i] = ActivityToResponse(&activity[i])
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// ListBacklog returns a project's unsprinted tasks by order.
// GET /api/backlog?projectId=
func (h *TaskHandler) ListBacklog(c *gin.Context) {
	projectID, ok := parseOptionalIDQuery(c, "projectId")
	if !ok {
		return
	}
	if projectID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": gin.H{"projectId": "this field is required"}})
		return
	}

	tasks, err := h.service.ListBacklog(c.Request.Context(), *projectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TasksToResponse(tasks)})
}

// GET /api/sprints/:id/backlog
func (h *TaskHandler) SprintBacklog(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.service.SprintBacklog(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TasksToResponse(tasks)})
}

// GET /api/sprints/:id/tasks?projectId=
func (h *TaskHandler) ListSprintTasks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	projectID, ok := parseOptionalIDQuery(c, "projectId")
	if !ok {
		return
	}

	tasks, err := h.service.ListSprintTasks(c.Request.Context(), id, projectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TasksToResponse(tasks)})
}
