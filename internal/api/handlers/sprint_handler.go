package handlers

import (
	"net/http"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/dto"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/sprint"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SprintHandler struct {
	service sprint.Service
	logger  *zap.Logger
}

func NewSprintHandler(service sprint.Service, logger *zap.Logger) *SprintHandler {
	return &SprintHandler{service: service, logger: logger}
}

// POST /api/sprints
func (h *SprintHandler) CreateSprint(c *gin.Context) {
	var req dto.CreateSprintRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.service.CreateSprint(c.Request.Context(), sprint.CreateSprintInput{
		Name:       req.Name,
		Goal:       req.Goal,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Capacity:   req.Capacity,
		ProjectIDs: req.ProjectIDs,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondSprint(c, http.StatusCreated, created)
}

// GET /api/sprints?status=&projectId=
func (h *SprintHandler) ListSprints(c *gin.Context) {
	var filter sprint.SprintFilter
	var ok bool
	if filter.ProjectID, ok = parseOptionalIDQuery(c, "projectId"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := sprint.Status(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": gin.H{"status": "must be one of PLANNING ACTIVE COMPLETED CANCELLED"}})
			return
		}
		filter.Status = &status
	}

	sprints, err := h.service.ListSprints(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]*dto.SprintResponse, 0, len(sprints))
	for i := range sprints {
		projectIDs, err := h.service.LinkedProjects(c.Request.Context(), sprints[i].ID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		out = append(out, SprintToResponse(&sprints[i], projectIDs))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// GET /api/sprints/:id
func (h *SprintHandler) GetSprint(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetSprint(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondSprint(c, http.StatusOK, s)
}

// PATCH /api/sprints/:id/status
func (h *SprintHandler) UpdateSprintStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSprintStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.service.UpdateSprintStatus(c.Request.Context(), id, sprint.Status(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondSprint(c, http.StatusOK, s)
}

// POST /api/sprints/:id/projects
func (h *SprintHandler) LinkProject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.LinkProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.LinkProject(c.Request.Context(), id, req.ProjectID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	s, err := h.service.GetSprint(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondSprint(c, http.StatusOK, s)
}

// DELETE /api/sprints/:id/projects/:projectId
func (h *SprintHandler) UnlinkProject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	if err := h.service.UnlinkProject(c.Request.Context(), id, projectID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SprintHandler) respondSprint(c *gin.Context, status int, s *sprint.Sprint) {
	projectIDs, err := h.service.LinkedProjects(c.Request.Context(), s.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, gin.H{"data": SprintToResponse(s, projectIDs)})
}
