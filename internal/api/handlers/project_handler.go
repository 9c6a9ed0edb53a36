package handlers

import (
	"net/http"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/dto"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProjectHandler handles HTTP requests for projects and their milestones
type ProjectHandler struct {
	service project.Service
	logger  *zap.Logger
}

func NewProjectHandler(service project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

// POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.service.CreateProject(c.Request.Context(), project.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      project.ProjectStatus(req.Status),
		ClientID:    req.ClientID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": p})
}

// GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.service.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

// GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

// POST /api/projects/:id/milestones
func (h *ProjectHandler) CreateMilestone(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateMilestoneRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.service.CreateMilestone(c.Request.Context(), project.CreateMilestoneInput{
		ProjectID:   id,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": m})
}

// GET /api/projects/:id/milestones
func (h *ProjectHandler) ListMilestones(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	milestones, err := h.service.ListMilestones(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": milestones})
}
