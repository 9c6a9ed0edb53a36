package handlers

import (
	"net/http"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/dto"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	service user.Service
	logger  *zap.Logger
}

func NewUserHandler(service user.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.service.CreateUser(c.Request.Context(), user.CreateUserInput{
		Email:            req.Email,
		Name:             req.Name,
		Role:             user.Role(req.Role),
		CommissionAccess: user.CommissionAccess(req.CommissionAccess),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": u})
}

// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// GetCurrentUser returns the account behind the bearer token.
// GET /api/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": u})
}

// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": u})
}

// PATCH /api/users/:id/commission-access
func (h *UserHandler) UpdateCommissionAccess(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCommissionAccessRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.service.SetCommissionAccess(c.Request.Context(), id, user.CommissionAccess(req.CommissionAccess))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": u})
}
