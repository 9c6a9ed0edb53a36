package handlers

import (
	"net/http"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/middleware"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError writes {"error", "details"} with the status of the error's kind.
// Internal errors are logged and answered with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind == apperrors.KindInternal {
		logger.Error("Request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(appErr.HTTPStatus(), body)
}

// bindJSON decodes the body and reports binding failures as 400 with per-field details.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if details, ok := middleware.ValidationDetails(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": details})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": gin.H{"body": err.Error()}})
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "details": gin.H{name: "must be a UUID"}})
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalIDQuery returns nil when the query parameter is absent.
func parseOptionalIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "details": gin.H{name: "must be a UUID"}})
		return nil, false
	}
	return &id, true
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return id, ok
}

// actorID is the caller recorded on activity rows, nil for anonymous calls.
func actorID(c *gin.Context) *uuid.UUID {
	if id, ok := middleware.GetUserID(c); ok {
		return &id
	}
	return nil
}
