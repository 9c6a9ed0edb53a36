package handlers

import (
	"net/http"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/dto"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/commission"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type CommissionHandler struct {
	service commission.Service
	logger  *zap.Logger
}

func NewCommissionHandler(service commission.Service, logger *zap.Logger) *CommissionHandler {
	return &CommissionHandler{service: service, logger: logger}
}

// ListCommissions returns every statement the caller may read.
// GET /api/commissions?from=&to=
func (h *CommissionHandler) ListCommissions(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	rng, ok := parseRange(c)
	if !ok {
		return
	}

	statements, err := h.service.List(c.Request.Context(), caller, rng)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": StatementsToResponse(statements)})
}

// GET /api/commissions/:userId?from=&to=
func (h *CommissionHandler) GetCommission(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	rng, ok := parseRange(c)
	if !ok {
		return
	}

	statement, err := h.service.Get(c.Request.Context(), caller, userID, rng)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": StatementToResponse(statement)})
}

// PUT /api/commissions/:userId
func (h *CommissionHandler) UpsertCommission(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	var req dto.UpsertCompensationRequest
	if !bindJSON(c, &req) {
		return
	}

	statement, err := h.service.Upsert(c.Request.Context(), caller, userID, commission.UpsertProfileInput{
		HasFixedSalary: req.HasFixedSalary,
		FixedSalary:    req.FixedSalary,
		HourRate:       req.HourRate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": StatementToResponse(statement)})
}

// parseRange reads from/to as calendar days. Both or neither must be given.
func parseRange(c *gin.Context) (*commission.Range, bool) {
	var q dto.CommissionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": gin.H{"query": err.Error()}})
		return nil, false
	}
	if q.From == "" && q.To == "" {
		return nil, true
	}

	details := gin.H{}
	from, err := time.Parse(dateLayout, q.From)
	if err != nil {
		details["from"] = "must be a date in YYYY-MM-DD format"
	}
	to, err := time.Parse(dateLayout, q.To)
	if err != nil {
		details["to"] = "must be a date in YYYY-MM-DD format"
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": details})
		return nil, false
	}
	return &commission.Range{From: from, To: to}, true
}
