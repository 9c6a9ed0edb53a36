package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/timer"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation with details",
			err:    apperrors.Validation("validation failed", map[string]string{"title": "required"}),
			status: http.StatusBadRequest,
			body:   `{"error":"validation failed","details":{"title":"required"}}`,
		},
		{
			name:   "wrapped not found",
			err:    fmt.Errorf("loading: %w", apperrors.NotFound("task not found")),
			status: http.StatusNotFound,
			body:   `{"error":"task not found"}`,
		},
		{
			name:   "active timer conflict reported as bad request",
			err:    timer.ErrTimerAlreadyActive,
			status: http.StatusBadRequest,
			body:   `{"error":"` + timer.ErrTimerAlreadyActive.Message + `"}`,
		},
		{
			name:   "forbidden",
			err:    apperrors.Forbidden("not allowed"),
			status: http.StatusForbidden,
			body:   `{"error":"not allowed"}`,
		},
		{
			name:   "internal hides cause",
			err:    apperrors.Internal("negative duration", errors.New("clock skew")),
			status: http.StatusInternalServerError,
			body:   `{"error":"internal server error"}`,
		},
		{
			name:   "plain error",
			err:    errors.New("driver exploded"),
			status: http.StatusInternalServerError,
			body:   `{"error":"internal server error"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			respondError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestParseRange(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		query  string
		ok     bool
		isNil  bool
		status int
	}{
		{name: "absent", query: "", ok: true, isNil: true},
		{name: "both", query: "?from=2024-01-01&to=2024-01-31", ok: true},
		{name: "only from", query: "?from=2024-01-01", ok: false, status: http.StatusBadRequest},
		{name: "bad date", query: "?from=2024-01-01&to=31/01/2024", ok: false, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/commissions"+tt.query, nil)

			rng, ok := parseRange(c)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, tt.status, w.Code)
				return
			}
			assert.Equal(t, tt.isNil, rng == nil)
			if rng != nil {
				assert.Equal(t, 1, rng.From.Day())
				assert.Equal(t, 31, rng.To.Day())
			}
		})
	}
}
