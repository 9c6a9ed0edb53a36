package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSample = NotFound("thing not found")

func TestErrorIs_MatchesWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", errSample.Wrap(errors.New("record not found")))

	assert.True(t, errors.Is(wrapped, errSample))
	assert.False(t, errors.Is(wrapped, NotFound("other")))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation("bad", nil), http.StatusBadRequest},
		{"invalid state", InvalidState("closed"), http.StatusBadRequest},
		{"not found", NotFound("x"), http.StatusNotFound},
		{"conflict", Conflict("x"), http.StatusConflict},
		{"forbidden", Forbidden("x"), http.StatusForbidden},
		{"unauthorized", Unauthorized("x"), http.StatusUnauthorized},
		{"internal", Internal("x", nil), http.StatusInternalServerError},
		{"override", Conflict("x").WithStatus(http.StatusBadRequest), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	base := Validation("validation failed", nil)
	withDetails := base.WithDetails(map[string]string{"taskId": "required"})

	assert.Nil(t, base.Details)
	assert.Equal(t, "required", withDetails.Details["taskId"])
	assert.True(t, errors.Is(withDetails, base))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}
