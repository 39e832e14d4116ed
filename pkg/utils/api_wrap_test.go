package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", ErrSessionNotFound), http.StatusNotFound},
		{ErrChatBusy, http.StatusConflict},
		{ErrStaleResponse, http.StatusConflict},
		{ErrNoGeocodeProvider, http.StatusServiceUnavailable},
		{ErrChatUnavailable, http.StatusBadGateway},
		{ErrUpstreamUnavailable, http.StatusBadGateway},
		{ErrInvalidRating, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, msg := StatusFor(tt.err)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestHandleServiceError_Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("trace_id", "trace-1")

	HandleServiceError(c, ErrSessionNotFound)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.Equal(t, "trace-1", body.TraceID)
}
