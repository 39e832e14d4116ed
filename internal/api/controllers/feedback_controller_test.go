package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"grassmap/internal/repositories"
	"grassmap/internal/services"
)

type failingAnalytics struct{}

func (failingAnalytics) LogEvent(context.Context, services.AnalyticsEventInput) error {
	return errors.New("events table missing")
}

func (failingAnalytics) Summary(context.Context, time.Duration) ([]repositories.EventCount, error) {
	return nil, nil
}

func TestFeedbackController_AnalyticsFailureIsLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	ctrl := NewFeedbackController(
		services.NewFeedbackService(repositories.NewMemoryFeedbackRepository(), nil),
		failingAnalytics{},
		zap.New(core),
	)
	r := gin.New()
	r.POST("/feedback", ctrl.AddFeedback)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewBufferString(`{"session_id":"s1","rating":5,"comment":"great"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "analytics failures never fail the request")

	dropped := logs.FilterMessage("analytics event dropped").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, zapcore.DebugLevel, dropped[0].Level)
	assert.Equal(t, services.EventFeedback, dropped[0].ContextMap()["name"])
	assert.Equal(t, "events table missing", dropped[0].ContextMap()["error"])
}
