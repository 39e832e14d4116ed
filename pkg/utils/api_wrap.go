package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// RespondErrorWithData is RespondError for failures that still carry a payload,
// such as a chat turn whose inline error message was appended to the log.
func RespondErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

// StatusFor maps a service error to its HTTP status and client message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, "Session not found"
	case errors.Is(err, ErrPlanNotFound):
		return http.StatusNotFound, "Session has no travel plan yet"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrInvalidPage):
		return http.StatusBadRequest, "Page must be greater than 0"
	case errors.Is(err, ErrInvalidPageSize):
		return http.StatusBadRequest, "Page size must be between 1 and 100"
	case errors.Is(err, ErrInvalidRating):
		return http.StatusBadRequest, "Rating must be between 1 and 5"
	case errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest, "Unknown marker action"
	case errors.Is(err, ErrNoSelection):
		return http.StatusConflict, "Select a marker first"
	case errors.Is(err, ErrChatBusy):
		return http.StatusConflict, "A reply is still being generated"
	case errors.Is(err, ErrStaleResponse):
		return http.StatusConflict, "Request was superseded"
	case errors.Is(err, ErrShareNotReady):
		return http.StatusConflict, "Trip is not completed yet"
	case errors.Is(err, ErrNoGeocodeProvider):
		return http.StatusServiceUnavailable, "Geocoding is not configured"
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable, "Service is not configured"
	case errors.Is(err, ErrChatUnavailable):
		return http.StatusBadGateway, "Chat service failed"
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway, "Upstream service failed"
	case errors.Is(err, ErrDatabaseError):
		return http.StatusInternalServerError, "Internal server error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func HandleServiceError(c *gin.Context, err error) {
	code, message := StatusFor(err)
	if code >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("trace_id", traceID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	RespondError(c, code, message)
}
