package utils

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrPlanNotFound        = errors.New("session has no plan")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidPage         = errors.New("invalid page parameter")
	ErrInvalidPageSize     = errors.New("invalid page size parameter")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrUnknownAction       = errors.New("unknown marker action")
	ErrNoSelection         = errors.New("no marker selected")
	ErrNoGeocodeProvider   = errors.New("no geocoding provider configured")
	ErrChatUnavailable     = errors.New("chat completion failed")
	ErrChatBusy            = errors.New("a chat request is already in flight")
	ErrStaleResponse       = errors.New("response superseded by a newer request")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrNotConfigured       = errors.New("service not configured")
	ErrShareNotReady       = errors.New("trip not completed yet")
	ErrDatabaseError       = errors.New("database error")
)
