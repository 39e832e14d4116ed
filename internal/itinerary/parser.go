package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grassmap/internal/models/domain_models"
)

var (
	ErrNoItinerary        = errors.New("no itinerary found in message")
	ErrMalformedItinerary = errors.New("malformed itinerary json")
)

// pointsArrayRe matches the first bracketed array of brace-delimited objects.
var pointsArrayRe = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)

// Heuristics derives the plan title and city from the surrounding prose.
type Heuristics interface {
	Title(text string) string
	City(text string) string
}

// PlanParser is what the store needs from a parser: a fail-soft decode.
type PlanParser interface {
	ParsePlan(content string) *domain_models.TravelPlan
}

type Parser struct {
	heuristics Heuristics
	newID      func() string
	logger     *zap.Logger
}

func NewParser(heuristics Heuristics, logger *zap.Logger) *Parser {
	if heuristics == nil {
		heuristics = NewCatalogHeuristics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		heuristics: heuristics,
		newID:      uuid.NewString,
		logger:     logger,
	}
}

// Parse extracts a travel plan from assistant text. It returns ErrNoItinerary
// when the text carries no points array and ErrMalformedItinerary when the
// array is not valid JSON.
func (p *Parser) Parse(content string) (*domain_models.TravelPlan, error) {
	raw := pointsArrayRe.FindString(content)
	if raw == "" {
		return nil, ErrNoItinerary
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItinerary, err)
	}

	points := make([]domain_models.GrassPoint, 0, len(items))
	for _, item := range items {
		points = append(points, p.normalizePoint(item))
	}

	return &domain_models.TravelPlan{
		ID:          p.newID(),
		Title:       p.heuristics.Title(content),
		City:        p.heuristics.City(content),
		GrassPoints: points,
	}, nil
}

// ParsePlan is Parse with failures logged and swallowed.
func (p *Parser) ParsePlan(content string) *domain_models.TravelPlan {
	plan, err := p.Parse(content)
	switch {
	case errors.Is(err, ErrNoItinerary):
		p.logger.Debug("assistant message carries no itinerary")
		return nil
	case err != nil:
		p.logger.Warn("failed to parse itinerary", zap.Error(err))
		return nil
	}
	p.logger.Info("parsed itinerary",
		zap.String("plan_id", plan.ID),
		zap.String("city", plan.City),
		zap.Int("points", len(plan.GrassPoints)))
	return plan
}

func (p *Parser) normalizePoint(item json.RawMessage) domain_models.GrassPoint {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		// arrays, numbers and null become empty points
		fields = nil
	}

	pointType, ok := stringField(fields, "type")
	if !ok || pointType == "" {
		pointType = domain_models.DefaultPointType
	}
	description, ok := stringField(fields, "description")
	if !ok {
		description, _ = stringField(fields, "reason")
	}
	name, _ := stringField(fields, "name")
	address, _ := stringField(fields, "address")

	return domain_models.GrassPoint{
		ID:          p.newID(),
		Name:        name,
		Type:        pointType,
		Address:     address,
		Description: description,
		Completed:   false,
	}
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
