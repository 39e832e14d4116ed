package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"grassmap/internal/metrics"
	"grassmap/pkg/utils"
)

const (
	defaultWeatherBaseURL = "https://api.weatherapi.com"
	defaultSerpAPIBaseURL = "https://serpapi.com"

	ReviewSourceGoogle = "google"
	ReviewSourceYelp   = "yelp"
)

type WeatherReport struct {
	Location json.RawMessage `json:"location"`
	Current  json.RawMessage `json:"current"`
}

type ReviewQuery struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Source  string `json:"source"`
}

type ReviewResult struct {
	Data      json.RawMessage `json:"data"`
	ReviewURL string          `json:"reviewUrl"`
}

type LookupServiceInterface interface {
	Weather(ctx context.Context, city string) (*WeatherReport, error)
	Review(ctx context.Context, q ReviewQuery) (*ReviewResult, error)
}

// LookupService proxies WeatherAPI and SerpApi so their keys stay server side.
type LookupService struct {
	HTTP           *http.Client
	WeatherKey     string
	WeatherBaseURL string
	SerpKey        string
	SerpBaseURL    string

	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewLookupService(weatherKey, serpKey string, m *metrics.Metrics, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &LookupService{
		HTTP:           &http.Client{Timeout: 15 * time.Second},
		WeatherKey:     weatherKey,
		WeatherBaseURL: defaultWeatherBaseURL,
		SerpKey:        serpKey,
		SerpBaseURL:    defaultSerpAPIBaseURL,
		metrics:        m,
		logger:         logger,
	}
}

// Weather returns current conditions for city, or for the caller's IP
// location when city is empty.
func (s *LookupService) Weather(ctx context.Context, city string) (*WeatherReport, error) {
	if s.WeatherKey == "" {
		return nil, fmt.Errorf("%w: weather API key", utils.ErrNotConfigured)
	}
	if city = strings.TrimSpace(city); city == "" {
		city = "auto:ip"
	}

	q := url.Values{}
	q.Set("key", s.WeatherKey)
	q.Set("q", city)
	q.Set("aqi", "yes")
	body, err := s.fetch(ctx, "weatherapi", s.WeatherBaseURL+"/v1/current.json?"+q.Encode())
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return nil, fmt.Errorf("%w: %s", utils.ErrInvalidRequest, msg.String())
	}
	if err != nil {
		return nil, err
	}

	return &WeatherReport{
		Location: rawOrNull(gjson.GetBytes(body, "location")),
		Current:  rawOrNull(gjson.GetBytes(body, "current")),
	}, nil
}

// Review searches SerpApi for a place and extracts a link to its reviews.
// Source "yelp" uses the Yelp engine, anything else Google Maps reviews.
func (s *LookupService) Review(ctx context.Context, rq ReviewQuery) (*ReviewResult, error) {
	if s.SerpKey == "" {
		return nil, fmt.Errorf("%w: SerpApi key", utils.ErrNotConfigured)
	}
	if strings.TrimSpace(rq.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", utils.ErrInvalidRequest)
	}

	q := url.Values{}
	q.Set("api_key", s.SerpKey)
	yelp := rq.Source == ReviewSourceYelp
	if yelp {
		q.Set("engine", "yelp")
		q.Set("find_desc", rq.Name)
		q.Set("find_loc", rq.Address)
	} else {
		q.Set("engine", "google_maps_reviews")
		q.Set("q", strings.TrimSpace(rq.Name+" "+rq.Address))
	}

	body, err := s.fetch(ctx, "serpapi", s.SerpBaseURL+"/search.json?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var reviewURL string
	if yelp {
		reviewURL = gjson.GetBytes(body, "organic_results.0.link").String()
	} else {
		reviewURL = gjson.GetBytes(body, "search_metadata.google_maps_url").String()
		if dataID := gjson.GetBytes(body, "organic_results.0.data_id").String(); reviewURL == "" && dataID != "" {
			reviewURL = "https://www.google.com/maps/place/?q=place_id:" + dataID
		}
	}
	return &ReviewResult{Data: json.RawMessage(body), ReviewURL: reviewURL}, nil
}

// fetch returns the body even on a non-2xx status so callers can read
// provider error payloads.
func (s *LookupService) fetch(ctx context.Context, service, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.HTTP.Do(req)
	if err != nil {
		s.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		s.logger.Warn("upstream request failed", zap.String("service", service), zap.Error(err))
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", utils.ErrUpstreamUnavailable, service)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || !gjson.ValidBytes(body) {
		s.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return nil, fmt.Errorf("%w: %s returned an unreadable body", utils.ErrUpstreamUnavailable, service)
	}
	if resp.StatusCode/100 != 2 {
		s.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		s.logger.Warn("upstream bad status", zap.String("service", service), zap.Int("status", resp.StatusCode))
		return body, fmt.Errorf("%w: %s HTTP %d", utils.ErrUpstreamUnavailable, service, resp.StatusCode)
	}
	s.metrics.UpstreamRequests.WithLabelValues(service, "ok").Inc()
	return body, nil
}

func rawOrNull(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return json.RawMessage("null")
	}
	return json.RawMessage(r.Raw)
}
