package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grassmap/pkg/utils"
)

func newLookupAgainst(t *testing.T, handler http.HandlerFunc) *LookupService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewLookupService("weather-key", "serp-key", nil, nil)
	s.HTTP = srv.Client()
	s.WeatherBaseURL = srv.URL
	s.SerpBaseURL = srv.URL
	return s
}

func TestLookupService_Weather(t *testing.T) {
	var gotQuery string
	s := newLookupAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/current.json", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "weather-key", r.URL.Query().Get("key"))
		assert.Equal(t, "yes", r.URL.Query().Get("aqi"))
		_, _ = w.Write([]byte(`{"location":{"name":"Tokyo"},"current":{"temp_c":21.5},"extra":1}`))
	})

	report, err := s.Weather(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "auto:ip", gotQuery)
	assert.JSONEq(t, `{"name":"Tokyo"}`, string(report.Location))
	assert.JSONEq(t, `{"temp_c":21.5}`, string(report.Current))

	_, err = s.Weather(context.Background(), "Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", gotQuery)
}

func TestLookupService_WeatherProviderError(t *testing.T) {
	s := newLookupAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	})

	_, err := s.Weather(context.Background(), "Atlantis")
	require.ErrorIs(t, err, utils.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "No matching location found.")
}

func TestLookupService_NotConfigured(t *testing.T) {
	s := NewLookupService("", "", nil, nil)

	_, err := s.Weather(context.Background(), "Tokyo")
	assert.ErrorIs(t, err, utils.ErrNotConfigured)

	_, err = s.Review(context.Background(), ReviewQuery{Name: "Blue Bottle"})
	assert.ErrorIs(t, err, utils.ErrNotConfigured)
}

func TestLookupService_ReviewGoogle(t *testing.T) {
	s := newLookupAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "google_maps_reviews", q.Get("engine"))
		assert.Equal(t, "Blue Bottle Kiyosumi", q.Get("q"))
		_, _ = w.Write([]byte(`{"search_metadata":{"google_maps_url":"https://maps.google.com/?cid=1"},"reviews":[]}`))
	})

	res, err := s.Review(context.Background(), ReviewQuery{Name: "Blue Bottle", Address: "Kiyosumi"})
	require.NoError(t, err)
	assert.Equal(t, "https://maps.google.com/?cid=1", res.ReviewURL)
	assert.Contains(t, string(res.Data), "search_metadata")
}

func TestLookupService_ReviewGoogleFallsBackToPlaceID(t *testing.T) {
	s := newLookupAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"organic_results":[{"data_id":"0xabc"}]}`))
	})

	res, err := s.Review(context.Background(), ReviewQuery{Name: "Blue Bottle"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/maps/place/?q=place_id:0xabc", res.ReviewURL)
}

func TestLookupService_ReviewYelp(t *testing.T) {
	s := newLookupAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "yelp", q.Get("engine"))
		assert.Equal(t, "Tartine", q.Get("find_desc"))
		assert.Equal(t, "San Francisco", q.Get("find_loc"))
		_, _ = w.Write([]byte(`{"organic_results":[{"link":"https://yelp.com/biz/tartine"}]}`))
	})

	res, err := s.Review(context.Background(), ReviewQuery{Name: "Tartine", Address: "San Francisco", Source: ReviewSourceYelp})
	require.NoError(t, err)
	assert.Equal(t, "https://yelp.com/biz/tartine", res.ReviewURL)
}

func TestLookupService_UpstreamFailure(t *testing.T) {
	s := newLookupAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := s.Review(context.Background(), ReviewQuery{Name: "x"})
	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)

	down := NewLookupService("k", "k", nil, nil)
	down.WeatherBaseURL = "http://127.0.0.1:1"
	_, err = down.Weather(context.Background(), "Tokyo")
	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
}

func TestLookupService_ReviewRequiresName(t *testing.T) {
	s := NewLookupService("k", "k", nil, nil)
	_, err := s.Review(context.Background(), ReviewQuery{Name: "  "})
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
}
