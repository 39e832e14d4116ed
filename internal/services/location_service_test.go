package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grassmap/internal/models/domain_models"
)

func TestIsChineseAddress(t *testing.T) {
	cases := map[string]bool{
		"上海市黄浦区南京东路":            true,
		"No. 1 Shanghai Road":   true,
		"hong kong island":      true,
		"1-1 Marunouchi, Tokyo": false,
		"Eiffel Tower, Paris":   false,
		"":                      false,
	}
	for address, want := range cases {
		assert.Equal(t, want, IsChineseAddress(address), address)
	}
}

func TestNavigationURL(t *testing.T) {
	foreign := domain_models.UserLocation{CountryCode: "FR"}
	china := domain_models.UserLocation{CountryCode: "CN", IsChina: true}
	coords := &domain_models.Coordinates{Lat: 31.2417, Lng: 121.4903}

	assert.Equal(t, "https://maps.google.com/?q=Eiffel+Tower", NavigationURL(foreign, "Eiffel Tower", nil))
	assert.Equal(t, "https://maps.google.com/?q=31.2417,121.4903", NavigationURL(foreign, "The Bund", coords))
	assert.Equal(t,
		"https://uri.amap.com/navigation?to=121.4903,31.2417&coordinate=gaode&callnative=1",
		NavigationURL(china, "The Bund", coords))
	assert.Contains(t, NavigationURL(foreign, "上海外滩", nil), "https://uri.amap.com/navigation?to=")
}

func TestLocationService_DetectLocation(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/8.8.8.8/json/", r.URL.Path)
		_, _ = w.Write([]byte(`{"country_name":"China","country_code":"CN","city":"Shanghai"}`))
	}))
	defer srv.Close()

	svc := NewLocationService(nil, nil, nil)
	svc.baseURL = srv.URL

	loc := svc.DetectLocation(context.Background(), "8.8.8.8")
	assert.Equal(t, "China", loc.Country)
	assert.Equal(t, "Shanghai", loc.City)
	assert.True(t, loc.IsChina)
	assert.Equal(t, domain_models.DetectionIP, loc.DetectionMethod)

	svc.DetectLocation(context.Background(), "8.8.8.8")
	assert.Equal(t, int32(1), hits.Load(), "second lookup is served from cache")

	svc.ClearCache("8.8.8.8")
	svc.DetectLocation(context.Background(), "8.8.8.8")
	assert.Equal(t, int32(2), hits.Load())
}

func TestLocationService_PrivateIPUsesCallerLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/", r.URL.Path)
		_, _ = w.Write([]byte(`{"country_name":"Japan","country_code":"JP"}`))
	}))
	defer srv.Close()

	svc := NewLocationService(nil, nil, nil)
	svc.baseURL = srv.URL

	loc := svc.DetectLocation(context.Background(), "192.168.1.10")
	assert.Equal(t, "JP", loc.CountryCode)
	assert.False(t, loc.IsChina)
}

func TestLocationService_FallsBackToDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
	}))
	defer srv.Close()

	svc := NewLocationService(nil, nil, nil)
	svc.baseURL = srv.URL

	assert.Equal(t, DefaultUserLocation(), svc.DetectLocation(context.Background(), "8.8.4.4"))
}

func TestLocationService_UpdateGPS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"country_name":"France","country_code":"FR"}`))
	}))
	defer srv.Close()

	svc := NewLocationService(nil, nil, nil)
	svc.baseURL = srv.URL

	loc := svc.UpdateGPS(context.Background(), "1.1.1.1", domain_models.GPSCoords{Latitude: 48.85, Longitude: 2.35})
	require.NotNil(t, loc.Coords)
	assert.Equal(t, domain_models.DetectionGPS, loc.DetectionMethod)

	again := svc.DetectLocation(context.Background(), "1.1.1.1")
	assert.Equal(t, loc, again)
}
