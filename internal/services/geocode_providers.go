package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"grassmap/internal/models/domain_models"
)

const (
	ProviderMapbox = "mapbox"
	ProviderAmap   = "amap"

	defaultMapboxBaseURL = "https://api.mapbox.com"
	defaultAmapBaseURL   = "https://restapi.amap.com"
)

var ErrNoCoordinates = errors.New("No coordinates found")

// GeocodeProvider resolves one free-form address to a coordinate pair.
type GeocodeProvider interface {
	Name() string
	Lookup(ctx context.Context, address string) (domain_models.Coordinates, error)
}

type MapboxGeocoder struct {
	HTTP        *http.Client
	AccessToken string
	BaseURL     string
}

func NewMapboxGeocoder(token string) *MapboxGeocoder {
	return &MapboxGeocoder{
		HTTP:        &http.Client{Timeout: 15 * time.Second},
		AccessToken: token,
		BaseURL:     defaultMapboxBaseURL,
	}
}

func (g *MapboxGeocoder) Name() string { return ProviderMapbox }

func (g *MapboxGeocoder) Lookup(ctx context.Context, address string) (domain_models.Coordinates, error) {
	q := url.Values{}
	q.Set("access_token", g.AccessToken)
	q.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		g.BaseURL, url.PathEscape(address), q.Encode())

	body, err := getJSON(ctx, g.HTTP, endpoint)
	if err != nil {
		return domain_models.Coordinates{}, fmt.Errorf("mapbox: %w", err)
	}

	center := gjson.GetBytes(body, "features.0.center")
	if !center.IsArray() || len(center.Array()) < 2 {
		return domain_models.Coordinates{}, ErrNoCoordinates
	}
	pair := center.Array()
	return domain_models.Coordinates{Lat: pair[1].Float(), Lng: pair[0].Float()}, nil
}

type AmapGeocoder struct {
	HTTP    *http.Client
	Key     string
	BaseURL string
}

func NewAmapGeocoder(key string) *AmapGeocoder {
	return &AmapGeocoder{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Key:     key,
		BaseURL: defaultAmapBaseURL,
	}
}

func (g *AmapGeocoder) Name() string { return ProviderAmap }

func (g *AmapGeocoder) Lookup(ctx context.Context, address string) (domain_models.Coordinates, error) {
	q := url.Values{}
	q.Set("key", g.Key)
	q.Set("address", address)
	q.Set("output", "JSON")
	endpoint := g.BaseURL + "/v3/geocode/geo?" + q.Encode()

	body, err := getJSON(ctx, g.HTTP, endpoint)
	if err != nil {
		return domain_models.Coordinates{}, fmt.Errorf("amap: %w", err)
	}
	if status := gjson.GetBytes(body, "status").String(); status != "1" {
		return domain_models.Coordinates{}, fmt.Errorf("amap: %s", gjson.GetBytes(body, "info").String())
	}

	// location is "lng,lat"
	location := gjson.GetBytes(body, "geocodes.0.location").String()
	lngStr, latStr, ok := strings.Cut(location, ",")
	if !ok {
		return domain_models.Coordinates{}, ErrNoCoordinates
	}
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if errLng != nil || errLat != nil {
		return domain_models.Coordinates{}, fmt.Errorf("amap: bad location %q", location)
	}
	return domain_models.Coordinates{Lat: lat, Lng: lng}, nil
}

// getJSON fetches endpoint and returns the body when the status is 2xx and
// the payload is valid JSON.
func getJSON(ctx context.Context, client *http.Client, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return body, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if !gjson.ValidBytes(body) {
		return body, fmt.Errorf("invalid json response")
	}
	return body, nil
}
