package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grassmap/internal/metrics"
	"grassmap/internal/models/domain_models"
	mem "grassmap/pkg/memcache"
	"grassmap/pkg/utils"
)

const (
	DefaultGeocodeTimeout     = 10 * time.Second
	defaultGeocodeConcurrency = 8
)

type GeocodeOptions struct {
	// Provider forces a provider by name when it is configured.
	Provider     string
	UserLocation *domain_models.UserLocation
}

type GeocodeServiceInterface interface {
	// Geocode resolves addresses concurrently. Result i always belongs to
	// address i; per-address failures are reported inside the result.
	Geocode(ctx context.Context, addresses []string, opts GeocodeOptions) ([]domain_models.GeocodeResult, error)
	SelectProvider(addresses []string, opts GeocodeOptions) (GeocodeProvider, error)
}

type GeocodeConfig struct {
	Timeout     time.Duration
	Concurrency int
	Cache       mem.Store[domain_models.Coordinates]
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

type GeocodeService struct {
	providers map[string]GeocodeProvider
	cfg       GeocodeConfig
}

// NewGeocodeService keeps the non-nil providers. With none, every batch
// fails with ErrNoGeocodeProvider.
func NewGeocodeService(providers []GeocodeProvider, cfg GeocodeConfig) *GeocodeService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGeocodeTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultGeocodeConcurrency
	}
	if cfg.Cache == nil {
		cfg.Cache = mem.NewTTLStore[domain_models.Coordinates](24*time.Hour, false)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	byName := make(map[string]GeocodeProvider, len(providers))
	for _, p := range providers {
		if p != nil {
			byName[p.Name()] = p
		}
	}
	return &GeocodeService{providers: byName, cfg: cfg}
}

func (s *GeocodeService) SelectProvider(addresses []string, opts GeocodeOptions) (GeocodeProvider, error) {
	if len(s.providers) == 0 {
		return nil, utils.ErrNoGeocodeProvider
	}
	if p, ok := s.providers[strings.ToLower(opts.Provider)]; ok {
		return p, nil
	}

	wantChina := opts.UserLocation != nil && opts.UserLocation.IsChina
	for _, a := range addresses {
		if wantChina {
			break
		}
		wantChina = IsChineseAddress(a)
	}
	if p, ok := s.providers[ProviderAmap]; ok && wantChina {
		return p, nil
	}
	if p, ok := s.providers[ProviderMapbox]; ok {
		return p, nil
	}
	for _, p := range s.providers {
		return p, nil
	}
	return nil, utils.ErrNoGeocodeProvider
}

func (s *GeocodeService) Geocode(ctx context.Context, addresses []string, opts GeocodeOptions) ([]domain_models.GeocodeResult, error) {
	provider, err := s.SelectProvider(addresses, opts)
	if err != nil {
		return nil, err
	}

	results := make([]domain_models.GeocodeResult, len(addresses))
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			results[i] = s.lookupOne(ctx, provider, address)
			return nil
		})
	}
	_ = g.Wait()

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		}
	}
	s.cfg.Logger.Info("geocoding batch finished",
		zap.String("provider", provider.Name()),
		zap.Int("total", len(results)),
		zap.Int("successful", ok),
		zap.Int("failed", len(results)-ok))
	return results, nil
}

func (s *GeocodeService) lookupOne(ctx context.Context, provider GeocodeProvider, address string) domain_models.GeocodeResult {
	result := domain_models.GeocodeResult{Address: address}
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		result.Error = "empty address"
		return result
	}

	key := provider.Name() + "|" + strings.ToLower(trimmed)
	if c, ok := s.cfg.Cache.Get(key); ok {
		s.cfg.Metrics.GeocodeLookups.WithLabelValues(provider.Name(), "cache").Inc()
		return successResult(address, c)
	}

	lctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	c, err := provider.Lookup(lctx, trimmed)
	if err != nil {
		s.cfg.Metrics.GeocodeLookups.WithLabelValues(provider.Name(), "error").Inc()
		if errors.Is(lctx.Err(), context.DeadlineExceeded) {
			result.Error = "geocoding timed out"
		} else {
			result.Error = err.Error()
		}
		s.cfg.Logger.Warn("geocoding failed", zap.String("address", address), zap.Error(err))
		return result
	}

	s.cfg.Metrics.GeocodeLookups.WithLabelValues(provider.Name(), "ok").Inc()
	s.cfg.Cache.Set(key, c)
	return successResult(address, c)
}

func successResult(address string, c domain_models.Coordinates) domain_models.GeocodeResult {
	lat, lng := c.Lat, c.Lng
	return domain_models.GeocodeResult{Address: address, Lat: &lat, Lng: &lng, Success: true}
}
