package memcache_fx

import (
	"time"

	"go.uber.org/fx"

	"grassmap/internal/models/domain_models"
	mem "grassmap/pkg/memcache"
)

var Module = fx.Provide(provideLocationCache, provideGeocodeCache)

func provideLocationCache() mem.Store[domain_models.UserLocation] {
	return mem.NewTTLStore[domain_models.UserLocation](time.Hour, false)
}

func provideGeocodeCache() mem.Store[domain_models.Coordinates] {
	return mem.NewTTLStore[domain_models.Coordinates](24*time.Hour, false)
}
