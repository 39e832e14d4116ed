package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grassmap/internal/models/domain_models"
)

func TestHaversineKm(t *testing.T) {
	tokyo := domain_models.Coordinates{Lat: 35.6762, Lng: 139.6503}
	osaka := domain_models.Coordinates{Lat: 34.6937, Lng: 135.5023}

	assert.InDelta(t, 396, HaversineKm(tokyo, osaka), 5)
	assert.InDelta(t, 0, HaversineKm(tokyo, tokyo), 1e-9)
	assert.InDelta(t, HaversineKm(tokyo, osaka), HaversineKm(osaka, tokyo), 1e-9)
}

func TestCenter(t *testing.T) {
	_, ok := Center(nil)
	assert.False(t, ok)

	c, ok := Center([]domain_models.Coordinates{{Lat: 1, Lng: 10}, {Lat: 3, Lng: 20}})
	assert.True(t, ok)
	assert.Equal(t, domain_models.Coordinates{Lat: 2, Lng: 15}, c)
}
