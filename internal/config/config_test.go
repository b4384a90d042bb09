package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8006", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.PlansEnabled)
	assert.Equal(t, "routing_db", cfg.DBConfig.DBName)
	assert.Empty(t, cfg.KafkaConfig.Brokers)
	assert.False(t, cfg.KafkaConfig.Enabled())
	assert.Equal(t, "https://api.mapbox.com", cfg.RoutingAPI.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.RoutingAPI.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce)
	assert.Equal(t, geo.Coordinate{Lat: 3.139, Lng: 101.6869}, cfg.Map.Center)
	assert.Equal(t, 12.0, cfg.Map.Zoom)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ROUTING_SERVICE_PORT", "9000")
	t.Setenv("ROUTING_APP_ENV", "production")
	t.Setenv("ROUTING_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ROUTING_ROUTING_API_TOKEN", "pk.abc")
	t.Setenv("ROUTING_ROUTING_API_TIMEOUT", "3s")
	t.Setenv("ROUTING_DEBOUNCE", "0s")
	t.Setenv("ROUTING_MAP_CENTER", "1.3521,103.8198")
	t.Setenv("ROUTING_PLANS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.False(t, cfg.PlansEnabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, "pk.abc", cfg.RoutingAPI.Token)
	assert.Equal(t, 3*time.Second, cfg.RoutingAPI.Timeout)
	assert.Zero(t, cfg.Debounce)
	assert.Equal(t, geo.Coordinate{Lat: 1.3521, Lng: 103.8198}, cfg.Map.Center)
}

func TestLoad_InvalidMapCenter(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ROUTING_MAP_CENTER", "north")

	_, err := Load()
	assert.ErrorContains(t, err, "MAP_CENTER")
}
