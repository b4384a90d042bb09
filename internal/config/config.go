package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/config"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/routingapi"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "ROUTING"

// RoutingAPIConfig holds the hosted routing API settings.
type RoutingAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// MapConfig is what the demo page needs to draw the base map.
type MapConfig struct {
	StyleURL    string
	Center      geo.Coordinate
	Zoom        float64
	PublicToken string
}

// ServiceConfig holds all configuration for the routing service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	PlansEnabled bool
	DBConfig     config.DatabaseConfig
	KafkaConfig  config.KafkaConfig
	RoutingAPI   RoutingAPIConfig
	Debounce     time.Duration
	Map          MapConfig
}

// Load reads configuration from environment variables and the optional config file.
func Load() (*ServiceConfig, error) {
	v, err := config.Load(EnvPrefix)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper builds the service configuration from an already loaded viper instance.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	v.SetDefault("DB_NAME", "routing_db")
	v.SetDefault("PLANS_ENABLED", true)
	v.SetDefault("ROUTING_API_URL", routingapi.DefaultBaseURL)
	v.SetDefault("MAP_STYLE_URL", "mapbox://styles/mapbox/streets-v12")
	v.SetDefault("MAP_CENTER", "3.139,101.6869")
	v.SetDefault("MAP_ZOOM", 12)

	center, err := geo.ParseCoordinate(v.GetString("MAP_CENTER"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAP_CENTER: %w", err)
	}

	return &ServiceConfig{
		Port:         config.GetServicePort(v, "SERVICE_PORT", ":8006"),
		AppEnv:       config.GetAppEnv(v),
		PlansEnabled: v.GetBool("PLANS_ENABLED"),
		DBConfig:     config.LoadDatabaseConfig(v, "DB_NAME"),
		KafkaConfig:  config.LoadKafkaConfig(v),
		RoutingAPI: RoutingAPIConfig{
			BaseURL: v.GetString("ROUTING_API_URL"),
			Token:   v.GetString("ROUTING_API_TOKEN"),
			Timeout: config.GetDuration(v, "ROUTING_API_TIMEOUT", routingapi.DefaultTimeout),
		},
		Debounce: config.GetDuration(v, "DEBOUNCE", 300*time.Millisecond),
		Map: MapConfig{
			StyleURL:    v.GetString("MAP_STYLE_URL"),
			Center:      center,
			Zoom:        v.GetFloat64("MAP_ZOOM"),
			PublicToken: v.GetString("MAP_PUBLIC_TOKEN"),
		},
	}, nil
}
