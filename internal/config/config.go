package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the client settings, read from the environment. Cobra flags
// override individual fields after Load.
type Config struct {
	ServerURL string `env:"GEOSTREAK_SERVER_URL" envDefault:"wss://play.geostreak.app/ws"`
	Language  string `env:"GEOSTREAK_LANGUAGE" envDefault:"en"`
	DBPath    string `env:"GEOSTREAK_DB"`
	UpdateURL string `env:"GEOSTREAK_UPDATE_URL" envDefault:"https://github.com"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
