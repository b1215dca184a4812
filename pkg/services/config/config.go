package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// ServerConfig holds web server settings.
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
	MaxUploadBytes         int64  `mapstructure:"max_upload_bytes"`
	SessionTTLMinutes      int    `mapstructure:"session_ttl_minutes"`
}

// AnalysisConfig holds defaults for analysis parameters.
type AnalysisConfig struct {
	Confidence float64 `mapstructure:"confidence"`
	ClassWidth float64 `mapstructure:"class_width"`
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig          `mapstructure:"server"`
	Analysis AnalysisConfig        `mapstructure:"analysis"`
	Volume   domain.VolumeEquation `mapstructure:"volume"`
}

// Load reads configuration from the given file (optional, YAML) with
// environment variable overrides under the FOREST_ATLAS prefix. Every
// setting has a default, so a missing file yields a usable config.
func Load(path string) (*Config, error) {
	v := viper.New()

	eq := domain.DefaultVolumeEquation()
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.max_upload_bytes", int64(50*1024*1024))
	v.SetDefault("server.session_ttl_minutes", 60)
	v.SetDefault("analysis.confidence", 0.95)
	v.SetDefault("analysis.class_width", 2.0)
	v.SetDefault("volume.cuft_b1", eq.CuftB1)
	v.SetDefault("volume.bdft_b1", eq.BdftB1)
	v.SetDefault("volume.bdft_b2", eq.BdftB2)
	v.SetDefault("volume.bdft_min_dbh", eq.BdftMinDBH)

	v.SetEnvPrefix("FOREST_ATLAS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// ShutdownTimeout returns the graceful shutdown deadline as a duration.
func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// SessionTTL returns the session store eviction window as a duration.
func (c *ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Addr returns the host:port pair the server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
