package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Default values applied to any field left unset
const (
	DefaultStreamThreshold = 1000
	DefaultEnginePath      = "saga_cmd"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultAPIHost         = "localhost"
	DefaultAPIPort         = 8080
)

// LogConfig controls logger output
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig controls the optional REST surface
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Config is the full run configuration. It is immutable once a run starts:
// the pipeline copies what it needs before executing.
type Config struct {
	DEMPath         string    `mapstructure:"dem_path"`
	PourPointsPath  string    `mapstructure:"pour_points_path"`
	OutputDir       string    `mapstructure:"output_dir"`
	StreamThreshold float64   `mapstructure:"stream_threshold"`
	EnginePath      string    `mapstructure:"engine_path"`
	Log             LogConfig `mapstructure:"log"`
	API             APIConfig `mapstructure:"api"`
}

// ApplyDefaults fills in defaults for any unset field
func (c *Config) ApplyDefaults() {
	if c.StreamThreshold == 0 {
		c.StreamThreshold = DefaultStreamThreshold
	}
	if c.EnginePath == "" {
		c.EnginePath = DefaultEnginePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.API.Host == "" {
		c.API.Host = DefaultAPIHost
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultAPIPort
	}
}

// ValidateRun checks that the fields a pipeline run requires are present.
// The stream threshold is deliberately not range checked; it is a free
// numeric parameter.
func (c *Config) ValidateRun() error {
	var missing []string
	if c.DEMPath == "" {
		missing = append(missing, "dem_path")
	}
	if c.PourPointsPath == "" {
		missing = append(missing, "pour_points_path")
	}
	if c.OutputDir == "" {
		missing = append(missing, "output_dir")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Load reads configuration from an optional JSON file, layered under
// WATERSHED_* environment variables. A .env file in the working directory is
// honored when present.
func Load(path string) (*Config, error) {
	// Missing .env files are fine; only explicit config files are required
	// to exist.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WATERSHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Registering defaults also registers the keys, which is what lets
	// AutomaticEnv pick up env-only overrides during Unmarshal.
	v.SetDefault("dem_path", "")
	v.SetDefault("pour_points_path", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("stream_threshold", float64(DefaultStreamThreshold))
	v.SetDefault("engine_path", DefaultEnginePath)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.host", DefaultAPIHost)
	v.SetDefault("api.port", DefaultAPIPort)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.ApplyDefaults()
	return cfg, nil
}
