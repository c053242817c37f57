// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/magic-city-guide/poi-cli/internal/classify"
	"github.com/magic-city-guide/poi-cli/internal/fetch"
	"github.com/magic-city-guide/poi-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig           `yaml:"store" mapstructure:"store"`
	Fetch    FetchConfig           `yaml:"fetch" mapstructure:"fetch"`
	Overpass fetch.OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Places   fetch.PlacesConfig    `yaml:"places" mapstructure:"places"`
	Geocode  fetch.NominatimConfig `yaml:"geocode" mapstructure:"geocode"`
	Reddit   fetch.RedditConfig    `yaml:"reddit" mapstructure:"reddit"`
	Classify ClassifyConfig        `yaml:"classify" mapstructure:"classify"`
	Data     DataConfig            `yaml:"data" mapstructure:"data"`
	Server   ServerConfig          `yaml:"server" mapstructure:"server"`
	Log      LogConfig             `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// FetchConfig configures the shared HTTP client.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ClientOptions converts the section to fetch client options with the
// default per-host rate limiters.
func (c FetchConfig) ClientOptions() fetch.Options {
	return fetch.Options{
		UserAgent:    c.UserAgent,
		Timeout:      time.Duration(c.TimeoutSecs) * time.Second,
		MaxRetries:   c.MaxRetries,
		RateLimiters: fetch.DefaultRateLimiters(),
	}
}

// ClassifyConfig configures cuisine and category labeling.
type ClassifyConfig struct {
	CuisineThreshold  float64 `yaml:"cuisine_threshold" mapstructure:"cuisine_threshold"`
	CategoryThreshold float64 `yaml:"category_threshold" mapstructure:"category_threshold"`
	SubstringBoost    float64 `yaml:"substring_boost" mapstructure:"substring_boost"`
	// TablesPath optionally overrides the built-in keyword tables with a
	// YAML file.
	TablesPath string `yaml:"tables_path" mapstructure:"tables_path"`
}

// Classifier builds a classifier from the section, loading keyword table
// overrides when configured.
func (c ClassifyConfig) Classifier() (*classify.Classifier, error) {
	var opts []classify.Option
	if c.CuisineThreshold > 0 {
		opts = append(opts, classify.WithCuisineThreshold(c.CuisineThreshold))
	}
	if c.CategoryThreshold > 0 {
		opts = append(opts, classify.WithCategoryThreshold(c.CategoryThreshold))
	}
	if c.SubstringBoost > 0 {
		opts = append(opts, classify.WithSubstringBoost(c.SubstringBoost))
	}
	if c.TablesPath != "" {
		tables, err := classify.LoadTables(c.TablesPath)
		if err != nil {
			return nil, err
		}
		return classify.New(tables, opts...), nil
	}
	return classify.New(classify.DefaultTables(), opts...), nil
}

// DataConfig locates the CSV datasets on disk.
type DataConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("poi-cli")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "poi.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("data.dir", "data")
	v.SetDefault("fetch.user_agent", "poi-cli/1.0 (magic-city-guide)")
	v.SetDefault("fetch.timeout_secs", 180)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.city", "Birmingham")
	// The wide box covers greater Birmingham; the strict box is the city
	// limits used to filter untagged points.
	v.SetDefault("overpass.query_box.south", 33.35)
	v.SetDefault("overpass.query_box.west", -87.05)
	v.SetDefault("overpass.query_box.north", 33.70)
	v.SetDefault("overpass.query_box.east", -86.55)
	v.SetDefault("overpass.strict_box.south", 33.42)
	v.SetDefault("overpass.strict_box.west", -86.95)
	v.SetDefault("overpass.strict_box.north", 33.62)
	v.SetDefault("overpass.strict_box.east", -86.65)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.detail_workers", 4)
	v.SetDefault("geocode.url", "https://nominatim.openstreetmap.org/reverse")
	v.SetDefault("reddit.base_url", "https://www.reddit.com")
	v.SetDefault("reddit.subreddit", "Birmingham")
	v.SetDefault("classify.cuisine_threshold", classify.DefaultCuisineThreshold)
	v.SetDefault("classify.category_threshold", classify.DefaultCategoryThreshold)
	v.SetDefault("classify.substring_boost", classify.SubstringBoost)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration needed for a command mode. Shared
// invariants are checked for every mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Classify.CuisineThreshold < 0 || c.Classify.CuisineThreshold > 1 {
		problems = append(problems, "classify.cuisine_threshold must be between 0 and 1")
	}
	if c.Classify.CategoryThreshold < 0 || c.Classify.CategoryThreshold > 1 {
		problems = append(problems, "classify.category_threshold must be between 0 and 1")
	}

	switch mode {
	case "fetch":
		if c.Overpass.City == "" {
			problems = append(problems, "overpass.city is required")
		}
	case "places":
		if c.Places.Key == "" {
			problems = append(problems, "places.key is required")
		}
	case "store":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "reddit":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "clean", "classify", "geocode", "sheet":
		if c.Data.Dir == "" {
			problems = append(problems, "data.dir is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
