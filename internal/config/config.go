package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Stage    StageConfig    `yaml:"stage" mapstructure:"stage"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the warehouse backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PipelineConfig configures the cleaning run.
type PipelineConfig struct {
	// AsOf pins the reference date for tenure calculations (YYYY-MM-DD).
	// Empty means the UTC date at run start.
	AsOf          string   `yaml:"as_of" mapstructure:"as_of"`
	Datasets      []string `yaml:"datasets" mapstructure:"datasets"`
	NullRatioWarn float64  `yaml:"null_ratio_warn" mapstructure:"null_ratio_warn"`
}

// StageConfig configures the staging file loader.
type StageConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. path names an explicit
// config file, which must exist; when empty, an optional config.yaml in the
// working directory is used.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("MARKETING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "marketing.db")
	v.SetDefault("pipeline.as_of", "")
	v.SetDefault("pipeline.datasets", []string{})
	v.SetDefault("pipeline.null_ratio_warn", 0.5)
	v.SetDefault("stage.dir", "data")
	v.SetDefault("stage.delimiter", ",")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values viper cannot type-check on its own.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q (valid: sqlite, postgres)", c.Store.Driver)
	}
	if c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required")
	}
	if _, err := c.Pipeline.AsOfDate(time.Time{}); err != nil {
		return err
	}
	if n := len([]rune(c.Stage.Delimiter)); n != 1 {
		return eris.Errorf("config: stage.delimiter must be a single character, got %q", c.Stage.Delimiter)
	}
	return nil
}

// AsOfDate returns the configured as-of date, or the calendar date of now
// (UTC) when none is configured.
func (p PipelineConfig) AsOfDate(now time.Time) (time.Time, error) {
	if p.AsOf == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.DateOnly, p.AsOf)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "config: parse pipeline.as_of %q", p.AsOf)
	}
	return t, nil
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
