// Package config loads application configuration from file and
// environment and owns global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Import  ImportConfig  `yaml:"import" mapstructure:"import"`
	Quality QualityConfig `yaml:"quality" mapstructure:"quality"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ImportConfig configures batch import behavior.
type ImportConfig struct {
	MaxBatchRows     int     `yaml:"max_batch_rows" mapstructure:"max_batch_rows"`
	MinYear          int     `yaml:"min_year" mapstructure:"min_year"`
	MaxYearOffset    int     `yaml:"max_year_offset" mapstructure:"max_year_offset"`
	Concurrency      int     `yaml:"concurrency" mapstructure:"concurrency"`
	WriteTimeoutSecs int     `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	WritesPerSec     float64 `yaml:"writes_per_sec" mapstructure:"writes_per_sec"`
}

// QualityConfig configures the pedigree scoring engine.
type QualityConfig struct {
	// WeightsFile optionally points at a YAML weighting scheme that
	// overrides the built-in pedigree weights.
	WeightsFile string `yaml:"weights_file" mapstructure:"weights_file"`
}

// ExportConfig configures tabular export.
type ExportConfig struct {
	Locale    string `yaml:"locale" mapstructure:"locale"`
	Precision int    `yaml:"precision" mapstructure:"precision"`
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
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "factors.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("import.max_batch_rows", 1000)
	v.SetDefault("import.min_year", 1990)
	v.SetDefault("import.max_year_offset", 6)
	v.SetDefault("import.concurrency", 4)
	v.SetDefault("import.write_timeout_secs", 10)
	v.SetDefault("import.writes_per_sec", 0) // 0 = unlimited
	v.SetDefault("export.locale", "en")
	v.SetDefault("export.precision", 4)
	v.SetDefault("server.port", 8080)
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

	return &cfg, nil
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
