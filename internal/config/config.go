// Package config loads application configuration and initializes logging.
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
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// EngineConfig is the immutable rule set handed to the validation engine.
// It is built once per run and never mutated by the engine.
type EngineConfig struct {
	Workers                 int               `yaml:"workers" mapstructure:"workers"`
	DisposableDomains       []string          `yaml:"disposable_domains" mapstructure:"disposable_domains"`
	RolePrefixes            []string          `yaml:"role_prefixes" mapstructure:"role_prefixes"`
	CompetitorDomains       []string          `yaml:"competitor_domains" mapstructure:"competitor_domains"`
	CompetitorNameFragments []string          `yaml:"competitor_name_fragments" mapstructure:"competitor_name_fragments"`
	SeverityOverrides       map[string]string `yaml:"severity_overrides" mapstructure:"severity_overrides"`
	ICP                     ICPConfig         `yaml:"icp" mapstructure:"icp"`
}

// ICPConfig defines the ideal-customer-profile used for scoring.
type ICPConfig struct {
	TitleKeywords    map[string]int `yaml:"title_keywords" mapstructure:"title_keywords"`
	IndustryKeywords map[string]int `yaml:"industry_keywords" mapstructure:"industry_keywords"`
	MinScore         int            `yaml:"min_score" mapstructure:"min_score"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the validation HTTP server.
type ServerConfig struct {
	Port          int      `yaml:"port" mapstructure:"port"`
	RatePerMinute int      `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	CORSOrigins   []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxBodyBytes  int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
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
	v.SetEnvPrefix("LEADCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadcheck.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_minute", 30)
	v.SetDefault("server.max_body_bytes", 32<<20)
	v.SetDefault("engine.workers", 0) // 0 = GOMAXPROCS
	v.SetDefault("engine.role_prefixes", []string{
		"info", "admin", "sales", "support", "contact", "hello",
		"noreply", "no-reply", "office", "team", "marketing", "billing",
	})
	v.SetDefault("engine.disposable_domains", []string{
		"mailinator.com", "guerrillamail.com", "10minutemail.com",
		"tempmail.org", "temp-mail.org", "throwawaymail.com",
		"yopmail.com", "sharklasers.com", "getnada.com", "trashmail.com",
	})
	v.SetDefault("engine.icp.min_score", 40)

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
