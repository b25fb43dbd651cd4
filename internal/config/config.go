// Package config loads application configuration from file and environment
// and owns global logger initialization.
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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Advisor    AdvisorConfig    `yaml:"advisor" mapstructure:"advisor"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Analytics  AnalyticsConfig  `yaml:"analytics" mapstructure:"analytics"`
}

// StoreConfig configures the record source backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite, postgres, salesforce, fixture
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	FixturePath string `yaml:"fixture_path" mapstructure:"fixture_path"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID  string  `yaml:"client_id" mapstructure:"client_id"`
	Username  string  `yaml:"username" mapstructure:"username"`
	KeyPath   string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL  string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // API calls per second
}

// AdvisorConfig holds settings for the optional narrative advisor.
// Every report is complete without it; an empty key disables it entirely.
type AdvisorConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the report API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AnalyticsConfig holds the engine's tunable windows, thresholds, and list
// caps. Defaults live in analytics.DefaultConfig.
type AnalyticsConfig struct {
	RecentCommDays     int `yaml:"recent_comm_days" mapstructure:"recent_comm_days"`
	StalledDealDays    int `yaml:"stalled_deal_days" mapstructure:"stalled_deal_days"`
	StaleDealDays      int `yaml:"stale_deal_days" mapstructure:"stale_deal_days"`
	ForecastMonths     int `yaml:"forecast_months" mapstructure:"forecast_months"`
	MaxThemes          int `yaml:"max_themes" mapstructure:"max_themes"`
	MaxIndicators      int `yaml:"max_indicators" mapstructure:"max_indicators"`
	MaxRecommendations int `yaml:"max_recommendations" mapstructure:"max_recommendations"`
	MaxBottlenecks     int `yaml:"max_bottlenecks" mapstructure:"max_bottlenecks"`

	// Per-analyzer stage exclusion sets. These differ on purpose: the
	// pipeline and forecast views keep Closed Won, deal prediction skips
	// both closed states.
	PipelineExcludedStages []string `yaml:"pipeline_excluded_stages" mapstructure:"pipeline_excluded_stages"`
	ForecastExcludedStages []string `yaml:"forecast_excluded_stages" mapstructure:"forecast_excluded_stages"`
	PredictExcludedStages  []string `yaml:"predict_excluded_stages" mapstructure:"predict_excluded_stages"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "sales-analytics.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rate_limit", 5)
	v.SetDefault("advisor.model", "claude-haiku-4-5-20251001")
	v.SetDefault("advisor.max_tokens", 1024)
	v.SetDefault("analytics.recent_comm_days", 30)
	v.SetDefault("analytics.stalled_deal_days", 45)
	v.SetDefault("analytics.stale_deal_days", 60)
	v.SetDefault("analytics.forecast_months", 3)
	v.SetDefault("analytics.max_themes", 5)
	v.SetDefault("analytics.max_indicators", 3)
	v.SetDefault("analytics.max_recommendations", 5)
	v.SetDefault("analytics.max_bottlenecks", 3)
	v.SetDefault("analytics.pipeline_excluded_stages", []string{"Closed Lost"})
	v.SetDefault("analytics.forecast_excluded_stages", []string{"Closed Lost"})
	v.SetDefault("analytics.predict_excluded_stages", []string{"Closed Won", "Closed Lost"})

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
