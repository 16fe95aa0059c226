// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Registry source selectors.
const (
	SourcePostgres = "postgres"
	SourceStatic   = "static"
)

// Report section selectors.
const (
	SectionsPRs = "prs"
	SectionsAll = "all"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	ListenAddr string `mapstructure:"LISTEN_ADDR"`

	GithubToken string `mapstructure:"GITHUB_TOKEN"`
	GithubOrg   string `mapstructure:"GITHUB_ORG"`

	RegistrySource string `mapstructure:"REGISTRY_SOURCE"`
	DBURL          string `mapstructure:"DB_URL"`

	// Static registry fixture for local and test runs.
	StaticRepo    string   `mapstructure:"STATIC_REPO"`
	StaticName    string   `mapstructure:"STATIC_NAME"`
	StaticWebhook string   `mapstructure:"STATIC_WEBHOOK"`
	StaticMembers []string `mapstructure:"STATIC_MEMBERS"`

	LookbackWeeks   int           `mapstructure:"LOOKBACK_WEEKS"`
	ExcludedLabels  []string      `mapstructure:"EXCLUDED_LABELS"`
	SearchResultCap int           `mapstructure:"SEARCH_RESULT_CAP"`
	ReportSections  string        `mapstructure:"REPORT_SECTIONS"`
	ReportInterval  time.Duration `mapstructure:"REPORT_INTERVAL"`
	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL"`
	HTTPTimeout     time.Duration `mapstructure:"HTTP_TIMEOUT"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LISTEN_ADDR", ":8080")
	viper.SetDefault("REGISTRY_SOURCE", SourcePostgres)
	viper.SetDefault("LOOKBACK_WEEKS", 4)
	viper.SetDefault("EXCLUDED_LABELS", []string{
		"feature-request", "enhancement", "bug", "pending-close-response-required",
	})
	viper.SetDefault("SEARCH_RESULT_CAP", 900)
	viper.SetDefault("REPORT_SECTIONS", SectionsPRs)
	viper.SetDefault("REPORT_INTERVAL", "24h")
	viper.SetDefault("REFRESH_INTERVAL", "24h")
	viper.SetDefault("HTTP_TIMEOUT", "30s")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.GithubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is a required configuration field")
	}
	if cfg.GithubOrg == "" {
		return nil, errors.New("GITHUB_ORG is a required configuration field")
	}
	switch cfg.RegistrySource {
	case SourcePostgres:
		if cfg.DBURL == "" {
			return nil, errors.New("DB_URL is required when REGISTRY_SOURCE is 'postgres'")
		}
	case SourceStatic:
		if cfg.StaticRepo == "" {
			return nil, errors.New("STATIC_REPO is required when REGISTRY_SOURCE is 'static'")
		}
	default:
		return nil, errors.New("REGISTRY_SOURCE must be one of 'postgres' or 'static'")
	}
	if cfg.ReportSections != SectionsPRs && cfg.ReportSections != SectionsAll {
		return nil, errors.New("REPORT_SECTIONS must be one of 'prs' or 'all'")
	}
	if cfg.LookbackWeeks <= 0 {
		return nil, errors.New("LOOKBACK_WEEKS must be a positive number of weeks")
	}
	if cfg.SearchResultCap <= 0 {
		return nil, errors.New("SEARCH_RESULT_CAP must be positive")
	}

	return &cfg, nil
}
