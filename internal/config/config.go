package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBSource      string `mapstructure:"DB_SOURCE"`
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`

	TypeformToken string `mapstructure:"TYPEFORM_TOKEN"`
	TypeformURL   string `mapstructure:"TYPEFORM_URL"`
	FormID        string `mapstructure:"FORM_ID"`

	GeoSnapshot string `mapstructure:"GEO_SNAPSHOT"`
	GeoTables   string `mapstructure:"GEO_TABLES"`

	EntryAnchor      string `mapstructure:"ENTRY_ANCHOR"`
	ContinueAnchor   string `mapstructure:"CONTINUE_ANCHOR"`
	StrictValidation bool   `mapstructure:"STRICT_VALIDATION"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"DB_SOURCE", "SERVER_ADDRESS",
	"TYPEFORM_TOKEN", "TYPEFORM_URL", "FORM_ID",
	"GEO_SNAPSHOT", "GEO_TABLES",
	"ENTRY_ANCHOR", "CONTINUE_ANCHOR", "STRICT_VALIDATION",
	"LOG_LEVEL", "LOG_FORMAT",
}

// LoadConfig reads configuration from app.env in path, overridden by the environment.
// A missing file is not an error.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TYPEFORM_URL", "https://api.typeform.com")
	v.SetDefault("GEO_SNAPSHOT", "fff-global-map.json")
	v.SetDefault("ENTRY_ANCHOR", "E9")
	v.SetDefault("CONTINUE_ANCHOR", "N1")
	v.SetDefault("STRICT_VALIDATION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about.
	for _, k := range keys {
		if err = v.BindEnv(k); err != nil {
			return config, fmt.Errorf("config: failed to bind %s: %w", k, err)
		}
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}
	config.LogLevel = strings.ToLower(config.LogLevel)
	config.LogFormat = strings.ToLower(config.LogFormat)
	return config, nil
}
