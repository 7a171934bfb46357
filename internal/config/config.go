package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                   string   `mapstructure:"PORT"`
	Env                    string   `mapstructure:"ENV"`
	LogLevel               string   `mapstructure:"LOG_LEVEL"`
	DatasetPath            string   `mapstructure:"DATASET_PATH"`
	GroqAPIKey             string   `mapstructure:"GROQ_API_KEY"`
	GroqBaseURL            string   `mapstructure:"GROQ_BASE_URL"`
	GroqModel              string   `mapstructure:"GROQ_MODEL"`
	GroqTemperature        float64  `mapstructure:"GROQ_TEMPERATURE"`
	RequestTimeoutSeconds  int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	NarrativeRatePerMinute int      `mapstructure:"NARRATIVE_RATE_LIMIT_PER_MINUTE"`
	CORSOrigins            []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("GROQ_MODEL", "mixtral-8x7b-32768")
	v.SetDefault("GROQ_TEMPERATURE", 0.2)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("NARRATIVE_RATE_LIMIT_PER_MINUTE", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("DATASET_PATH")
	v.BindEnv("GROQ_API_KEY")
	v.BindEnv("GROQ_BASE_URL")
	v.BindEnv("GROQ_MODEL")
	v.BindEnv("GROQ_TEMPERATURE")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")
	v.BindEnv("NARRATIVE_RATE_LIMIT_PER_MINUTE")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration can run at all. GROQ_API_KEY is
// deliberately not required: without it the narrative feature is disabled
// while the metrics surface keeps working.
func (c *Config) Validate() error {
	if c.DatasetPath == "" {
		return fmt.Errorf("DATASET_PATH is required")
	}
	if c.GroqTemperature < 0 || c.GroqTemperature > 2 {
		return fmt.Errorf("GROQ_TEMPERATURE must be between 0 and 2, got %v", c.GroqTemperature)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.NarrativeRatePerMinute <= 0 {
		return fmt.Errorf("NARRATIVE_RATE_LIMIT_PER_MINUTE must be positive, got %d", c.NarrativeRatePerMinute)
	}
	return nil
}
