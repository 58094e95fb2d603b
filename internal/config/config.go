package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	ClassroomBaseURL       string
	ClassroomToken         string
	OpenAIAPIKey           string
	AIModel                string
	NATSURL                string
	EventSubjectPrefix     string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	AnalyticsCacheTTL      time.Duration
	ClassroomTimeout       time.Duration
	GradeRateLimitMax      int
	GradeRateLimitWindow   time.Duration
	CORSAllowOrigins       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GradeFlow API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("events.subject_prefix", "gradeflow")
	v.SetDefault("cloudinary.folder", "gradeflow/exports")
	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("classroom.timeout", "15s")
	v.SetDefault("rate_limit.grading_max", 30)
	v.SetDefault("rate_limit.grading_window", "1m")
	v.SetDefault("cors.allow_origins", "*")

	ttl, err := time.ParseDuration(v.GetString("analytics.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid analytics cache ttl: %w", err)
	}

	classroomTimeout, err := time.ParseDuration(v.GetString("classroom.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid classroom timeout: %w", err)
	}

	rateLimitWindow, err := time.ParseDuration(v.GetString("rate_limit.grading_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading rate limit window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		ClassroomBaseURL:       v.GetString("classroom.base_url"),
		ClassroomToken:         v.GetString("classroom.token"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		AIModel:                v.GetString("ai.model"),
		NATSURL:                v.GetString("nats.url"),
		EventSubjectPrefix:     v.GetString("events.subject_prefix"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		AnalyticsCacheTTL:      ttl,
		ClassroomTimeout:       classroomTimeout,
		GradeRateLimitMax:      v.GetInt("rate_limit.grading_max"),
		GradeRateLimitWindow:   rateLimitWindow,
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ClassroomBaseURL == "" {
		return Config{}, fmt.Errorf("classroom base url must be provided")
	}

	return cfg, nil
}
