// Package config loads the service configuration once at startup. The
// resulting struct is passed by reference everywhere; nothing mutates it
// after provisioning fills in the resolved identifiers.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"autocare-api"`
	Port        string `env:"PORT" envDefault:"5555"`

	AWSRegion     string `env:"AWS_REGION" envDefault:"us-east-1"`
	BucketName    string `env:"S3_BUCKET" envDefault:"autocare-images1"`
	TableName     string `env:"APPOINTMENTS_TABLE" envDefault:"Appointments"`
	UserPoolName  string `env:"COGNITO_USER_POOL" envDefault:"AutoCareUserPool"`
	AppClientName string `env:"COGNITO_APP_CLIENT" envDefault:"car-app-client"`

	UploadURLTTL     time.Duration `env:"UPLOAD_URL_TTL" envDefault:"1h"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	BodyLimitBytes   int64         `env:"REQUEST_BODY_LIMIT_BYTES" envDefault:"1048576"`
	StrictValidation bool          `env:"STRICT_VALIDATION" envDefault:"true"`

	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`

	KafkaBrokers string `env:"KAFKA_BROKERS"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	OTELEnabled      bool    `env:"OTEL_ENABLED" envDefault:"true"`
	OTELOTLPEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"jaeger:4317"`
	OTELSampleRatio  float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1"`

	// Filled in by the provisioning bootstrap, not the environment.
	UserPoolID  string `env:"-"`
	AppClientID string `env:"-"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 60
	}
	if cfg.BodyLimitBytes <= 0 {
		cfg.BodyLimitBytes = 1 << 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &cfg, nil
}
