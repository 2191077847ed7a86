package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"imgchop"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug" validate:"oneof=debug info warn error"`

	// TraceExporter selects where spans go: stdout, otlp (also ships logs) or none.
	TraceExporter string `env:"TRACE_EXPORTER" envDefault:"stdout" validate:"oneof=stdout otlp none"`

	BodyLimitMB int `env:"BODY_LIMIT_MB" envDefault:"32" validate:"gt=0"`

	RateLimitMaxRequests   int `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100" validate:"gte=0"`
	RateLimitDurationInSec int `env:"RATE_LIMIT_DURATION_IN_SEC" envDefault:"5" validate:"gte=0"`

	MaxUpscaleWidth int `env:"MAX_UPSCALE_WIDTH" envDefault:"4096" validate:"gt=0"`

	SwaggerFile string `env:"SWAGGER_FILE" envDefault:"./docs/swagger.json"`

	S3Region    string `env:"S3_REGION"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY" validate:"required_with=S3Bucket"`
	S3SecretKey string `env:"S3_SECRET_KEY" validate:"required_with=S3Bucket"`
	S3Endpoint  string `env:"S3_ENDPOINT" validate:"required_with=S3Bucket"`
}

func (c *Config) RateLimitDuration() time.Duration {
	return time.Duration(c.RateLimitDurationInSec) * time.Second
}

func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitMaxRequests > 0 && c.RateLimitDurationInSec > 0
}

func (c *Config) BodyLimit() int {
	return c.BodyLimitMB << 20
}

// StorageEnabled reports whether stored images can be served from a bucket.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(conf); err != nil {
		return nil, err
	}

	return conf, nil
}

func New() *Config {
	conf, err := Load()
	if err != nil {
		slog.Error(err.Error())

		panic("Failed to parse config")
	}

	return conf
}
