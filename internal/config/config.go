package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" env-default:":8080"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`

	// Remote back-office REST API.
	APIBaseURL string        `env:"API_BASE_URL" env-required:"true"`
	APIVersion string        `env:"API_VERSION" env-default:"v1"`
	APITimeout time.Duration `env:"API_TIMEOUT" env-default:"0"`

	// Session cookie signing.
	SessionSecret string        `env:"SESSION_SECRET" env-required:"true"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" env-default:"336h"`

	// Local bootstrap admin, used when the remote auth host is down.
	// BootstrapPassHash is a bcrypt hash; empty disables the fallback.
	BootstrapUser     string `env:"BOOTSTRAP_USER" env-default:""`
	BootstrapPassHash string `env:"BOOTSTRAP_PASS_HASH" env-default:""`

	RedisAddr string `env:"REDIS_ADDR" env-default:""`
	NATSURL   string `env:"NATS_URL" env-default:""`

	S3Region   string `env:"S3_REGION" env-default:"us-east-1"`
	S3Bucket   string `env:"S3_BUCKET" env-default:""`
	S3Endpoint string `env:"S3_ENDPOINT" env-default:""`

	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:""`

	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"*"`

	// Live-filter behavior, shared by every filter bar.
	FilterDebounce time.Duration `env:"FILTER_DEBOUNCE" env-default:"400ms"`
	FilterMinChars int           `env:"FILTER_MIN_CHARS" env-default:"3"`

	// Read retries against the remote API; mutations never retry.
	ReadRetries int `env:"READ_RETRIES" env-default:"2"`
}

func Load() (*Config, error) {
	var cfg Config

	// ReadEnv only; the deployment injects everything through the
	// environment.
	err := cleanenv.ReadEnv(&cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return &cfg, nil
}
