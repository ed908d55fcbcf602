package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Upstream  UpstreamConfig
	Cache     CacheConfig
	Views     ViewsConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CacheConfig struct {
	StaleTime            time.Duration
	CalculationStaleTime time.Duration
	GCTime               time.Duration
	Retries              int
	RetryDelay           time.Duration
	SweepInterval        time.Duration
}

type ViewsConfig struct {
	SearchDebounce time.Duration
	SessionTTL     time.Duration
}

// StorageConfig is optional: without a bucket, image previews are disabled.
type StorageConfig struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	DisableSSL bool
	PreviewTTL time.Duration
}

// TelemetryConfig turns on OTLP trace export when Enabled and Endpoint are
// both set.
type TelemetryConfig struct {
	Enabled        bool
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
}

func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads the environment, after an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		Env: getEnv("ENV", "production"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"*"}),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", ""),
			Timeout: getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			StaleTime:            getEnvDuration("CACHE_STALE_TIME", 5*time.Minute),
			CalculationStaleTime: getEnvDuration("CACHE_CALCULATION_STALE_TIME", 10*time.Minute),
			GCTime:               getEnvDuration("CACHE_GC_TIME", 10*time.Minute),
			Retries:              getEnvInt("CACHE_RETRIES", 3),
			RetryDelay:           getEnvDuration("CACHE_RETRY_DELAY", 200*time.Millisecond),
			SweepInterval:        getEnvDuration("CACHE_SWEEP_INTERVAL", time.Minute),
		},
		Views: ViewsConfig{
			SearchDebounce: getEnvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
			SessionTTL:     getEnvDuration("VIEW_SESSION_TTL", 30*time.Minute),
		},
		Storage: StorageConfig{
			Endpoint:   getEnv("S3_ENDPOINT", ""),
			Region:     getEnv("S3_REGION", "us-east-1"),
			AccessKey:  getEnv("S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("S3_SECRET_KEY", ""),
			Bucket:     getEnv("S3_BUCKET", ""),
			DisableSSL: getEnvBool("S3_DISABLE_SSL", false),
			PreviewTTL: getEnvDuration("S3_PREVIEW_TTL", 15*time.Minute),
		},
		Telemetry: TelemetryConfig{
			Enabled:        getEnvBool("ENABLE_TELEMETRY", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:       getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "metaladmin"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", ""),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
	}

	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := cast.ToIntE(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := cast.ToFloat64E(value); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid number, using default")
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := cast.ToBoolE(value); err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid boolean, using default")
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := cast.ToDurationE(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
