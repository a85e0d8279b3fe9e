package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StateDriverBolt  = "bolt"
	StateDriverRedis = "redis"
)

// Config aggregates all runtime settings required by the storefront client.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Backend     BackendConfig
	State       StateConfig
	Redis       RedisConfig
	JWT         JWTConfig
	OTP         OTPConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

// HTTPConfig controls the local API the UI talks to.
type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	EnableMetrics bool
}

// BackendConfig locates the identity and catalog services.
type BackendConfig struct {
	BaseURL    string
	UserPrefix string
	Timeout    time.Duration
	RateLimit  float64
	RateBurst  int
}

type StateConfig struct {
	Driver string
	Path   string
	Bucket string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	Prefix   string
}

// JWTConfig enables signature verification when Secret is set. Without a
// secret, tokens are decoded without verification and only expiry is checked.
type JWTConfig struct {
	Secret string
}

type OTPConfig struct {
	TTL time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults suitable for a local install.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "storefront"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "127.0.0.1"),
			Port:          getString("SERVER_PORT", "8090"),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", false),
		},
		Backend: BackendConfig{
			BaseURL:    strings.TrimRight(getString("BACKEND_BASE_URL", "http://localhost:8080"), "/"),
			UserPrefix: getString("BACKEND_USER_PREFIX", "/user"),
			Timeout:    getDuration("BACKEND_TIMEOUT", 5*time.Second),
			RateLimit:  getFloat("BACKEND_RATE_LIMIT_RPS", 10),
			RateBurst:  getInt("BACKEND_RATE_BURST", 5),
		},
		State: StateConfig{
			Driver: strings.ToLower(getString("STATE_DRIVER", StateDriverBolt)),
			Path:   getString("STATE_PATH", "./data/storefront.db"),
			Bucket: getString("STATE_BUCKET", "storefront"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			Prefix:   getString("REDIS_PREFIX", "storefront:"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		OTP: OTPConfig{
			TTL: getDuration("OTP_TTL", 120*time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.State.Driver {
	case StateDriverBolt, StateDriverRedis:
	default:
		return fmt.Errorf("config: unsupported STATE_DRIVER %q", c.State.Driver)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("config: BACKEND_BASE_URL is required")
	}
	if c.OTP.TTL <= 0 {
		return fmt.Errorf("config: OTP_TTL must be positive")
	}
	return nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the listen address of the local API.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

// UserURL returns the absolute URL of an identity endpoint living under the user prefix.
func (b BackendConfig) UserURL(path string) string {
	prefix := strings.Trim(b.UserPrefix, "/")
	if prefix == "" {
		return b.RootURL(path)
	}
	return b.RootURL(prefix + "/" + strings.TrimLeft(path, "/"))
}

// RootURL returns the absolute URL of an endpoint at the service root.
func (b BackendConfig) RootURL(path string) string {
	return strings.TrimRight(b.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
