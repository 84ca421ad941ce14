package bootstrap

import (
	"os"
	"strconv"
	"time"

	"github.com/eleven-am/live-console/internal/gateway"
	"github.com/eleven-am/live-console/internal/genailive"
)

const defaultLiveModel = "gemini-2.0-flash-live-001"

type Config struct {
	ServerAddr string
	GRPCAddr   string

	LogLevel  string
	LogSource bool

	LiveAPIKey     string
	LiveBackend    string
	LiveProject    string
	LiveLocation   string
	LiveAPIVersion string
	LiveBaseURL    string
	LiveModel      string
	LiveConfigFile string

	MaxSessions    int
	LogCapacity    int
	HealthInterval time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StaticDir string
	IndexHTML string
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		GRPCAddr:   getEnv("GRPC_ADDR", ":50051"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogSource: getEnvBool("LOG_SOURCE", false),

		LiveAPIKey:     getEnv("LIVE_API_KEY", os.Getenv("GEMINI_API_KEY")),
		LiveBackend:    getEnv("LIVE_BACKEND", "gemini"),
		LiveProject:    getEnv("LIVE_PROJECT", ""),
		LiveLocation:   getEnv("LIVE_LOCATION", ""),
		LiveAPIVersion: getEnv("LIVE_API_VERSION", ""),
		LiveBaseURL:    getEnv("LIVE_BASE_URL", ""),
		LiveModel:      getEnv("LIVE_MODEL", defaultLiveModel),
		LiveConfigFile: getEnv("LIVE_CONFIG_FILE", ""),

		MaxSessions:    getEnvInt("MAX_SESSIONS", 100),
		LogCapacity:    getEnvInt("LOG_CAPACITY", 1000),
		HealthInterval: time.Duration(getEnvInt("HEALTH_INTERVAL_SECONDS", 15)) * time.Second,

		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StaticDir: getEnv("STATIC_DIR", "./static"),
		IndexHTML: getEnv("INDEX_HTML", "./static/index.html"),
	}
}

func (c *Config) LiveConfigured() bool {
	if c.LiveBackend == genailive.BackendVertex {
		return c.LiveProject != "" && c.LiveLocation != ""
	}
	return c.LiveAPIKey != ""
}

func (c *Config) RateLimiter() gateway.RateLimiterConfig {
	cfg := gateway.DefaultRateLimiterConfig()
	if c.RateLimitRPS > 0 {
		cfg.RequestsPerSecond = float64(c.RateLimitRPS)
	}
	if c.RateLimitBurst > 0 {
		cfg.Burst = c.RateLimitBurst
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
