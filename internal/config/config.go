package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ktz03/tab-game/internal/logger"
)

type Config struct {
	AppPort  string
	LogLevel string
	LogJSON  bool

	JWTSecret  string
	BcryptCost int

	// Persistence: file | postgres | redis
	StoreBackend  string
	DataDir       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigin string

	APIRateLimit  int
	APIRateWindow time.Duration

	SubscriberBuffer int
	WaitTimeout      time.Duration
	CleanupInterval  time.Duration
	BotDelay         time.Duration
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	cfg := &Config{
		AppPort:          getEnv("APP_PORT", "8008"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogJSON:          os.Getenv("LOG_JSON") == "true",
		JWTSecret:        jwtSecret,
		BcryptCost:       getInt("BCRYPT_COST", 10),
		StoreBackend:     getEnv("STORE_BACKEND", "file"),
		DataDir:          getEnv("DATA_DIR", "data"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getInt("REDIS_DB", 0),
		AllowedOrigin:    os.Getenv("ALLOWED_ORIGIN"),
		APIRateLimit:     getInt("API_RATE_LIMIT", 120),
		APIRateWindow:    time.Duration(getInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		SubscriberBuffer: getInt("SUBSCRIBER_BUFFER", 64),
		WaitTimeout:      time.Duration(getInt("WAIT_TIMEOUT_SECONDS", 3600)) * time.Second,
		CleanupInterval:  time.Duration(getInt("CLEANUP_INTERVAL_SECONDS", 600)) * time.Second,
		BotDelay:         time.Duration(getInt("BOT_DELAY_MS", 500)) * time.Millisecond,
	}

	switch cfg.StoreBackend {
	case "file":
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Fatal("DATABASE_URL is not set", "store", cfg.StoreBackend)
		}
	case "redis":
		if cfg.RedisAddr == "" {
			logger.Fatal("REDIS_ADDR is not set", "store", cfg.StoreBackend)
		}
	default:
		logger.Fatal("unknown STORE_BACKEND", "store", cfg.StoreBackend)
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getInt keeps def for unset, malformed or negative values.
func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
