package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Everything has a sensible default; a .env file or plain env vars override.
type Config struct {
	Port       string
	FFmpegPath string
	WebAppDir  string // Path to the web application's UI files

	// Search provider (YouTube Data API)
	YouTubeAPIKey    string
	YouTubeSearchURL string
	SearchLimit      int

	// Conversion pipeline
	StreamBufferMB    int // resolver-side prefetch watermark, in megabytes
	CoverFetchTimeout time.Duration
	CoverCacheTTL     time.Duration

	// Rate limiting on /api/
	RateLimitPerMin int

	// Redis (optional; empty RedisHost disables it)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		Port:       getEnv("PORT", "3000"),
		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
		WebAppDir:  getEnv("WEB_APP_DIR", filepath.Join("web", "ui")),

		YouTubeAPIKey:    os.Getenv("YOUTUBE_API_KEY"),
		YouTubeSearchURL: getEnv("YOUTUBE_SEARCH_URL", "https://www.googleapis.com/youtube/v3/search"),
		SearchLimit:      getEnvInt("SEARCH_LIMIT", 24),

		StreamBufferMB:    getEnvInt("STREAM_BUFFER_MB", 32),
		CoverFetchTimeout: time.Duration(getEnvInt("COVER_FETCH_TIMEOUT_SEC", 10)) * time.Second,
		CoverCacheTTL:     time.Duration(getEnvInt("COVER_CACHE_TTL_MIN", 60)) * time.Minute,

		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 60),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
	}
}
