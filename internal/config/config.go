package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Keys    APIKeys
	Ai      AIConfig
	Tracker TrackerConfig
	Otel    TelemetryConfig
}

type AppConfig struct {
	Port                string
	Environment         string
	LogFilePath         string
	ChannelLogFilePath  string
	CorsAllowedOrigins  string
	ChannelTokenSecret  string
	PrimaryChannelNames []string
	NatsURL             string
	ActivityFeedEnabled bool
}

type StorageConfig struct {
	Driver     string // "memory", "sqlite", "redis" or "postgres"
	SQLitePath string
	RedisURL   string
	Connection string
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	Provider        string // "gemini", "ollama" or "none"
	GeminiModel     string
	OllamaBaseURL   string
	LLMModel        string
	ClassifyModel   string // per-call override of LLMModel for classification
	ClassifyTimeout time.Duration
}

type TrackerConfig struct {
	StatsPersistInterval time.Duration
	ReminderTimeout      time.Duration
	BreakInterval        time.Duration
	BreakDuration        time.Duration
}

// TelemetryConfig drives the OTLP trace exporter. Tracing is off unless Enabled.
type TelemetryConfig struct {
	Enabled        bool
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "logs/app.log"),
			ChannelLogFilePath:  getEnv("CHANNEL_LOG_FILE_PATH", "logs/channels.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			ChannelTokenSecret:  getEnv("CHANNEL_TOKEN_SECRET", ""),
			PrimaryChannelNames: getEnvAsList("PRIMARY_CHANNEL_NAMES", []string{"popup", "dashboard"}),
			NatsURL:             getEnv("NATS_URL", "nats://localhost:4222"),
			ActivityFeedEnabled: getEnvAsBool("ACTIVITY_FEED_ENABLED", false),
		},
		Storage: StorageConfig{
			Driver:     getEnv("BLOB_STORE_DRIVER", "sqlite"),
			SQLitePath: getEnv("SQLITE_PATH", "productivity-pal.db"),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			Provider:        getEnv("AI_PROVIDER", "gemini"),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMModel:        getEnv("LLM_MODEL", "llama3"),
			ClassifyModel:   getEnv("AI_CLASSIFY_MODEL", ""),
			ClassifyTimeout: getEnvAsDuration("AI_CLASSIFY_TIMEOUT", 15*time.Second),
		},
		Tracker: TrackerConfig{
			StatsPersistInterval: getEnvAsDuration("STATS_PERSIST_INTERVAL", time.Minute),
			ReminderTimeout:      getEnvAsDuration("REMINDER_TIMEOUT", time.Minute),
			BreakInterval:        time.Duration(getEnvAsPositiveInt("BREAK_INTERVAL_MINUTES", 60)) * time.Minute,
			BreakDuration:        time.Duration(getEnvAsPositiveInt("BREAK_DURATION_MINUTES", 5)) * time.Minute,
		},
		Otel: TelemetryConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "productivity-pal-backend"),
			ServiceVersion: getEnv("APP_VERSION", "dev"),
			SampleRatio:    getEnvAsRatio("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsPositiveInt falls back when the value is zero or negative.
func getEnvAsPositiveInt(key string, fallback int) int {
	if value := getEnvAsInt(key, fallback); value > 0 {
		return value
	}
	return fallback
}

// getEnvAsRatio accepts a float in [0, 1].
func getEnvAsRatio(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil && value >= 0 && value <= 1 {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("90s", "2m").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
