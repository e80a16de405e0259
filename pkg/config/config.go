package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Gmail transport
	GoogleClientID     string
	GoogleClientSecret string
	GmailRefreshToken  string
	EmailFetchLimit    int

	// PDF converter service
	ConverterURL string

	// AI providers
	AIProvider    string
	GeminiAPIKey  string
	OllamaBaseURL string
	OllamaModel   string

	// Classification keyword lists (data, not algorithm)
	PreAlertKeywords []string
	DraftKeywords    []string

	// Extraction tuning
	CriticalFields     []string
	MinCharsPerPage    int
	ExtractConcurrency int
	FallbackTimeout    time.Duration

	// Job registry retention
	JobRetention int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	fallbackTimeout := 60 * time.Second
	if v := os.Getenv("EXTRACTION_FALLBACK_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			fallbackTimeout = parsed
		}
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=ladinglens port=5432 sslmode=disable"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GmailRefreshToken:  getEnv("GMAIL_REFRESH_TOKEN", ""),
		EmailFetchLimit:    getEnvInt("EMAIL_FETCH_LIMIT", 10),

		ConverterURL: getEnv("CONVERTER_URL", "http://localhost:8070"),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		PreAlertKeywords: getEnvList("CLASSIFY_PRE_ALERT_KEYWORDS", nil),
		DraftKeywords:    getEnvList("CLASSIFY_DRAFT_KEYWORDS", nil),

		CriticalFields:     getEnvList("EXTRACTION_CRITICAL_FIELDS", nil),
		MinCharsPerPage:    getEnvInt("EXTRACTION_MIN_CHARS_PER_PAGE", 100),
		ExtractConcurrency: getEnvInt("EXTRACTION_CONCURRENCY", 2),
		FallbackTimeout:    fallbackTimeout,

		JobRetention: getEnvInt("JOB_RETENTION", 50),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated env value; nil means "use the
// package defaults".
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
