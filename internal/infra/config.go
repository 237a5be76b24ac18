package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	StoragePath    string
	StorageBaseURL string
	SignSecret     string
	SignedURLTTL   time.Duration
	OutputBase     string
	TempPrefix     string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIOrg        string
	ReplicateAPIKey  string
	ReplicateBaseURL string
	DefaultProvider  string

	ModelCatalogPath string
	ModuleConfigPath string
	StyleConfigPath  string

	MaxStyleImages     int
	MaxConcurrentTasks int
	RetryMaxAttempts   int
	ProviderRatePerMin int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		StoragePath:    getEnv("STORAGE_PATH", "./data/objects"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/v1/files"),
		SignSecret:     os.Getenv("SIGN_SECRET"),
		SignedURLTTL:   time.Second * time.Duration(getEnvInt("SIGNED_URL_TTL_SECONDS", 3600)),
		OutputBase:     getEnv("OUTPUT_BASE_PREFIX", "generated"),
		TempPrefix:     getEnv("TEMP_PREFIX", "temp"),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:        os.Getenv("OPENAI_ORG"),
		ReplicateAPIKey:  os.Getenv("REPLICATE_API_KEY"),
		ReplicateBaseURL: getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
		DefaultProvider:  getEnv("DEFAULT_AI_PROVIDER", "openai"),

		ModelCatalogPath: os.Getenv("MODEL_CATALOG_PATH"),
		ModuleConfigPath: os.Getenv("MODULE_CONFIG_PATH"),
		StyleConfigPath:  os.Getenv("STYLE_PRESETS_PATH"),

		MaxStyleImages:     getEnvInt("MAX_STYLE_IMAGES", 10),
		MaxConcurrentTasks: getEnvInt("MAX_CONCURRENT_TASKS", 5),
		RetryMaxAttempts:   getEnvInt("AI_RETRY_MAX_ATTEMPTS", 3),
		ProviderRatePerMin: getEnvInt("AI_CALLS_PER_MINUTE", 60),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS"),
	}

	if cfg.SignSecret == "" {
		return nil, fmt.Errorf("SIGN_SECRET is required")
	}

	if cfg.OpenAIAPIKey == "" && cfg.ReplicateAPIKey == "" {
		return nil, fmt.Errorf("at least one of OPENAI_API_KEY or REPLICATE_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
