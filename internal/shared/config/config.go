package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	UploadsDir      string
	RubricPath      string
	GraderCommand   string
	GraderArgs      []string
	GraderDir       string
	GraderTimeout   time.Duration
	MaxUploadBytes  int64

	// Grader-only settings, read by cmd/grader.
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float32
	TokenBudget    int
	CacheDir       string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(existing(".env", "cmd/.env")...)

	return Config{
		Port:            getEnv("PORT", "5000"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*"), ","),
		UploadsDir:      absPath(getEnv("UPLOADS_DIR", "uploads")),
		RubricPath:      absPath(getEnv("RUBRIC_PATH", filepath.Join("assets", "rubric.docx"))),
		GraderCommand:   getEnv("GRADER_COMMAND", "grader"),
		GraderArgs:      splitAndTrim(getEnv("GRADER_ARGS", ""), " "),
		GraderDir:       getEnv("GRADER_DIR", ""),
		GraderTimeout:   time.Duration(getEnvInt("GRADER_TIMEOUT_SECONDS", 0)) * time.Second,
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", 0)) << 20,
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 5000),
		LLMTemperature:  getEnvFloat32("LLM_TEMPERATURE", 0.45),
		TokenBudget:     getEnvInt("GRADER_TOKEN_BUDGET", 5000),
		CacheDir:        getEnv("GRADER_CACHE_DIR", ".cache"),
	}
}

// IsDevLike reports whether env is a local development environment.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return v
}

func getEnvFloat32(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return float32(v)
}

func splitAndTrim(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}
