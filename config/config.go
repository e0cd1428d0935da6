package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/storage"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort   int
	JWTSecretKey string
	LogLevel     slog.Level

	BackendBaseURL           string
	BackendAPIToken          string
	BackendTimeout           time.Duration
	BackendRequestsPerSecond float64

	CORSAllowOrigins []string

	// Overrides of the computed bracket shape, e.g. LOSERS_ROUND_SIZES=2,1.
	Layout brackets.LayoutOverrides

	R2 storage.CloudflareR2UploaderConfig
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	backendURL := strings.TrimSpace(getenv("BACKEND_BASE_URL"))
	if backendURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intOr(getenv, "SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	timeoutSeconds, err := intOr(getenv, "BACKEND_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be positive, got %d", timeoutSeconds)
	}

	rps := 10.0
	if v := getenv("BACKEND_REQUESTS_PER_SECOND"); v != "" {
		rps, err = strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return nil, fmt.Errorf("invalid BACKEND_REQUESTS_PER_SECOND %q", v)
		}
	}

	var level slog.Level
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	losers, err := brackets.ParseRoundSizes(getenv("LOSERS_ROUND_SIZES"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOSERS_ROUND_SIZES: %w", err)
	}
	grandFinals, err := brackets.ParseRoundSizes(getenv("GRAND_FINALS_ROUND_SIZES"))
	if err != nil {
		return nil, fmt.Errorf("invalid GRAND_FINALS_ROUND_SIZES: %w", err)
	}

	cfg := &Config{
		ServerPort:               port,
		JWTSecretKey:             jwtKey,
		LogLevel:                 level,
		BackendBaseURL:           backendURL,
		BackendAPIToken:          getenv("BACKEND_API_TOKEN"),
		BackendTimeout:           time.Duration(timeoutSeconds) * time.Second,
		BackendRequestsPerSecond: rps,
		CORSAllowOrigins:         listOr(getenv, "CORS_ALLOW_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		Layout: brackets.LayoutOverrides{
			Losers:      losers,
			GrandFinals: grandFinals,
		},
		R2: storage.CloudflareR2UploaderConfig{
			AccountID:       getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	return cfg, nil
}

func intOr(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func listOr(getenv func(string) string, key string, fallback []string) []string {
	v := getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
