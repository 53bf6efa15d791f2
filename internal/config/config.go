// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath string
	UserID string

	// Hosted recognition and macro functions.
	FunctionsURL   string
	FunctionsToken string

	// Extra barcode sources tried after Open Food Facts.
	UPCItemDBKey string
	USDAAPIKey   string

	// Upstream model used when serving the functions locally.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	JWTSecret     string
	Port          int

	AWSRegion        string
	SESFromEmail     string
	SNSTopicARN      string
	ReminderTimezone string

	LogLevel slog.Level
}

// Load reads files (".env" when none are given) and then the process
// environment. Missing files are ignored; variables already set win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		DBPath:           getEnv("CALORIX_DB", ""),
		UserID:           getEnv("CALORIX_USER_ID", ""),
		FunctionsURL:     strings.TrimRight(getEnv("CALORIX_FUNCTIONS_URL", ""), "/"),
		FunctionsToken:   getEnv("CALORIX_FUNCTIONS_TOKEN", ""),
		UPCItemDBKey:     getEnv("UPCITEMDB_API_KEY", ""),
		USDAAPIKey:       getEnv("USDA_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		Port:             port,
		AWSRegion:        getEnv("AWS_REGION", "eu-central-1"),
		SESFromEmail:     getEnv("SES_FROM_EMAIL", ""),
		SNSTopicARN:      getEnv("SNS_TOPIC_ARN", ""),
		ReminderTimezone: getEnv("REMINDER_TIMEZONE", "Europe/Istanbul"),
		LogLevel:         level,
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected an integer", key, raw)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Verbose reports whether CALORIX_VERBOSE asks for debug logging.
func Verbose() bool {
	return getEnvBool("CALORIX_VERBOSE", false)
}

func parseLevel(v string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q (expected debug|info|warn|error)", v)
	}
	return level, nil
}
