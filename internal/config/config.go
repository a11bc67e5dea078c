package config

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

// Config is the environment-backed application configuration. A .env file in
// the working directory is loaded automatically.
type Config struct {
	// DBPath is the SQLite database location; ":memory:" is supported.
	DBPath string
	// SettingsPath is the JSON session-state file.
	SettingsPath string
	// ImageCodec selects the image optimizer codec: gzip, lz4 or brotli.
	ImageCodec string
	// LogLevel is a logrus level name.
	LogLevel string
}

func Load() Config {
	cfg := Config{
		DBPath:       envOr("MARKPAD_DB_PATH", "markpad.db"),
		SettingsPath: envOr("MARKPAD_SETTINGS_PATH", "settings.json"),
		ImageCodec:   envOr("MARKPAD_IMAGE_CODEC", "gzip"),
		LogLevel:     envOr("MARKPAD_LOG_LEVEL", "info"),
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
