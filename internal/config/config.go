package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel  string
	LogFormat string
	// LogFile receives the structured log stream. The terminal itself
	// belongs to the timer screen, so logs never go to stdout.
	LogFile        string
	ExportDir      string
	PresetDir      string
	CountdownTicks int
	// Defaults pre-fill the setup form; the proctor can still override them.
	DefaultQuestions int
	DefaultMinutes   int
	DefaultName      string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		LogFile:          getEnv("LOG_FILE", "./exstem-timer.log"),
		ExportDir:        getEnv("EXPORT_DIR", "./exports"),
		PresetDir:        getEnv("PRESET_DIR", "./presets"),
		CountdownTicks:   getEnvInt("COUNTDOWN_TICKS", 10),
		DefaultQuestions: getEnvInt("DEFAULT_QUESTIONS", 40),
		DefaultMinutes:   getEnvInt("DEFAULT_MINUTES", 90),
		DefaultName:      getEnv("DEFAULT_STUDENT_NAME", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
