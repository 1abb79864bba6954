package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the interview service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	LogJSON          bool
	Debug            bool
	AllowAnyOrigin   bool

	ProviderMode    string
	GroqAPIKey      string
	GroqAPIURL      string
	GeminiAPIKey    string
	CompletionModel string
	ProviderTimeout time.Duration

	OpeningTemperature    float64
	TurnTemperature       float64
	ExtractionTemperature float64

	QuestionLimit       int
	LowScoreStreakLimit int
	LowScoreThreshold   int
	ClosingCuePhrases   []string

	ResumeMaxChars int

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults. A .env file in
// the working directory is merged in first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "interviewer"),
		LogJSON:          boolFromEnv("APP_LOG_JSON", true),
		Debug:            boolFromEnv("APP_DEBUG", false),
		AllowAnyOrigin:   boolFromEnv("APP_ALLOW_ANY_ORIGIN", false),
		ProviderMode:     envOrDefault("COMPLETION_PROVIDER", "auto"),
		GroqAPIKey:       stringsTrimSpace("GROQ_API_KEY"),
		GroqAPIURL:       envOrDefault("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		GeminiAPIKey:     stringsTrimSpace("GEMINI_API_KEY"),
		CompletionModel:  envOrDefault("COMPLETION_MODEL", "llama3-70b-8192"),
		ProviderTimeout:  60 * time.Second,
		// Moderate temperature for question variability, lower for focused
		// follow-ups, very low for deterministic resume extraction.
		OpeningTemperature:    0.7,
		TurnTemperature:       0.6,
		ExtractionTemperature: 0.1,
		QuestionLimit:         7,
		LowScoreStreakLimit:   3,
		LowScoreThreshold:     5,
		ClosingCuePhrases:     []string{"conclude", "concluding", "final question", "that covers", "thank you for your time", "end of the interview"},
		ResumeMaxChars:        25000,
		ShutdownTimeout:       15 * time.Second,
		DatabaseURL:           stringsTrimSpace("DATABASE_URL"),
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ProviderTimeout, err = durationFromEnv("COMPLETION_TIMEOUT", cfg.ProviderTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.QuestionLimit, err = intFromEnv("INTERVIEW_QUESTION_LIMIT", cfg.QuestionLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.LowScoreStreakLimit, err = intFromEnv("INTERVIEW_LOW_SCORE_STREAK_LIMIT", cfg.LowScoreStreakLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.LowScoreThreshold, err = intFromEnv("INTERVIEW_LOW_SCORE_THRESHOLD", cfg.LowScoreThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.ResumeMaxChars, err = intFromEnv("RESUME_MAX_CHARS", cfg.ResumeMaxChars)
	if err != nil {
		return Config{}, err
	}
	cfg.OpeningTemperature, err = floatFromEnv("COMPLETION_OPENING_TEMPERATURE", cfg.OpeningTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.TurnTemperature, err = floatFromEnv("COMPLETION_TURN_TEMPERATURE", cfg.TurnTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.ExtractionTemperature, err = floatFromEnv("COMPLETION_EXTRACTION_TEMPERATURE", cfg.ExtractionTemperature)
	if err != nil {
		return Config{}, err
	}
	if cues := stringsTrimSpace("INTERVIEW_CLOSING_CUES"); cues != "" {
		cfg.ClosingCuePhrases = cfg.ClosingCuePhrases[:0]
		for _, p := range strings.Split(cues, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.ClosingCuePhrases = append(cfg.ClosingCuePhrases, p)
			}
		}
	}

	if cfg.QuestionLimit < 1 {
		return Config{}, fmt.Errorf("INTERVIEW_QUESTION_LIMIT must be positive")
	}
	if cfg.LowScoreStreakLimit < 1 {
		return Config{}, fmt.Errorf("INTERVIEW_LOW_SCORE_STREAK_LIMIT must be positive")
	}
	if cfg.LowScoreThreshold < 1 || cfg.LowScoreThreshold > 10 {
		return Config{}, fmt.Errorf("INTERVIEW_LOW_SCORE_THRESHOLD must be within 1..10")
	}
	if cfg.ResumeMaxChars < 100 {
		return Config{}, fmt.Errorf("RESUME_MAX_CHARS must be at least 100")
	}
	if cfg.ProviderTimeout < time.Second {
		return Config{}, fmt.Errorf("COMPLETION_TIMEOUT must be at least 1s")
	}
	if len(cfg.ClosingCuePhrases) == 0 {
		return Config{}, fmt.Errorf("INTERVIEW_CLOSING_CUES must name at least one phrase")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func boolFromEnv(key string, fallback bool) bool {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
