package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.QuestionLimit != 7 {
		t.Fatalf("QuestionLimit = %d, want 7", cfg.QuestionLimit)
	}
	if cfg.LowScoreStreakLimit != 3 {
		t.Fatalf("LowScoreStreakLimit = %d, want 3", cfg.LowScoreStreakLimit)
	}
	if cfg.LowScoreThreshold != 5 {
		t.Fatalf("LowScoreThreshold = %d, want 5", cfg.LowScoreThreshold)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Fatalf("ProviderTimeout = %v, want 60s", cfg.ProviderTimeout)
	}
	if len(cfg.ClosingCuePhrases) == 0 {
		t.Fatalf("ClosingCuePhrases should not be empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INTERVIEW_QUESTION_LIMIT", "25")
	t.Setenv("INTERVIEW_LOW_SCORE_STREAK_LIMIT", "5")
	t.Setenv("COMPLETION_TIMEOUT", "10s")
	t.Setenv("INTERVIEW_CLOSING_CUES", "wrap up, that is all")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QuestionLimit != 25 {
		t.Fatalf("QuestionLimit = %d, want 25", cfg.QuestionLimit)
	}
	if cfg.LowScoreStreakLimit != 5 {
		t.Fatalf("LowScoreStreakLimit = %d, want 5", cfg.LowScoreStreakLimit)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Fatalf("ProviderTimeout = %v, want 10s", cfg.ProviderTimeout)
	}
	if len(cfg.ClosingCuePhrases) != 2 || cfg.ClosingCuePhrases[0] != "wrap up" {
		t.Fatalf("ClosingCuePhrases = %v", cfg.ClosingCuePhrases)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"INTERVIEW_QUESTION_LIMIT":         "0",
		"INTERVIEW_LOW_SCORE_THRESHOLD":    "11",
		"INTERVIEW_LOW_SCORE_STREAK_LIMIT": "-1",
		"COMPLETION_TIMEOUT":               "100ms",
		"RESUME_MAX_CHARS":                 "10",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%s should fail", key, val)
			}
		})
	}
}
