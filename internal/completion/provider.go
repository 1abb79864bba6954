package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Message roles understood by chat-completion endpoints.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in the model context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the normalized completion request. The caller carries the full
// conversation history; providers are stateless.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	JSONMode    bool
}

// Provider is a stateless request/response interface to a language model.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrUnavailable normalizes every provider failure mode: network errors,
// upstream status errors, timeouts and empty replies.
var ErrUnavailable = errors.New("completion provider unavailable")

// Config controls provider construction.
type Config struct {
	Mode         string
	GroqAPIKey   string
	GroqAPIURL   string
	GeminiAPIKey string
	Timeout      time.Duration
}

// New builds a provider for the configured mode. The resolved mode is
// returned so the caller can log which backend is active.
func New(ctx context.Context, cfg Config) (Provider, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.GroqAPIKey) != "" {
			return NewHTTPProvider(cfg.GroqAPIURL, cfg.GroqAPIKey, cfg.Timeout), "http", nil
		}
		if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
			p, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey)
			if err != nil {
				return nil, "", err
			}
			return p, "gemini", nil
		}
		return NewMockProvider(), "mock", nil
	case "http":
		if strings.TrimSpace(cfg.GroqAPIKey) == "" {
			return nil, "", errors.New("GROQ_API_KEY is required for http mode")
		}
		return NewHTTPProvider(cfg.GroqAPIURL, cfg.GroqAPIKey, cfg.Timeout), "http", nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, "", errors.New("GEMINI_API_KEY is required for gemini mode")
		}
		p, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, "", err
		}
		return p, "gemini", nil
	case "mock":
		return NewMockProvider(), "mock", nil
	default:
		return nil, "", fmt.Errorf("unsupported completion provider mode %q", cfg.Mode)
	}
}
