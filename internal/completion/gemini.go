package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider adapts Google Gemini to the Provider contract. Gemini model
// names differ from the chat-completions ones, so the request model is only
// honored when it looks like a Gemini identifier.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	modelName := defaultGeminiModel
	if strings.HasPrefix(req.Model, "gemini") {
		modelName = req.Model
	}

	model := p.client.GenerativeModel(modelName)
	model.SetTemperature(float32(req.Temperature))
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	history, last := splitMessages(req.Messages, model)
	if last == "" {
		return "", fmt.Errorf("%w: request has no user content", ErrUnavailable)
	}

	chat := model.StartChat()
	chat.History = history
	resp, err := chat.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text, err := textFromResponse(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, nil
}

func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// splitMessages maps chat-completion roles onto Gemini chat history. The
// system message becomes the model's system instruction; the final user
// message is returned separately because SendMessage carries it.
func splitMessages(messages []Message, model *genai.GenerativeModel) ([]*genai.Content, string) {
	var history []*genai.Content
	last := ""
	for i, m := range messages {
		switch m.Role {
		case RoleSystem:
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.Content)}}
		case RoleUser:
			if i == len(messages)-1 {
				last = m.Content
				continue
			}
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		case RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	return history, last
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	joined := strings.Join(parts, "")
	if strings.TrimSpace(joined) == "" {
		return "", fmt.Errorf("empty completion content")
	}
	return joined, nil
}
