package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockProvider produces deterministic local replies when no real backend is
// configured, and supports scripted replies for tests.
type MockProvider struct {
	mu      sync.Mutex
	replies []string
	next    int
	calls   []Request
}

func NewMockProvider(replies ...string) *MockProvider {
	return &MockProvider{replies: replies}
}

func (p *MockProvider) Complete(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)

	if p.next < len(p.replies) {
		reply := p.replies[p.next]
		p.next++
		return reply, nil
	}
	return buildMockReply(req), nil
}

// Calls returns a copy of every request seen so far.
func (p *MockProvider) Calls() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Request, len(p.calls))
	copy(out, p.calls)
	return out
}

func buildMockReply(req Request) string {
	if req.JSONMode {
		return `{"name":"Mock Candidate","skills":["Go"],"experience":[],"projects":[]}`
	}

	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			last = strings.TrimSpace(req.Messages[i].Content)
			break
		}
	}
	if last == "" || strings.EqualFold(last, "Start the interview now.") {
		return "Hello, I'm your interviewer today. To start: tell me about a recent project you are proud of."
	}
	return fmt.Sprintf("Noted: %s\n\n**Feedback:** Reasonable answer. **Score:** 7/10\n\nNext question: how would you improve it?", truncateMock(last, 60))
}

func truncateMock(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
