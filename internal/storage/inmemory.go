package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryGateway is a simple in-process gateway for local/dev use and tests.
type InMemoryGateway struct {
	mu         sync.RWMutex
	interviews map[string]InterviewRecord
	resumes    map[string]ResumeRecord
}

func NewInMemoryGateway() *InMemoryGateway {
	return &InMemoryGateway{
		interviews: make(map[string]InterviewRecord),
		resumes:    make(map[string]ResumeRecord),
	}
}

func (g *InMemoryGateway) SaveInterview(_ context.Context, record InterviewRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	g.interviews[record.ID] = record
	return nil
}

func (g *InMemoryGateway) UpdateInterviewStatus(_ context.Context, interviewID, status string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	record, ok := g.interviews[interviewID]
	if !ok {
		return fmt.Errorf("interview %s not found", interviewID)
	}
	record.Status = status
	g.interviews[interviewID] = record
	return nil
}

func (g *InMemoryGateway) GetUserInterviews(_ context.Context, userID string) ([]InterviewRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []InterviewRecord
	for _, record := range g.interviews {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (g *InMemoryGateway) SaveResume(_ context.Context, record ResumeRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}
	g.resumes[record.ID] = record
	return nil
}

func (g *InMemoryGateway) GetUserResumes(_ context.Context, userID string) ([]ResumeRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []ResumeRecord
	for _, record := range g.resumes {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (g *InMemoryGateway) Close() error { return nil }
