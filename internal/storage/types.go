package storage

import (
	"context"
	"time"
)

// QAPair is one question/answer exchange in a finalized interview.
type QAPair struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Score    *int      `json:"score"`
	AskedAt  time.Time `json:"asked_at"`
}

// TranscriptEntry is one raw transcript message kept alongside the paired
// view for reference.
type TranscriptEntry struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Score     *int      `json:"score,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// InterviewRecord is the durable form of a finalized interview.
type InterviewRecord struct {
	ID         string            `json:"interview_id"`
	UserID     string            `json:"user_id"`
	UserName   string            `json:"user_name"`
	StartedAt  time.Time         `json:"started_at"`
	EndedAt    time.Time         `json:"ended_at"`
	FinalScore *int              `json:"final_score"`
	Status     string            `json:"status"`
	Questions  []QAPair          `json:"questions"`
	History    []TranscriptEntry `json:"conversation_history"`
}

// ResumeRecord is a parsed resume kept for later interview attempts.
type ResumeRecord struct {
	ID         string           `json:"resume_id"`
	UserID     string           `json:"user_id"`
	Name       string           `json:"name"`
	Skills     []string         `json:"skills"`
	Experience []map[string]any `json:"experience"`
	Projects   []map[string]any `json:"projects"`
	UploadedAt time.Time        `json:"uploaded_at"`
}

// Gateway persists finalized interviews and parsed resumes.
type Gateway interface {
	SaveInterview(ctx context.Context, record InterviewRecord) error
	UpdateInterviewStatus(ctx context.Context, interviewID, status string) error
	GetUserInterviews(ctx context.Context, userID string) ([]InterviewRecord, error)
	SaveResume(ctx context.Context, record ResumeRecord) error
	GetUserResumes(ctx context.Context, userID string) ([]ResumeRecord, error)
	Close() error
}
