package storage

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryGatewaySaveAndList(t *testing.T) {
	g := NewInMemoryGateway()
	ctx := context.Background()

	score := 8
	record := InterviewRecord{
		ID:         "iv-1",
		UserID:     "u1",
		UserName:   "Ana",
		StartedAt:  time.Now().UTC().Add(-10 * time.Minute),
		EndedAt:    time.Now().UTC(),
		FinalScore: &score,
		Status:     "completed",
		Questions:  []QAPair{{Question: "Q1", Answer: "A1", Score: &score}},
	}
	if err := g.SaveInterview(ctx, record); err != nil {
		t.Fatalf("SaveInterview() error = %v", err)
	}
	if err := g.SaveInterview(ctx, InterviewRecord{ID: "iv-2", UserID: "u2"}); err != nil {
		t.Fatalf("SaveInterview() error = %v", err)
	}

	got, err := g.GetUserInterviews(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserInterviews() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "iv-1" {
		t.Fatalf("GetUserInterviews() = %+v, want one record iv-1", got)
	}
	if got[0].FinalScore == nil || *got[0].FinalScore != 8 {
		t.Fatalf("FinalScore = %v, want 8", got[0].FinalScore)
	}
}

func TestInMemoryGatewayUpdateStatus(t *testing.T) {
	g := NewInMemoryGateway()
	ctx := context.Background()

	if err := g.SaveInterview(ctx, InterviewRecord{ID: "iv-1", UserID: "u1", Status: "completed"}); err != nil {
		t.Fatalf("SaveInterview() error = %v", err)
	}
	if err := g.UpdateInterviewStatus(ctx, "iv-1", "archived"); err != nil {
		t.Fatalf("UpdateInterviewStatus() error = %v", err)
	}
	got, _ := g.GetUserInterviews(ctx, "u1")
	if got[0].Status != "archived" {
		t.Fatalf("Status = %q, want archived", got[0].Status)
	}

	if err := g.UpdateInterviewStatus(ctx, "missing", "archived"); err == nil {
		t.Fatalf("UpdateInterviewStatus() on missing id should fail")
	}
}

func TestInMemoryGatewaySaveResumeFillsDefaults(t *testing.T) {
	g := NewInMemoryGateway()
	record := ResumeRecord{UserID: "u1", Name: "Ana", Skills: []string{"Go"}}
	if err := g.SaveResume(context.Background(), record); err != nil {
		t.Fatalf("SaveResume() error = %v", err)
	}
	if len(g.resumes) != 1 {
		t.Fatalf("resumes = %d, want 1", len(g.resumes))
	}
	for _, r := range g.resumes {
		if r.ID == "" || r.UploadedAt.IsZero() {
			t.Fatalf("defaults not filled: %+v", r)
		}
	}

	got, err := g.GetUserResumes(context.Background(), "u1")
	if err != nil || len(got) != 1 || got[0].Name != "Ana" {
		t.Fatalf("GetUserResumes() = %+v, err = %v", got, err)
	}
}
