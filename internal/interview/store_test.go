package interview

import (
	"errors"
	"sync"
	"testing"
)

func TestStoreCreateGetRemove(t *testing.T) {
	st := NewStore()
	s := st.Create(Profile{Name: "Ana", Skills: []string{"Go"}})
	if s.ID == "" {
		t.Fatalf("session ID should not be empty")
	}
	if s.Status != StatusInProgress || s.TurnsTaken != 0 || len(s.Transcript) != 0 {
		t.Fatalf("unexpected initial state: %+v", s)
	}

	got, err := st.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Profile.Name != "Ana" {
		t.Fatalf("Profile.Name = %q, want Ana", got.Profile.Name)
	}

	st.Remove(s.ID)
	if _, err := st.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after Remove error = %v, want ErrNotFound", err)
	}
	// Idempotent.
	st.Remove(s.ID)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	st := NewStore()
	s := st.Create(Profile{Name: "Ana"})
	_ = st.Mutate(s.ID, func(s *Session) {
		s.Transcript = append(s.Transcript, Turn{Role: "assistant", Content: "Q1", Score: intPtr(7)})
		s.ScoreHistory = append(s.ScoreHistory, 7)
	})

	got, _ := st.Get(s.ID)
	got.Transcript[0].Content = "mutated"
	*got.Transcript[0].Score = 1
	got.ScoreHistory[0] = 1

	fresh, _ := st.Get(s.ID)
	if fresh.Transcript[0].Content != "Q1" || *fresh.Transcript[0].Score != 7 || fresh.ScoreHistory[0] != 7 {
		t.Fatalf("Get() must return an isolated copy, got %+v", fresh)
	}
}

func TestStoreMutateUnknownID(t *testing.T) {
	st := NewStore()
	err := st.Mutate("missing", func(*Session) {})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Mutate() error = %v, want ErrNotFound", err)
	}
}

func TestStoreMutateSerializesWriters(t *testing.T) {
	st := NewStore()
	s := st.Create(Profile{Name: "Ana"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Mutate(s.ID, func(s *Session) {
				s.TurnsTaken++
			})
		}()
	}
	wg.Wait()

	got, _ := st.Get(s.ID)
	if got.TurnsTaken != 50 {
		t.Fatalf("TurnsTaken = %d, want 50 (lost update)", got.TurnsTaken)
	}
}

func TestStoreActiveCount(t *testing.T) {
	st := NewStore()
	a := st.Create(Profile{Name: "A"})
	st.Create(Profile{Name: "B"})
	if st.ActiveCount() != 2 {
		t.Fatalf("ActiveCount() = %d, want 2", st.ActiveCount())
	}
	st.Remove(a.ID)
	if st.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", st.ActiveCount())
	}
}
