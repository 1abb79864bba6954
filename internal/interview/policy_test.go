package interview

import "testing"

func TestPolicyEvaluatePrecedence(t *testing.T) {
	p := Policy{QuestionLimit: 7, LowScoreStreakLimit: 3, LowScoreThreshold: 5}

	if got := p.Evaluate(3, 0); got != "" {
		t.Fatalf("Evaluate(3,0) = %q, want continue", got)
	}
	if got := p.Evaluate(7, 0); got != ReasonQuestionLimit {
		t.Fatalf("Evaluate(7,0) = %q, want %q", got, ReasonQuestionLimit)
	}
	if got := p.Evaluate(3, 3); got != ReasonLowScoreStreak {
		t.Fatalf("Evaluate(3,3) = %q, want %q", got, ReasonLowScoreStreak)
	}
	// Question limit wins when both qualify.
	if got := p.Evaluate(7, 3); got != ReasonQuestionLimit {
		t.Fatalf("Evaluate(7,3) = %q, want %q", got, ReasonQuestionLimit)
	}
}

func TestPolicyNextStreak(t *testing.T) {
	p := Policy{LowScoreThreshold: 5}

	streak := 0
	for i := 0; i < 4; i++ {
		streak = p.NextStreak(streak, intPtr(3))
	}
	if streak != 4 {
		t.Fatalf("streak after four sub-threshold scores = %d, want 4", streak)
	}

	if got := p.NextStreak(streak, intPtr(5)); got != 0 {
		t.Fatalf("at-threshold score should reset streak, got %d", got)
	}
	if got := p.NextStreak(2, nil); got != 0 {
		t.Fatalf("missing score should reset streak, got %d", got)
	}
}
