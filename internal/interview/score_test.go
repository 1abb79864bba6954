package interview

import "testing"

func intPtr(n int) *int { return &n }

func TestExtractScore(t *testing.T) {
	cases := []struct {
		name         string
		reply        string
		wantFeedback string
		wantScore    *int
	}{
		{
			name:         "combined feedback and score",
			reply:        "What about caching?\n\n**Feedback:** Good use of examples. **Score:** 8/10",
			wantFeedback: "Good use of examples.",
			wantScore:    intPtr(8),
		},
		{
			name:         "plain markup",
			reply:        "Next question.\n\nFeedback: Solid reasoning. Score: 9/10",
			wantFeedback: "Solid reasoning.",
			wantScore:    intPtr(9),
		},
		{
			name:         "case insensitive with loose slash",
			reply:        "**FEEDBACK:** ok. **SCORE:** 6 / 10",
			wantFeedback: "ok.",
			wantScore:    intPtr(6),
		},
		{
			name:         "score out of range is unparsed",
			reply:        "**Feedback:** Too generous. **Score:** 11/10",
			wantFeedback: "Too generous.",
			wantScore:    nil,
		},
		{
			name:         "score only",
			reply:        "Let's move on. **Score:** 4/10",
			wantFeedback: PlaceholderFeedback,
			wantScore:    intPtr(4),
		},
		{
			name:         "no score block",
			reply:        "Tell me about a project you are proud of.",
			wantFeedback: PlaceholderFeedback,
			wantScore:    nil,
		},
		{
			name:         "zero score is unparsed",
			reply:        "**Feedback:** none. **Score:** 0/10",
			wantFeedback: "none.",
			wantScore:    nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			feedback, score := ExtractScore(tc.reply)
			if feedback != tc.wantFeedback {
				t.Fatalf("feedback = %q, want %q", feedback, tc.wantFeedback)
			}
			if (score == nil) != (tc.wantScore == nil) {
				t.Fatalf("score = %v, want %v", score, tc.wantScore)
			}
			if score != nil && *score != *tc.wantScore {
				t.Fatalf("score = %d, want %d", *score, *tc.wantScore)
			}
		})
	}
}

func TestContainsClosingCue(t *testing.T) {
	cues := []string{"conclude", "thank you for your time"}
	if !containsClosingCue("That CONCLUDES our session.", cues) {
		t.Fatalf("expected cue match")
	}
	if containsClosingCue("Next question: why Go?", cues) {
		t.Fatalf("unexpected cue match")
	}
	if containsClosingCue("anything", nil) {
		t.Fatalf("no cues should never match")
	}
}
