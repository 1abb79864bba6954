package interview

import (
	"regexp"
	"strconv"
	"strings"
)

// PlaceholderFeedback is reported when the reply carries no feedback block.
const PlaceholderFeedback = "Feedback not provided."

// The interviewer is instructed to close each reply with
// "**Feedback:** ... **Score:** N/10". Models drift on the markdown, so both
// patterns tolerate missing asterisks and loose spacing around the slash.
var (
	feedbackScoreRE = regexp.MustCompile(`(?is)\*{0,2}feedback:?\*{0,2}:?\s*(.*?)\s*\*{0,2}score:?\*{0,2}:?\s*(\d{1,2})\s*/\s*10`)
	scoreOnlyRE     = regexp.MustCompile(`(?i)\*{0,2}score:?\*{0,2}:?\s*(\d{1,2})\s*/\s*10`)
)

// ExtractScore recovers the feedback text and numeric score from a raw
// interviewer reply. Precedence: combined feedback-then-score pattern, score
// pattern alone, then placeholder feedback with no score. A score outside
// 1..10 is treated as unparsed, never clamped.
func ExtractScore(reply string) (feedback string, score *int) {
	if m := feedbackScoreRE.FindStringSubmatch(reply); m != nil {
		feedback = strings.TrimSpace(m[1])
		if feedback == "" {
			feedback = PlaceholderFeedback
		}
		return feedback, parseScore(m[2])
	}
	if m := scoreOnlyRE.FindStringSubmatch(reply); m != nil {
		return PlaceholderFeedback, parseScore(m[1])
	}
	return PlaceholderFeedback, nil
}

func parseScore(raw string) *int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 10 {
		return nil
	}
	return &n
}

// containsClosingCue reports whether the reply already reads like a natural
// conclusion, in which case no closing remark is appended.
func containsClosingCue(reply string, cues []string) bool {
	lower := strings.ToLower(reply)
	for _, cue := range cues {
		if cue == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(cue)) {
			return true
		}
	}
	return false
}
