package interview

// Policy groups the configured termination thresholds. Historical builds of
// the service hardcoded these differently in each handler; they are injected
// once at orchestrator construction instead.
type Policy struct {
	QuestionLimit       int
	LowScoreStreakLimit int
	LowScoreThreshold   int
	ClosingCuePhrases   []string
}

// Evaluate returns the termination reason for the given counters, or "" when
// the interview continues. First match wins: the question limit takes
// precedence even when the low-score streak also qualifies.
func (p Policy) Evaluate(turnsTaken, lowScoreStreak int) string {
	if turnsTaken >= p.QuestionLimit {
		return ReasonQuestionLimit
	}
	if lowScoreStreak >= p.LowScoreStreakLimit {
		return ReasonLowScoreStreak
	}
	return ""
}

// NextStreak applies one extracted score to the running low-score streak.
// A missing score resets the streak, as does any score at or above the
// threshold.
func (p Policy) NextStreak(current int, score *int) int {
	if score != nil && *score < p.LowScoreThreshold {
		return current + 1
	}
	return 0
}
