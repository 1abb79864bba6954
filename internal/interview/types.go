package interview

import (
	"errors"
	"time"
)

type Status string

const (
	// StatusInProgress accepts answer submissions.
	StatusInProgress Status = "in_progress"
	// StatusEnding means the interviewer signalled a wind-down on its own
	// (closing cue in the reply) while no termination rule fired. The
	// session still accepts one more exchange.
	StatusEnding Status = "ending"
	// StatusCompleted is terminal; the transcript is frozen.
	StatusCompleted Status = "completed"
)

// Termination policy reasons.
const (
	ReasonQuestionLimit  = "question_limit"
	ReasonLowScoreStreak = "low_score_streak"
)

var (
	ErrNotFound          = errors.New("interview session not found")
	ErrInvalidInput      = errors.New("invalid interview input")
	ErrInvalidState      = errors.New("interview is not accepting answers")
	ErrPersistenceFailed = errors.New("interview persistence failed")
)

// Profile is the structured candidate profile captured at session creation
// and read-only afterwards.
type Profile struct {
	UserID     string           `json:"user_id,omitempty"`
	Name       string           `json:"name"`
	Skills     []string         `json:"skills"`
	Experience []map[string]any `json:"experience"`
	Projects   []map[string]any `json:"projects"`
}

// Empty reports whether the profile carries no usable candidate data.
func (p Profile) Empty() bool {
	return p.Name == "" && len(p.Skills) == 0 && len(p.Experience) == 0 && len(p.Projects) == 0
}

// Turn is one transcript entry: the single leading system framing, a
// candidate answer, or an interviewer message with its extracted score.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Score     *int      `json:"score,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one candidate's end-to-end interview attempt. It lives only in
// process memory until finalization.
type Session struct {
	ID                string    `json:"session_id"`
	Profile           Profile   `json:"profile"`
	Status            Status    `json:"status"`
	Transcript        []Turn    `json:"transcript"`
	TurnsTaken        int       `json:"turns_taken"`
	ScoreHistory      []int     `json:"score_history"`
	LowScoreStreak    int       `json:"low_score_streak"`
	TerminationReason string    `json:"termination_reason,omitempty"`
	StartedAt         time.Time `json:"started_at"`
}

// StartResult is returned by StartInterview.
type StartResult struct {
	SessionID string `json:"interview_id"`
	Message   string `json:"message"`
	Status    Status `json:"status"`
}

// TurnResult is returned by SubmitAnswer.
type TurnResult struct {
	Status            Status `json:"interview_status"`
	TerminationReason string `json:"termination_reason,omitempty"`
	Message           string `json:"message"`
	Feedback          string `json:"feedback"`
	Score             *int   `json:"score"`
	LowScoreStreak    int    `json:"low_score_streak"`
}

// Summary is returned by EndInterview. FinalScore is absent when no score
// was ever extracted.
type Summary struct {
	SessionID  string `json:"interview_id"`
	FinalScore *int   `json:"final_score"`
	Questions  int    `json:"questions"`
}
