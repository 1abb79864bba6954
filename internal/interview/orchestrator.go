package interview

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhinav2805-ux/resumeP/internal/completion"
	"github.com/abhinav2805-ux/resumeP/internal/observability"
	"github.com/abhinav2805-ux/resumeP/internal/storage"
)

// closingRemark is appended to the last interviewer reply when a termination
// rule fires and the model did not close the conversation itself.
const closingRemark = "\n\nOkay, I believe that covers the main areas I wanted to discuss. Thank you for answering my questions."

const noAnswerSentinel = "[no answer recorded]"

// Config carries the orchestrator's model and sampling settings; the
// termination thresholds live in Policy.
type Config struct {
	Model              string
	OpeningTemperature float64
	TurnTemperature    float64
	Policy             Policy
}

// Orchestrator owns the interview session lifecycle: creation, the turn
// protocol, score bookkeeping, termination policy and finalization. The
// completion provider is stateless; the orchestrator carries all history.
type Orchestrator struct {
	store    *Store
	provider completion.Provider
	gateway  storage.Gateway
	metrics  *observability.Metrics
	log      *zap.Logger
	cfg      Config
}

func NewOrchestrator(store *Store, provider completion.Provider, gateway storage.Gateway, metrics *observability.Metrics, log *zap.Logger, cfg Config) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		store:    store,
		provider: provider,
		gateway:  gateway,
		metrics:  metrics,
		log:      log,
		cfg:      cfg,
	}
}

// StartInterview builds the system framing for the candidate, requests the
// opening interviewer message and creates the session. No session is created
// when the provider call fails.
func (o *Orchestrator) StartInterview(ctx context.Context, profile Profile) (*StartResult, error) {
	if profile.Empty() {
		return nil, fmt.Errorf("%w: candidate profile is empty", ErrInvalidInput)
	}

	framing := buildSystemFraming(profile, o.cfg.Policy.QuestionLimit)
	openingStart := time.Now()
	opening, err := o.provider.Complete(ctx, completion.Request{
		Model: o.cfg.Model,
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: framing},
			{Role: completion.RoleUser, Content: "Start the interview now."},
		},
		Temperature: o.cfg.OpeningTemperature,
	})
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues("start").Inc()
		return nil, err
	}
	o.metrics.ObserveStage(observability.StageOpening, time.Since(openingStart))

	s := o.store.Create(profile)
	now := time.Now().UTC()
	_ = o.store.Mutate(s.ID, func(s *Session) {
		s.Transcript = append(s.Transcript,
			Turn{Role: completion.RoleSystem, Content: framing, CreatedAt: now},
			Turn{Role: completion.RoleAssistant, Content: opening, CreatedAt: now},
		)
		s.TurnsTaken = 1
	})

	o.metrics.ActiveSessions.Set(float64(o.store.ActiveCount()))
	o.metrics.SessionEvents.WithLabelValues("started").Inc()
	o.log.Info("interview started",
		zap.String("interview_id", s.ID),
		zap.String("candidate", profile.Name),
	)

	return &StartResult{SessionID: s.ID, Message: opening, Status: StatusInProgress}, nil
}

// SubmitAnswer appends the candidate's answer, requests the next interviewer
// turn, extracts the score and applies the termination policy. The candidate
// turn is retained when the provider call fails, so a client retry duplicates
// it; that trade-off preserves the candidate's input.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, id, answer string) (*TurnResult, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: answer text is empty", ErrInvalidInput)
	}

	started := time.Now()

	var (
		stateErr error
		messages []completion.Message
	)
	err := o.store.Mutate(id, func(s *Session) {
		if s.Status == StatusCompleted {
			stateErr = fmt.Errorf("%w: status is %s", ErrInvalidState, s.Status)
			return
		}
		s.Transcript = append(s.Transcript, Turn{
			Role:      completion.RoleUser,
			Content:   answer,
			CreatedAt: time.Now().UTC(),
		})
		messages = toMessages(s.Transcript)
	})
	if err != nil {
		return nil, err
	}
	if stateErr != nil {
		return nil, stateErr
	}

	// The provider call runs outside the session lock; the turn protocol
	// guarantees no other writer for this session while it is in flight.
	reply, err := o.provider.Complete(ctx, completion.Request{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: o.cfg.TurnTemperature,
	})
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues("turn").Inc()
		o.log.Warn("provider failed mid-turn, candidate answer retained",
			zap.String("interview_id", id), zap.Error(err))
		return nil, err
	}

	feedback, score := ExtractScore(reply)
	if score != nil {
		o.metrics.ScoreExtractions.WithLabelValues("ok").Inc()
	} else {
		o.metrics.ScoreExtractions.WithLabelValues("missed").Inc()
	}

	result := &TurnResult{Feedback: feedback, Score: score}
	err = o.store.Mutate(id, func(s *Session) {
		s.Transcript = append(s.Transcript, Turn{
			Role:      completion.RoleAssistant,
			Content:   reply,
			Score:     score,
			CreatedAt: time.Now().UTC(),
		})
		s.TurnsTaken++
		s.LowScoreStreak = o.cfg.Policy.NextStreak(s.LowScoreStreak, score)
		if score != nil {
			s.ScoreHistory = append(s.ScoreHistory, *score)
		}

		if reason := o.cfg.Policy.Evaluate(s.TurnsTaken, s.LowScoreStreak); reason != "" {
			s.Status = StatusCompleted
			s.TerminationReason = reason
			o.metrics.Terminations.WithLabelValues(reason).Inc()
			if !containsClosingCue(reply, o.cfg.Policy.ClosingCuePhrases) {
				reply += closingRemark
				last := len(s.Transcript) - 1
				s.Transcript[last].Content = reply
			}
		} else if containsClosingCue(reply, o.cfg.Policy.ClosingCuePhrases) {
			// The model is winding down on its own; surface that without
			// closing the session.
			s.Status = StatusEnding
		} else {
			s.Status = StatusInProgress
		}

		result.Status = s.Status
		result.TerminationReason = s.TerminationReason
		result.LowScoreStreak = s.LowScoreStreak
		result.Message = reply
	})
	if err != nil {
		return nil, err
	}

	o.metrics.ObserveTurnLatency(time.Since(started))
	o.log.Info("turn completed",
		zap.String("interview_id", id),
		zap.String("status", string(result.Status)),
		zap.Intp("score", result.Score),
		zap.Int("low_score_streak", result.LowScoreStreak),
	)
	return result, nil
}

// EndInterview finalizes the session: computes the aggregate score, reshapes
// the transcript into question/answer pairs, saves the record and evicts the
// session. The session is removed even when the save fails so repeated
// failing end-attempts cannot leak memory.
func (o *Orchestrator) EndInterview(ctx context.Context, id string) (*Summary, error) {
	var snapshot *Session
	err := o.store.Mutate(id, func(s *Session) {
		s.Status = StatusCompleted
		snapshot = clone(s)
	})
	if err != nil {
		return nil, err
	}

	finalScore := aggregateScore(snapshot.ScoreHistory)
	pairs := pairTranscript(snapshot.Transcript)
	record := storage.InterviewRecord{
		ID:         snapshot.ID,
		UserID:     snapshot.Profile.UserID,
		UserName:   snapshot.Profile.Name,
		StartedAt:  snapshot.StartedAt,
		EndedAt:    time.Now().UTC(),
		FinalScore: finalScore,
		Status:     string(StatusCompleted),
		Questions:  pairs,
		History:    toHistory(snapshot.Transcript),
	}

	persistStart := time.Now()
	saveErr := o.gateway.SaveInterview(ctx, record)
	o.metrics.ObserveStage(observability.StagePersist, time.Since(persistStart))

	o.store.Remove(id)
	o.metrics.ActiveSessions.Set(float64(o.store.ActiveCount()))

	if saveErr != nil {
		o.metrics.SessionEvents.WithLabelValues("end_failed").Inc()
		o.log.Error("interview computed but not saved",
			zap.String("interview_id", id),
			zap.Intp("final_score", finalScore),
			zap.Error(saveErr),
		)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, saveErr)
	}

	o.metrics.SessionEvents.WithLabelValues("ended").Inc()
	o.log.Info("interview ended",
		zap.String("interview_id", id),
		zap.Intp("final_score", finalScore),
		zap.Int("questions", len(pairs)),
	)
	return &Summary{SessionID: id, FinalScore: finalScore, Questions: len(pairs)}, nil
}

// Session returns a copy of a live session.
func (o *Orchestrator) Session(id string) (*Session, error) {
	return o.store.Get(id)
}

// ActiveSessions reports how many sessions are currently held in memory.
func (o *Orchestrator) ActiveSessions() int {
	return o.store.ActiveCount()
}

// UserInterviews lists a user's finalized interviews. Supporting read
// outside the turn hot path.
func (o *Orchestrator) UserInterviews(ctx context.Context, userID string) ([]storage.InterviewRecord, error) {
	return o.gateway.GetUserInterviews(ctx, userID)
}

// UpdateInterviewStatus adjusts a stored interview's status.
func (o *Orchestrator) UpdateInterviewStatus(ctx context.Context, interviewID, status string) error {
	return o.gateway.UpdateInterviewStatus(ctx, interviewID, status)
}

func buildSystemFraming(profile Profile, questionLimit int) string {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = "the candidate"
	}

	skills := "Not specified"
	if len(profile.Skills) > 0 {
		head := profile.Skills
		suffix := ""
		if len(head) > 10 {
			head = head[:10]
			suffix = "..."
		}
		skills = strings.Join(head, ", ") + suffix
	}

	return fmt.Sprintf(`**Role:** You are an AI interviewer, a friendly yet professional senior technical interviewer.
**Candidate:** %s
**Candidate Profile Summary:**
- Key Skills: %s
- Experience: %d positions mentioned
- Projects: %d projects mentioned

**Interview Protocol:**
1. **Begin:** Start with a brief, professional introduction and ask your first question immediately.
2. **Questioning:** Ask around %d insightful questions covering technical skills, problem-solving approaches, specific experiences or projects from the resume, and behavioral scenarios.
3. **Interaction:** After *each* candidate answer, provide brief constructive feedback and a numerical score for the answer. **Format:** Respond *only* in this format: [Your next question or follow-up]

**Feedback:** [Your feedback text]. **Score:** [Number]/10
4. **Adapt:** Ask relevant follow-up questions based on their responses.
5. **Conclude:** After sufficient questions (~%d), politely conclude the interview.

**Tone:** Maintain a positive, encouraging, and professional tone throughout.`,
		name, skills, len(profile.Experience), len(profile.Projects), questionLimit, questionLimit)
}

func toMessages(transcript []Turn) []completion.Message {
	out := make([]completion.Message, 0, len(transcript))
	for _, t := range transcript {
		out = append(out, completion.Message{Role: t.Role, Content: t.Content})
	}
	return out
}

func toHistory(transcript []Turn) []storage.TranscriptEntry {
	out := make([]storage.TranscriptEntry, 0, len(transcript))
	for _, t := range transcript {
		entryType := t.Role
		if t.Role == completion.RoleAssistant {
			entryType = "interviewer"
		}
		out = append(out, storage.TranscriptEntry{
			Type:      entryType,
			Content:   t.Content,
			Score:     t.Score,
			Timestamp: t.CreatedAt,
		})
	}
	return out
}

// pairTranscript reshapes the transcript into question/answer pairs. Each
// interviewer turn opens a pending pair; the next candidate turn closes it.
// A trailing unanswered question is closed with a sentinel answer rather
// than left open.
func pairTranscript(transcript []Turn) []storage.QAPair {
	var (
		pairs   []storage.QAPair
		pending *storage.QAPair
	)
	for _, t := range transcript {
		switch t.Role {
		case completion.RoleAssistant:
			if pending != nil {
				pending.Answer = noAnswerSentinel
				pairs = append(pairs, *pending)
			}
			pending = &storage.QAPair{
				Question: t.Content,
				Score:    t.Score,
				AskedAt:  t.CreatedAt,
			}
		case completion.RoleUser:
			if pending != nil {
				pending.Answer = t.Content
				pairs = append(pairs, *pending)
				pending = nil
			}
		}
	}
	if pending != nil {
		pending.Answer = noAnswerSentinel
		pairs = append(pairs, *pending)
	}
	return pairs
}

// aggregateScore is the rounded arithmetic mean of the extracted scores,
// absent when none were extracted.
func aggregateScore(history []int) *int {
	if len(history) == 0 {
		return nil
	}
	sum := 0
	for _, s := range history {
		sum += s
	}
	avg := int(math.Round(float64(sum) / float64(len(history))))
	return &avg
}
