package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/abhinav2805-ux/resumeP/internal/completion"
	"github.com/abhinav2805-ux/resumeP/internal/interview"
)

// Live interview wire messages. The turn protocol is strictly
// request/response, so a single read loop serves each connection.
type wsClientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type wsTurnEvent struct {
	Type              string           `json:"type"`
	InterviewID       string           `json:"interview_id"`
	Status            interview.Status `json:"interview_status"`
	TerminationReason string           `json:"termination_reason,omitempty"`
	Message           string           `json:"message"`
	Feedback          string           `json:"feedback,omitempty"`
	Score             *int             `json:"score"`
}

type wsErrorEvent struct {
	Type        string `json:"type"`
	InterviewID string `json:"interview_id"`
	Code        string `json:"code"`
	Detail      string `json:"detail"`
	Retryable   bool   `json:"retryable"`
}

func (s *Server) handleInterviewWS(w http.ResponseWriter, r *http.Request) {
	interviewID := strings.TrimSpace(r.URL.Query().Get("interview_id"))
	if interviewID == "" {
		respondError(w, http.StatusBadRequest, "missing_interview_id", "query parameter interview_id is required")
		return
	}
	sess, err := s.orchestrator.Session(interviewID)
	if err != nil {
		respondError(w, http.StatusNotFound, "interview_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	defer s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()

	// Replay the latest interviewer message so a reconnecting client can
	// resume mid-interview.
	if opening := lastInterviewerMessage(sess); opening != "" {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		_ = conn.WriteJSON(wsTurnEvent{
			Type:        "turn",
			InterviewID: interviewID,
			Status:      sess.Status,
			Message:     opening,
		})
	}

	conn.SetReadLimit(256 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))

		var msg wsClientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "answer" {
			s.writeWSError(conn, interviewID, "invalid_client_message", "expected {\"type\":\"answer\",\"content\":...}", false)
			continue
		}

		res, err := s.orchestrator.SubmitAnswer(r.Context(), interviewID, msg.Content)
		if err != nil {
			code, retryable := wsErrorCode(err)
			s.writeWSError(conn, interviewID, code, err.Error(), retryable)
			if !retryable {
				return
			}
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(wsTurnEvent{
			Type:              "turn",
			InterviewID:       interviewID,
			Status:            res.Status,
			TerminationReason: res.TerminationReason,
			Message:           res.Message,
			Feedback:          res.Feedback,
			Score:             res.Score,
		}); err != nil {
			s.log.Warn("websocket write failed",
				zap.String("interview_id", interviewID), zap.Error(err))
			return
		}

		if res.Status == interview.StatusCompleted {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "interview completed"))
			return
		}
	}
}

func (s *Server) writeWSError(conn *websocket.Conn, interviewID, code, detail string, retryable bool) {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_ = conn.WriteJSON(wsErrorEvent{
		Type:        "error",
		InterviewID: interviewID,
		Code:        code,
		Detail:      detail,
		Retryable:   retryable,
	})
}

func wsErrorCode(err error) (code string, retryable bool) {
	switch {
	case errors.Is(err, interview.ErrInvalidInput):
		return "invalid_input", true
	case errors.Is(err, completion.ErrUnavailable):
		return "upstream_unavailable", true
	case errors.Is(err, interview.ErrInvalidState):
		return "invalid_state", false
	case errors.Is(err, interview.ErrNotFound):
		return "interview_not_found", false
	default:
		return "internal_error", false
	}
}

func lastInterviewerMessage(sess *interview.Session) string {
	for i := len(sess.Transcript) - 1; i >= 0; i-- {
		if sess.Transcript[i].Role == completion.RoleAssistant {
			return sess.Transcript[i].Content
		}
	}
	return ""
}
