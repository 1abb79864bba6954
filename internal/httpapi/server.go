package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/abhinav2805-ux/resumeP/internal/completion"
	"github.com/abhinav2805-ux/resumeP/internal/config"
	"github.com/abhinav2805-ux/resumeP/internal/interview"
	"github.com/abhinav2805-ux/resumeP/internal/observability"
	"github.com/abhinav2805-ux/resumeP/internal/resume"
	"github.com/abhinav2805-ux/resumeP/internal/storage"
)

// maxResumeUpload bounds the multipart form held in memory for /parse-resume.
const maxResumeUpload = 10 << 20

type Server struct {
	cfg          config.Config
	orchestrator *interview.Orchestrator
	extractor    *resume.StructuredExtractor
	textExtract  resume.TextExtractor
	gateway      storage.Gateway
	metrics      *observability.Metrics
	log          *zap.Logger
	validate     *validator.Validate
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, orchestrator *interview.Orchestrator, extractor *resume.StructuredExtractor, textExtract resume.TextExtractor, gateway storage.Gateway, metrics *observability.Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		extractor:    extractor,
		textExtract:  textExtract,
		gateway:      gateway,
		metrics:      metrics,
		log:          log,
		validate:     validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Browser websocket connections must come from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/parse-resume", s.handleParseResume)
	r.Post("/start-interview", s.handleStartInterview)
	r.Post("/continue-interview", s.handleContinueInterview)
	r.Post("/end-interview", s.handleEndInterview)

	r.Get("/v1/interview/ws", s.handleInterviewWS)
	r.Get("/v1/users/{id}/interviews", s.handleUserInterviews)
	r.Get("/v1/users/{id}/resumes", s.handleUserResumes)
	r.Patch("/v1/interviews/{id}/status", s.handleUpdateStatus)
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.orchestrator.ActiveSessions(),
	})
}

func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeUpload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request is not a valid multipart form")
		return
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing_file", "no resume file provided in the 'resume' form field")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, "missing_filename", "resume file has no filename")
		return
	}
	kind, ok := resume.KindFromFilename(header.Filename)
	if !ok {
		respondError(w, http.StatusBadRequest, "unsupported_file_type", "unsupported file type, only PDF, DOCX and TXT are allowed")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxResumeUpload))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable_file", "could not read the uploaded file")
		return
	}

	text, err := s.textExtract.ExtractText(data, kind)
	if err != nil {
		s.log.Warn("text extraction failed",
			zap.String("filename", header.Filename), zap.Error(err))
		respondError(w, http.StatusUnprocessableEntity, "extraction_failed", err.Error())
		return
	}

	start := time.Now()
	profile, err := s.extractor.Extract(r.Context(), text)
	s.metrics.ObserveStage(observability.StageExtraction, time.Since(start))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	// Best effort: keep a copy of the parsed resume for the user when one is
	// identified. The parse result is returned either way.
	if userID := strings.TrimSpace(r.FormValue("userId")); userID != "" {
		rec := storage.ResumeRecord{
			UserID:     userID,
			Name:       profile.Name,
			Skills:     profile.Skills,
			Experience: profile.Experience,
			Projects:   profile.Projects,
		}
		if err := s.gateway.SaveResume(r.Context(), rec); err != nil {
			s.log.Warn("parsed resume not saved",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	respondJSON(w, http.StatusOK, profile)
}

type startInterviewRequest struct {
	ResumeData *interview.Profile `json:"resumeData" validate:"required"`
	UserID     string             `json:"userId"`
}

func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req startInterviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request JSON must include a valid 'resumeData' object")
		return
	}

	profile := *req.ResumeData
	profile.UserID = strings.TrimSpace(req.UserID)

	res, err := s.orchestrator.StartInterview(r.Context(), profile)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"interviewId":     res.SessionID,
		"message":         res.Message,
		"interviewStatus": res.Status,
	})
}

type continueInterviewRequest struct {
	InterviewID  string `json:"interviewId" validate:"required"`
	UserResponse string `json:"userResponse" validate:"required"`
}

func (s *Server) handleContinueInterview(w http.ResponseWriter, r *http.Request) {
	var req continueInterviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "interviewId and userResponse are required")
		return
	}

	res, err := s.orchestrator.SubmitAnswer(r.Context(), req.InterviewID, req.UserResponse)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"interviewStatus":   res.Status,
		"terminationReason": res.TerminationReason,
		"message":           res.Message,
		"feedback":          res.Feedback,
		"score":             res.Score,
	})
}

type endInterviewRequest struct {
	InterviewID string `json:"interviewId" validate:"required"`
}

func (s *Server) handleEndInterview(w http.ResponseWriter, r *http.Request) {
	var req endInterviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "interviewId is required")
		return
	}

	summary, err := s.orchestrator.EndInterview(r.Context(), req.InterviewID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"interviewId": summary.SessionID,
		"finalScore":  summary.FinalScore,
		"questions":   summary.Questions,
		"status":      interview.StatusCompleted,
	})
}

func (s *Server) handleUserInterviews(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "id"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "missing user id")
		return
	}
	records, err := s.orchestrator.UserInterviews(r.Context(), userID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"interviews": records})
}

func (s *Server) handleUserResumes(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "id"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "missing user id")
		return
	}
	records, err := s.gateway.GetUserResumes(r.Context(), userID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"resumes": records})
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress ending completed archived"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_interview_id", "missing interview id")
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "status must be one of in_progress, ending, completed, archived")
		return
	}

	if err := s.orchestrator.UpdateInterviewStatus(r.Context(), id, req.Status); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"interviewId": id, "status": req.Status})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.LatencySnapshot())
}

// respondDomainError maps domain failures onto HTTP statuses. Unknown errors
// become opaque 500s so internals never leak to the client.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interview.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, interview.ErrNotFound):
		respondError(w, http.StatusNotFound, "interview_not_found", "interview not found or invalid ID, it might have already ended or failed to start")
	case errors.Is(err, interview.ErrInvalidState):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, resume.ErrExtractionFailed):
		respondError(w, http.StatusUnprocessableEntity, "extraction_failed", err.Error())
	case errors.Is(err, completion.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "completion provider is unavailable")
	case errors.Is(err, interview.ErrPersistenceFailed):
		respondError(w, http.StatusInternalServerError, "persistence_failed", "interview was finalized but could not be saved")
	default:
		s.log.Error("unhandled request error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
