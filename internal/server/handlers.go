package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/gap"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/types"
)

type createSessionRequest struct {
	Type              string   `json:"type" validate:"required,oneof=technical behavioral competency general"`
	QuestionCount     int      `json:"question_count" validate:"omitempty,min=1,max=20"`
	Adaptive          *bool    `json:"adaptive"`
	FollowUpThreshold *float64 `json:"follow_up_threshold" validate:"omitempty,min=0,max=1"`
	ResumeText        string   `json:"resume_text"`
	JobText           string   `json:"job_text"`
}

type createSessionResponse struct {
	SessionID     uuid.UUID       `json:"session_id"`
	State         string          `json:"state"`
	QuestionCount int             `json:"question_count"`
	FirstQuestion *types.Question `json:"first_question"`
}

type submitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required,uuid"`
	Answer     string `json:"answer"`
}

type submitAnswerResponse struct {
	Evaluation   *types.Evaluation `json:"evaluation"`
	NextQuestion *types.Question   `json:"next_question,omitempty"`
	Done         bool              `json:"done"`
}

type abortSessionRequest struct {
	Reason string `json:"reason"`
}

type reportResponse struct {
	Summary         *types.SessionSummary  `json:"summary"`
	Recommendations []types.Recommendation `json:"recommendations,omitempty"`
}

// handleCreateSession extracts entities from the supplied documents, runs the
// gap analysis, and starts a new session. The first question is returned
// immediately so clients never need a separate start call.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	cfg := interview.Config{
		Type:              types.InterviewType(req.Type),
		QuestionCount:     req.QuestionCount,
		Adaptive:          true,
		FollowUpThreshold: interview.DefaultFollowUpThreshold,
	}
	if cfg.QuestionCount == 0 {
		cfg.QuestionCount = interview.DefaultQuestionCount
	}
	if req.Adaptive != nil {
		cfg.Adaptive = *req.Adaptive
	}
	if req.FollowUpThreshold != nil {
		cfg.FollowUpThreshold = *req.FollowUpThreshold
	}

	var (
		profile     *types.CandidateProfile
		requirement *types.JobRequirement
		gaps        []types.GapEntry
	)
	if req.ResumeText != "" || req.JobText != "" {
		if s.extractor == nil {
			s.errorResponse(w, &ErrValidation{Field: "resume_text", Message: "document extraction is not enabled on this server"})
			return
		}
		var err error
		if req.ResumeText != "" {
			if profile, err = s.extractor.ExtractResume(r.Context(), req.ResumeText); err != nil {
				s.errorResponse(w, err)
				return
			}
		}
		if req.JobText != "" {
			if requirement, err = s.extractor.ExtractJob(r.Context(), req.JobText); err != nil {
				s.errorResponse(w, err)
				return
			}
		}
		if profile != nil && requirement != nil {
			gaps = gap.Analyze(profile, requirement, s.gapWeights)
		}
	}

	session, err := s.engine.CreateSession(r.Context(), cfg, profile, requirement, gaps)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	first, err := s.engine.Start(r.Context(), session.ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.gapsMu.Lock()
	s.sessionGaps[session.ID] = gaps
	s.gapsMu.Unlock()

	s.jsonResponse(w, http.StatusCreated, createSessionResponse{
		SessionID:     session.ID,
		State:         string(types.StateAwaitingAnswer),
		QuestionCount: len(session.Questions),
		FirstQuestion: first,
	})
}

// handleGetSession returns a session snapshot
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	session, err := s.engine.GetSession(sessionID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, session)
}

// handleSubmitAnswer records an answer, evaluates it, and advances the session
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, questionID, req, err := s.parseSubmission(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	eval, next, err := s.engine.SubmitAnswer(r.Context(), sessionID, questionID, req.Answer)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, submitAnswerResponse{
		Evaluation:   eval,
		NextQuestion: next,
		Done:         next == nil,
	})
}

// handleSubmitAnswerStream is the SSE variant of answer submission. The
// evaluation and the next question arrive as separate events so clients can
// render feedback while the follow-up decision is still pending.
func (s *Server) handleSubmitAnswerStream(w http.ResponseWriter, r *http.Request) {
	sessionID, questionID, req, err := s.parseSubmission(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	eval, next, err := s.engine.SubmitAnswer(r.Context(), sessionID, questionID, req.Answer)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	if err := sse.WriteEvent("evaluation", eval); err != nil {
		s.log.Warn("failed to stream evaluation", zap.Error(err))
		return
	}
	if next != nil {
		if err := sse.WriteEvent("question", next); err != nil {
			s.log.Warn("failed to stream next question", zap.Error(err))
		}
		return
	}
	sse.WriteComplete(sessionID.String(), string(types.StateCompleted))
}

// handleAbortSession terminates a session early
func (s *Server) handleAbortSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req abortSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
			return
		}
	}
	if req.Reason == "" {
		req.Reason = "aborted by client"
	}

	if err := s.engine.Abort(r.Context(), sessionID, req.Reason); err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"session_id": sessionID.String(),
		"state":      string(types.StateAborted),
	})
}

// handleFinalizeSession builds the report for a completed session, with
// study recommendations when a recommender is wired.
func (s *Server) handleFinalizeSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	summary, err := s.engine.Finalize(r.Context(), sessionID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	resp := reportResponse{Summary: summary}
	if s.recommender != nil {
		s.gapsMu.Lock()
		gaps := s.sessionGaps[sessionID]
		s.gapsMu.Unlock()
		resp.Recommendations = s.recommender.Recommend(r.Context(), gaps, summary)
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// sessionID parses the session ID path segment
func (s *Server) sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a valid UUID"}
	}
	return id, nil
}

// parseSubmission parses the path and body shared by both answer endpoints.
func (s *Server) parseSubmission(r *http.Request) (sessionID, questionID uuid.UUID, req submitAnswerRequest, err error) {
	if sessionID, err = s.sessionID(r); err != nil {
		return
	}
	if err = s.decodeAndValidate(r, &req); err != nil {
		return
	}
	// validate tag guarantees this parses
	questionID = uuid.MustParse(req.QuestionID)
	return
}

// decodeAndValidate decodes a JSON body into req and runs struct validation.
func (s *Server) decodeAndValidate(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ErrValidation{Field: verrs[0].Field(), Message: "failed " + verrs[0].Tag() + " validation"}
		}
		return &ErrValidation{Field: "request", Message: err.Error()}
	}
	return nil
}
