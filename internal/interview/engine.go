// Package interview owns the mock-interview session lifecycle. All session
// state lives behind the Engine; callers interact only through lifecycle
// operations and receive defensive copies.
package interview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/evaluation"
	"github.com/jonathan/interview-coach/internal/question"
	"github.com/jonathan/interview-coach/internal/types"
)

// Session limits and the default adaptive follow-up policy.
const (
	MinQuestions             = 1
	MaxQuestions             = 20
	DefaultQuestionCount     = 5
	DefaultFollowUpThreshold = 0.5
)

// Config is the per-session configuration.
type Config struct {
	Type              types.InterviewType `json:"type"`
	QuestionCount     int                 `json:"question_count"`
	Adaptive          bool                `json:"adaptive"`
	FollowUpThreshold float64             `json:"follow_up_threshold"`
}

// DefaultConfig returns a general-interview configuration with adaptive
// follow-ups enabled.
func DefaultConfig() Config {
	return Config{
		Type:              types.InterviewGeneral,
		QuestionCount:     DefaultQuestionCount,
		Adaptive:          true,
		FollowUpThreshold: DefaultFollowUpThreshold,
	}
}

func (c Config) validate() error {
	if !types.ValidInterviewType(c.Type) {
		return &InvalidConfigurationError{Message: fmt.Sprintf("unknown interview type %q", c.Type)}
	}
	if c.QuestionCount < MinQuestions || c.QuestionCount > MaxQuestions {
		return &InvalidConfigurationError{Message: fmt.Sprintf("question count must be between %d and %d, got %d", MinQuestions, MaxQuestions, c.QuestionCount)}
	}
	if c.FollowUpThreshold < 0 || c.FollowUpThreshold > 1 {
		return &InvalidConfigurationError{Message: fmt.Sprintf("follow-up threshold must be in [0,1], got %g", c.FollowUpThreshold)}
	}
	return nil
}

// session wraps the shared state for one run. The mutex serializes all
// transitions; epoch increments on abort so an in-flight evaluation started
// before the abort can detect it is stale and discard its result.
type session struct {
	mu        sync.Mutex
	data      *types.InterviewSession
	cfg       Config
	epoch     int
	followUps map[uuid.UUID]bool // questions that already spawned a follow-up
}

// Engine runs interview sessions. Safe for concurrent use; each session's
// transitions are serialized independently.
type Engine struct {
	generator question.Generator
	evaluator evaluation.Evaluator
	store     Store
	log       *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewEngine creates a session engine. The store may be nil, in which case
// sessions live only in memory.
func NewEngine(generator question.Generator, evaluator evaluation.Evaluator, store Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		generator: generator,
		evaluator: evaluator,
		store:     store,
		log:       log,
		sessions:  make(map[uuid.UUID]*session),
	}
}

// CreateSession generates the question list and registers a new session in
// the created state.
func (e *Engine) CreateSession(ctx context.Context, cfg Config, profile *types.CandidateProfile, requirement *types.JobRequirement, gaps []types.GapEntry) (*types.InterviewSession, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	questions, err := e.generator.Generate(ctx, question.Request{
		Type:        cfg.Type,
		Count:       cfg.QuestionCount,
		Profile:     profile,
		Requirement: requirement,
		Gaps:        gaps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	now := time.Now()
	data := &types.InterviewSession{
		ID:        uuid.New(),
		Type:      cfg.Type,
		State:     types.StateCreated,
		Questions: questions,
		Answers:   make(map[uuid.UUID]types.Answer),
		StartedAt: now,
		UpdatedAt: now,
	}

	s := &session{
		data:      data,
		cfg:       cfg,
		followUps: make(map[uuid.UUID]bool),
	}

	e.mu.Lock()
	e.sessions[data.ID] = s
	e.mu.Unlock()

	e.persist(ctx, data)
	e.log.Info("session created",
		zap.String("session_id", data.ID.String()),
		zap.String("type", string(cfg.Type)),
		zap.Int("questions", len(questions)))

	return data.Clone(), nil
}

// Start moves a created session to awaiting_answer and returns the first
// question.
func (e *Engine) Start(ctx context.Context, sessionID uuid.UUID) (*types.Question, error) {
	s, err := e.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.State != types.StateCreated {
		return nil, &InvalidStateError{SessionID: sessionID, State: s.data.State, Operation: "start"}
	}

	s.data.State = types.StateAwaitingAnswer
	s.data.UpdatedAt = time.Now()
	e.persist(ctx, s.data)

	q := *s.data.CurrentQuestion()
	return &q, nil
}

// SubmitAnswer accepts the answer to the current question, evaluates it, and
// advances the session. Returns the evaluation and the next question, which
// is nil once the session completes.
//
// The session sits in the evaluating state while the evaluator runs, with the
// lock released. An abort during that window wins: the stale evaluation
// result is discarded when the submission reacquires the lock.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, questionID uuid.UUID, answerText string) (*types.Evaluation, *types.Question, error) {
	s, err := e.get(sessionID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	if s.data.State != types.StateAwaitingAnswer {
		state := s.data.State
		s.mu.Unlock()
		return nil, nil, &InvalidStateError{SessionID: sessionID, State: state, Operation: "submit answer"}
	}

	current := *s.data.CurrentQuestion()
	if current.ID != questionID {
		s.mu.Unlock()
		return nil, nil, &OutOfOrderError{SessionID: sessionID, Expected: current.ID, Got: questionID}
	}

	s.data.State = types.StateEvaluating
	s.data.UpdatedAt = time.Now()
	epoch := s.epoch
	s.mu.Unlock()

	eval, evalErr := e.evaluator.Evaluate(ctx, current, answerText)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.data.State != types.StateEvaluating {
		// Aborted while evaluating; the result is stale and must not touch
		// the session.
		e.log.Info("discarding stale evaluation result",
			zap.String("session_id", sessionID.String()),
			zap.String("question_id", questionID.String()))
		return nil, nil, &InvalidStateError{SessionID: sessionID, State: s.data.State, Operation: "record evaluation"}
	}

	if evalErr != nil {
		if errors.Is(evalErr, context.DeadlineExceeded) {
			e.abortLocked(ctx, s, "evaluation timeout")
			return nil, nil, fmt.Errorf("evaluation timed out: %w", evalErr)
		}
		// Transient failure: the question stays current so the answer can be
		// resubmitted.
		s.data.State = types.StateAwaitingAnswer
		s.data.UpdatedAt = time.Now()
		return nil, nil, fmt.Errorf("evaluation failed: %w", evalErr)
	}

	s.data.Answers[current.ID] = types.Answer{
		QuestionID: current.ID,
		RawText:    answerText,
		Evaluation: eval,
	}
	s.data.CurrentIndex++

	e.maybeInsertFollowUp(ctx, s, current, eval)

	if s.data.CurrentIndex >= len(s.data.Questions) {
		s.data.State = types.StateCompleted
		e.log.Info("session completed", zap.String("session_id", sessionID.String()))
	} else {
		s.data.State = types.StateAwaitingAnswer
	}
	s.data.UpdatedAt = time.Now()
	e.persist(ctx, s.data)

	evalCopy := *eval
	var next *types.Question
	if q := s.data.CurrentQuestion(); q != nil {
		qCopy := *q
		next = &qCopy
	}
	return &evalCopy, next, nil
}

// maybeInsertFollowUp inserts one adaptive follow-up after a weak answer.
// Follow-ups never chain: a question spawns at most one, and follow-up
// questions spawn none, so the session length is bounded by twice the
// configured count. Generation failure is logged and skipped, never fatal.
func (e *Engine) maybeInsertFollowUp(ctx context.Context, s *session, answered types.Question, eval *types.Evaluation) {
	if !s.cfg.Adaptive || eval.Score >= s.cfg.FollowUpThreshold {
		return
	}
	if answered.FollowUp || s.followUps[answered.ID] {
		return
	}

	followUp, err := e.generator.GenerateFollowUp(ctx, answered, s.data.Answers[answered.ID])
	if err != nil {
		e.log.Warn("follow-up generation failed, continuing without",
			zap.String("session_id", s.data.ID.String()),
			zap.Error(err))
		return
	}

	s.followUps[answered.ID] = true
	idx := s.data.CurrentIndex
	s.data.Questions = append(s.data.Questions, types.Question{})
	copy(s.data.Questions[idx+1:], s.data.Questions[idx:])
	s.data.Questions[idx] = *followUp

	e.log.Info("inserted follow-up question",
		zap.String("session_id", s.data.ID.String()),
		zap.String("target_skill", followUp.TargetSkill),
		zap.Float64("trigger_score", eval.Score))
}

// Abort terminates a session from any non-terminal state. Any in-flight
// evaluation is invalidated and its result discarded.
func (e *Engine) Abort(ctx context.Context, sessionID uuid.UUID, reason string) error {
	s, err := e.get(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.State.Terminal() {
		return &InvalidStateError{SessionID: sessionID, State: s.data.State, Operation: "abort"}
	}

	e.abortLocked(ctx, s, reason)
	return nil
}

func (e *Engine) abortLocked(ctx context.Context, s *session, reason string) {
	s.epoch++
	s.data.State = types.StateAborted
	s.data.AbortReason = reason
	s.data.UpdatedAt = time.Now()
	e.persist(ctx, s.data)

	e.log.Info("session aborted",
		zap.String("session_id", s.data.ID.String()),
		zap.String("reason", reason))
}

// Finalize aggregates a completed session into a summary. Sessions in any
// other state, including aborted, cannot be finalized.
func (e *Engine) Finalize(ctx context.Context, sessionID uuid.UUID) (*types.SessionSummary, error) {
	s, err := e.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.State != types.StateCompleted {
		return nil, &NotCompletedError{SessionID: sessionID, State: s.data.State}
	}

	summary := buildSummary(s.data)
	if e.store != nil {
		if err := e.store.SaveSummary(ctx, summary); err != nil {
			e.log.Warn("failed to persist session summary", zap.Error(err))
		}
	}
	return summary, nil
}

// GetSession returns a snapshot of a session's current state.
func (e *Engine) GetSession(sessionID uuid.UUID) (*types.InterviewSession, error) {
	s, err := e.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone(), nil
}

// get resolves a session from memory, falling back to the store so sessions
// survive a restart.
func (e *Engine) get(sessionID uuid.UUID) (*session, error) {
	e.mu.RLock()
	s, ok := e.sessions[sessionID]
	e.mu.RUnlock()
	if ok {
		return s, nil
	}

	if e.store != nil {
		data, err := e.store.GetSession(context.Background(), sessionID)
		if err == nil && data != nil {
			s = &session{
				data:      data,
				cfg:       DefaultConfig(),
				followUps: make(map[uuid.UUID]bool),
			}
			s.cfg.Type = data.Type
			e.mu.Lock()
			// Another goroutine may have restored it first.
			if existing, ok := e.sessions[sessionID]; ok {
				s = existing
			} else {
				e.sessions[sessionID] = s
			}
			e.mu.Unlock()
			return s, nil
		}
	}

	return nil, &SessionNotFoundError{SessionID: sessionID}
}

// persist writes a session snapshot when a store is configured.
func (e *Engine) persist(ctx context.Context, data *types.InterviewSession) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveSession(ctx, data); err != nil {
		e.log.Warn("failed to persist session snapshot",
			zap.String("session_id", data.ID.String()),
			zap.Error(err))
	}
}

// buildSummary aggregates answered questions into a report. Weakest skills
// come first; ties break alphabetically so reports are deterministic.
func buildSummary(data *types.InterviewSession) *types.SessionSummary {
	summary := &types.SessionSummary{
		SessionID:     data.ID,
		Type:          data.Type,
		QuestionCount: len(data.Questions),
		WeakestSkills: []types.SkillScore{},
		Results:       make([]types.QuestionResult, 0, len(data.Questions)),
	}

	var total float64
	scored := 0
	skillTotals := make(map[string]float64)
	skillCounts := make(map[string]int)

	for _, q := range data.Questions {
		answer, answered := data.Answers[q.ID]
		result := types.QuestionResult{
			QuestionID:  q.ID,
			Question:    q.Text,
			TargetSkill: q.TargetSkill,
		}
		if answered {
			result.Answer = answer.RawText
			result.Evaluation = answer.Evaluation
			if answer.Evaluation != nil {
				total += answer.Evaluation.Score
				scored++
				if q.TargetSkill != "" {
					skillTotals[q.TargetSkill] += answer.Evaluation.Score
					skillCounts[q.TargetSkill]++
				}
			}
		}
		summary.Results = append(summary.Results, result)
	}

	if scored > 0 {
		summary.MeanScore = total / float64(scored)
	}

	for skill, count := range skillCounts {
		summary.WeakestSkills = append(summary.WeakestSkills, types.SkillScore{
			Skill:     skill,
			MeanScore: skillTotals[skill] / float64(count),
			Questions: count,
		})
	}
	sort.Slice(summary.WeakestSkills, func(i, j int) bool {
		if summary.WeakestSkills[i].MeanScore != summary.WeakestSkills[j].MeanScore {
			return summary.WeakestSkills[i].MeanScore < summary.WeakestSkills[j].MeanScore
		}
		return summary.WeakestSkills[i].Skill < summary.WeakestSkills[j].Skill
	})

	return summary
}
