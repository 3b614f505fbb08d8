package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/question"
	"github.com/jonathan/interview-coach/internal/types"
)

// fakeGenerator returns a fixed question list and scripted follow-ups.
type fakeGenerator struct {
	questions     []types.Question
	generateErr   error
	followUpErr   error
	followUpCalls int
}

func (g *fakeGenerator) Generate(_ context.Context, req question.Request) ([]types.Question, error) {
	if g.generateErr != nil {
		return nil, g.generateErr
	}
	out := make([]types.Question, len(g.questions))
	copy(out, g.questions)
	return out, nil
}

func (g *fakeGenerator) GenerateFollowUp(_ context.Context, original types.Question, _ types.Answer) (*types.Question, error) {
	g.followUpCalls++
	if g.followUpErr != nil {
		return nil, g.followUpErr
	}
	return &types.Question{
		ID:          uuid.New(),
		Text:        "Follow-up on: " + original.Text,
		Type:        original.Type,
		TargetSkill: original.TargetSkill,
		FollowUp:    true,
	}, nil
}

// fakeEvaluator returns scripted scores in submission order. A non-nil block
// channel makes Evaluate wait, which lets tests abort mid-evaluation.
type fakeEvaluator struct {
	mu     sync.Mutex
	scores []float64
	err    error
	block  chan struct{}
	calls  int
}

func (e *fakeEvaluator) Evaluate(_ context.Context, _ types.Question, answerText string) (*types.Evaluation, error) {
	if e.block != nil {
		<-e.block
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	score := 0.8
	if len(e.scores) > 0 {
		score = e.scores[0]
		e.scores = e.scores[1:]
	}
	return &types.Evaluation{
		Score:      score,
		Strengths:  []string{},
		Weaknesses: []string{"could be more specific"},
	}, nil
}

func makeQuestions(skills ...string) []types.Question {
	out := make([]types.Question, 0, len(skills))
	for _, s := range skills {
		out = append(out, types.Question{
			ID:          uuid.New(),
			Text:        "Question about " + s,
			Type:        types.InterviewTechnical,
			TargetSkill: s,
		})
	}
	return out
}

func technicalConfig(count int) Config {
	return Config{
		Type:              types.InterviewTechnical,
		QuestionCount:     count,
		Adaptive:          false,
		FollowUpThreshold: DefaultFollowUpThreshold,
	}
}

func startedSession(t *testing.T, e *Engine, cfg Config) (*types.InterviewSession, *types.Question) {
	t.Helper()
	ctx := context.Background()
	sess, err := e.CreateSession(ctx, cfg, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StateCreated, sess.State)

	first, err := e.Start(ctx, sess.ID)
	require.NoError(t, err)
	return sess, first
}

func TestEngine_FullLifecycle(t *testing.T) {
	gen := &fakeGenerator{questions: makeQuestions("Go", "Kubernetes", "PostgreSQL")}
	eval := &fakeEvaluator{scores: []float64{0.9, 0.4, 0.7}}
	e := NewEngine(gen, eval, nil, nil)
	ctx := context.Background()

	sess, first := startedSession(t, e, technicalConfig(3))
	assert.Equal(t, "Question about Go", first.Text)

	ev, next, err := e.SubmitAnswer(ctx, sess.ID, first.ID, "answer one")
	require.NoError(t, err)
	assert.Equal(t, 0.9, ev.Score)
	require.NotNil(t, next)
	assert.Equal(t, "Question about Kubernetes", next.Text)

	ev, next, err = e.SubmitAnswer(ctx, sess.ID, next.ID, "answer two")
	require.NoError(t, err)
	assert.Equal(t, 0.4, ev.Score)
	require.NotNil(t, next)

	ev, next, err = e.SubmitAnswer(ctx, sess.ID, next.ID, "answer three")
	require.NoError(t, err)
	assert.Equal(t, 0.7, ev.Score)
	assert.Nil(t, next, "no next question after the last answer")

	current, err := e.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateCompleted, current.State)
	assert.Len(t, current.Answers, 3)

	summary, err := e.Finalize(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.QuestionCount)
	assert.InDelta(t, (0.9+0.4+0.7)/3, summary.MeanScore, 1e-9)

	// Weakest skill first.
	require.Len(t, summary.WeakestSkills, 3)
	assert.Equal(t, "Kubernetes", summary.WeakestSkills[0].Skill)
	assert.InDelta(t, 0.4, summary.WeakestSkills[0].MeanScore, 1e-9)

	// Results keep question order.
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "Question about Go", summary.Results[0].Question)
	assert.Equal(t, "answer one", summary.Results[0].Answer)
}

func TestEngine_InvalidConfiguration(t *testing.T) {
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, &fakeEvaluator{}, nil, nil)
	ctx := context.Background()

	cases := []Config{
		{Type: "panel", QuestionCount: 3, FollowUpThreshold: 0.5},
		{Type: types.InterviewTechnical, QuestionCount: 0, FollowUpThreshold: 0.5},
		{Type: types.InterviewTechnical, QuestionCount: MaxQuestions + 1, FollowUpThreshold: 0.5},
		{Type: types.InterviewTechnical, QuestionCount: 3, FollowUpThreshold: 1.5},
		{Type: types.InterviewTechnical, QuestionCount: 3, FollowUpThreshold: -0.1},
	}
	for _, cfg := range cases {
		_, err := e.CreateSession(ctx, cfg, nil, nil, nil)
		var cfgErr *InvalidConfigurationError
		assert.ErrorAs(t, err, &cfgErr, "config %+v", cfg)
	}
}

func TestEngine_GenerationErrorPropagates(t *testing.T) {
	genErr := &question.InsufficientContextError{Type: types.InterviewTechnical}
	e := NewEngine(&fakeGenerator{generateErr: genErr}, &fakeEvaluator{}, nil, nil)

	_, err := e.CreateSession(context.Background(), technicalConfig(3), nil, nil, nil)
	var icErr *question.InsufficientContextError
	assert.ErrorAs(t, err, &icErr)
}

func TestEngine_StartTwice(t *testing.T) {
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, &fakeEvaluator{}, nil, nil)
	sess, _ := startedSession(t, e, technicalConfig(1))

	_, err := e.Start(context.Background(), sess.ID)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, types.StateAwaitingAnswer, stateErr.State)
}

func TestEngine_SubmitBeforeStart(t *testing.T) {
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, &fakeEvaluator{}, nil, nil)
	sess, err := e.CreateSession(context.Background(), technicalConfig(1), nil, nil, nil)
	require.NoError(t, err)

	_, _, err = e.SubmitAnswer(context.Background(), sess.ID, sess.Questions[0].ID, "early")
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, types.StateCreated, stateErr.State)
}

func TestEngine_OutOfOrderSubmission(t *testing.T) {
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go", "Kubernetes")}, &fakeEvaluator{}, nil, nil)
	ctx := context.Background()
	sess, first := startedSession(t, e, technicalConfig(2))

	wrongID := sess.Questions[1].ID
	_, _, err := e.SubmitAnswer(ctx, sess.ID, wrongID, "answering ahead")

	var oooErr *OutOfOrderError
	require.ErrorAs(t, err, &oooErr)
	assert.Equal(t, first.ID, oooErr.Expected)
	assert.Equal(t, wrongID, oooErr.Got)

	// The session is untouched: still awaiting the same question, no answer
	// recorded, and the correct submission still works.
	current, err := e.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateAwaitingAnswer, current.State)
	assert.Empty(t, current.Answers)
	assert.Equal(t, 0, current.CurrentIndex)

	_, _, err = e.SubmitAnswer(ctx, sess.ID, first.ID, "correct order")
	require.NoError(t, err)
}

func TestEngine_UnknownSession(t *testing.T) {
	e := NewEngine(&fakeGenerator{}, &fakeEvaluator{}, nil, nil)

	_, err := e.GetSession(uuid.New())
	var nfErr *SessionNotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestEngine_AdaptiveFollowUp(t *testing.T) {
	gen := &fakeGenerator{questions: makeQuestions("Go", "Kubernetes", "PostgreSQL")}
	// First answer weak, follow-up answer also weak, rest fine.
	eval := &fakeEvaluator{scores: []float64{0.2, 0.3, 0.9, 0.9, 0.9}}
	e := NewEngine(gen, eval, nil, nil)
	ctx := context.Background()

	cfg := technicalConfig(3)
	cfg.Adaptive = true
	sess, first := startedSession(t, e, cfg)

	_, next, err := e.SubmitAnswer(ctx, sess.ID, first.ID, "weak answer")
	require.NoError(t, err)

	// A follow-up on Go was inserted as the next question.
	require.NotNil(t, next)
	assert.True(t, next.FollowUp)
	assert.Equal(t, "Go", next.TargetSkill)
	assert.Equal(t, 1, gen.followUpCalls)

	current, err := e.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Len(t, current.Questions, 4, "one question inserted")

	// The follow-up answer is weak too, but follow-ups never chain.
	_, next, err = e.SubmitAnswer(ctx, sess.ID, next.ID, "still weak")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.followUpCalls, "no follow-up on a follow-up")
	require.NotNil(t, next)
	assert.Equal(t, "Question about Kubernetes", next.Text)

	// Finish the remaining questions.
	for next != nil {
		_, next, err = e.SubmitAnswer(ctx, sess.ID, next.ID, "fine answer")
		require.NoError(t, err)
	}

	current, err = e.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateCompleted, current.State)
	assert.Len(t, current.Answers, 4)
}

func TestEngine_FollowUpThresholdBoundary(t *testing.T) {
	gen := &fakeGenerator{questions: makeQuestions("Go")}
	// Score exactly at the threshold does not trigger a follow-up.
	eval := &fakeEvaluator{scores: []float64{DefaultFollowUpThreshold}}
	e := NewEngine(gen, eval, nil, nil)

	cfg := technicalConfig(1)
	cfg.Adaptive = true
	sess, first := startedSession(t, e, cfg)

	_, next, err := e.SubmitAnswer(context.Background(), sess.ID, first.ID, "borderline")
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, 0, gen.followUpCalls)
}

func TestEngine_FollowUpGenerationFailureIsNonFatal(t *testing.T) {
	gen := &fakeGenerator{
		questions:   makeQuestions("Go", "Kubernetes"),
		followUpErr: errors.New("model unavailable"),
	}
	eval := &fakeEvaluator{scores: []float64{0.1, 0.9}}
	e := NewEngine(gen, eval, nil, nil)
	ctx := context.Background()

	cfg := technicalConfig(2)
	cfg.Adaptive = true
	sess, first := startedSession(t, e, cfg)

	_, next, err := e.SubmitAnswer(ctx, sess.ID, first.ID, "weak answer")
	require.NoError(t, err, "follow-up failure must not fail the submission")
	require.NotNil(t, next)
	assert.False(t, next.FollowUp)

	current, err := e.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Len(t, current.Questions, 2, "nothing inserted")
}

func TestEngine_AbortDuringEvaluationDiscardsResult(t *testing.T) {
	gen := &fakeGenerator{questions: makeQuestions("Go", "Kubernetes")}
	eval := &fakeEvaluator{block: make(chan struct{})}
	e := NewEngine(gen, eval, nil, nil)
	ctx := context.Background()

	sess, first := startedSession(t, e, technicalConfig(2))

	type result struct {
		eval *types.Evaluation
		err  error
	}
	done := make(chan result, 1)
	go func() {
		ev, _, err := e.SubmitAnswer(ctx, sess.ID, first.ID, "slow answer")
		done <- result{eval: ev, err: err}
	}()

	// Wait for the submission to enter the evaluating state.
	require.Eventually(t, func() bool {
		current, err := e.GetSession(sess.ID)
		return err == nil && current.State == types.StateEvaluating
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, e.Abort(ctx, sess.ID, "user cancelled"))

	// Let the evaluation finish; its result must be discarded.
	close(eval.block)
	res := <-done

	var stateErr *InvalidStateError
	require.ErrorAs(t, res.err, &stateErr)
	assert.Nil(t, res.eval)

	current, err := e.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateAborted, current.State)
	assert.Equal(t, "user cancelled", current.AbortReason)
	assert.Empty(t, current.Answers, "stale evaluation must not record an answer")
}

func TestEngine_AbortFromTerminalState(t *testing.T) {
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, &fakeEvaluator{}, nil, nil)
	ctx := context.Background()
	sess, first := startedSession(t, e, technicalConfig(1))

	_, _, err := e.SubmitAnswer(ctx, sess.ID, first.ID, "answer")
	require.NoError(t, err)

	err = e.Abort(ctx, sess.ID, "too late")
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, types.StateCompleted, stateErr.State)
}

func TestEngine_FinalizeRequiresCompleted(t *testing.T) {
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, &fakeEvaluator{}, nil, nil)
	ctx := context.Background()
	sess, _ := startedSession(t, e, technicalConfig(1))

	_, err := e.Finalize(ctx, sess.ID)
	var ncErr *NotCompletedError
	require.ErrorAs(t, err, &ncErr)
	assert.Equal(t, types.StateAwaitingAnswer, ncErr.State)

	require.NoError(t, e.Abort(ctx, sess.ID, "changed my mind"))
	_, err = e.Finalize(ctx, sess.ID)
	require.ErrorAs(t, err, &ncErr)
	assert.Equal(t, types.StateAborted, ncErr.State)
}

func TestEngine_EvaluationErrorRevertsState(t *testing.T) {
	eval := &fakeEvaluator{err: errors.New("transient failure")}
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, eval, nil, nil)
	ctx := context.Background()
	sess, first := startedSession(t, e, technicalConfig(1))

	_, _, err := e.SubmitAnswer(ctx, sess.ID, first.ID, "answer")
	require.Error(t, err)

	current, getErr := e.GetSession(sess.ID)
	require.NoError(t, getErr)
	assert.Equal(t, types.StateAwaitingAnswer, current.State, "question stays current for resubmission")
	assert.Empty(t, current.Answers)

	// Resubmission succeeds once the evaluator recovers.
	eval.mu.Lock()
	eval.err = nil
	eval.mu.Unlock()
	_, _, err = e.SubmitAnswer(ctx, sess.ID, first.ID, "answer again")
	require.NoError(t, err)
}

func TestEngine_EvaluationTimeoutAborts(t *testing.T) {
	eval := &fakeEvaluator{err: context.DeadlineExceeded}
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, eval, nil, nil)
	ctx := context.Background()
	sess, first := startedSession(t, e, technicalConfig(1))

	_, _, err := e.SubmitAnswer(ctx, sess.ID, first.ID, "answer")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	current, getErr := e.GetSession(sess.ID)
	require.NoError(t, getErr)
	assert.Equal(t, types.StateAborted, current.State)
	assert.Equal(t, "evaluation timeout", current.AbortReason)
}

func TestEngine_GetSessionReturnsCopy(t *testing.T) {
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, &fakeEvaluator{}, nil, nil)
	sess, _ := startedSession(t, e, technicalConfig(1))

	snapshot, err := e.GetSession(sess.ID)
	require.NoError(t, err)
	snapshot.Questions[0].Text = "tampered"
	snapshot.State = types.StateAborted

	fresh, err := e.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Question about Go", fresh.Questions[0].Text)
	assert.Equal(t, types.StateAwaitingAnswer, fresh.State)
}

// memoryStore records persistence calls for assertions.
type memoryStore struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*types.InterviewSession
	summaries map[uuid.UUID]*types.SessionSummary
	saves     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions:  make(map[uuid.UUID]*types.InterviewSession),
		summaries: make(map[uuid.UUID]*types.SessionSummary),
	}
}

func (m *memoryStore) SaveSession(_ context.Context, s *types.InterviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	m.saves++
	return nil
}

func (m *memoryStore) GetSession(_ context.Context, id uuid.UUID) (*types.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s.Clone(), nil
}

func (m *memoryStore) SaveSummary(_ context.Context, s *types.SessionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[s.SessionID] = s
	return nil
}

func (m *memoryStore) GetSummary(_ context.Context, id uuid.UUID) (*types.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func TestEngine_PersistsSnapshots(t *testing.T) {
	store := newMemoryStore()
	e := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, &fakeEvaluator{}, store, nil)
	ctx := context.Background()

	sess, first := startedSession(t, e, technicalConfig(1))
	_, _, err := e.SubmitAnswer(ctx, sess.ID, first.ID, "answer")
	require.NoError(t, err)

	saved, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateCompleted, saved.State)

	_, err = e.Finalize(ctx, sess.ID)
	require.NoError(t, err)
	_, err = store.GetSummary(ctx, sess.ID)
	require.NoError(t, err)
}

func TestEngine_RestoresSessionFromStore(t *testing.T) {
	store := newMemoryStore()
	first := NewEngine(&fakeGenerator{questions: makeQuestions("Go")}, &fakeEvaluator{}, store, nil)
	sess, q := startedSession(t, first, technicalConfig(1))

	// A fresh engine with the same store picks the session back up.
	second := NewEngine(&fakeGenerator{}, &fakeEvaluator{}, store, nil)
	restored, err := second.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateAwaitingAnswer, restored.State)

	_, next, err := second.SubmitAnswer(context.Background(), sess.ID, q.ID, "answer after restart")
	require.NoError(t, err)
	assert.Nil(t, next)
}
