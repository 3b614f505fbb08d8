package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/gap"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/question"
	"github.com/jonathan/interview-coach/internal/recommend"
	"github.com/jonathan/interview-coach/internal/types"
)

type fakeGenerator struct{}

func (g *fakeGenerator) Generate(_ context.Context, req question.Request) ([]types.Question, error) {
	questions := make([]types.Question, req.Count)
	for i := range questions {
		questions[i] = types.Question{
			ID:   uuid.New(),
			Text: fmt.Sprintf("Question %d", i+1),
			Type: req.Type,
		}
	}
	return questions, nil
}

func (g *fakeGenerator) GenerateFollowUp(_ context.Context, original types.Question, _ types.Answer) (*types.Question, error) {
	return &types.Question{
		ID:       uuid.New(),
		Text:     "Tell me more.",
		Type:     original.Type,
		FollowUp: true,
	}, nil
}

type fakeEvaluator struct {
	score float64
}

func (e *fakeEvaluator) Evaluate(_ context.Context, _ types.Question, _ string) (*types.Evaluation, error) {
	return &types.Evaluation{
		Score:      e.score,
		Strengths:  []string{"clear"},
		Weaknesses: []string{},
	}, nil
}

func newTestServer(t *testing.T, jwtService *JWTService) *Server {
	t.Helper()

	engine := interview.NewEngine(&fakeGenerator{}, &fakeEvaluator{score: 0.9}, nil, zap.NewNop())
	catalog, err := recommend.LoadCatalog()
	require.NoError(t, err)
	recommender := recommend.NewRecommender(catalog, nil, recommend.DefaultOptions(), zap.NewNop())

	srv, err := New(Config{Port: 0}, Deps{
		Engine:      engine,
		Recommender: recommender,
		GapWeights:  gap.DefaultWeights(),
		JWT:         jwtService,
	})
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, srv *Server, count int) createSessionResponse {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/sessions", map[string]any{
		"type":           "behavioral",
		"question_count": count,
		"adaptive":       false,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp createSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := createSession(t, srv, 2)
	assert.NotEqual(t, uuid.Nil, resp.SessionID)
	assert.Equal(t, "awaiting_answer", resp.State)
	assert.Equal(t, 2, resp.QuestionCount)
	require.NotNil(t, resp.FirstQuestion)
	assert.Equal(t, "Question 1", resp.FirstQuestion.Text)
}

func TestCreateSession_Validation(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/sessions", map[string]any{"type": "trivia"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/sessions", map[string]any{"type": "technical", "question_count": 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString("{not json"))
	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFullSessionOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)
	created := createSession(t, srv, 2)

	base := "/sessions/" + created.SessionID.String()

	rec := doJSON(t, srv, http.MethodPost, base+"/answers", map[string]string{
		"question_id": created.FirstQuestion.ID.String(),
		"answer":      "I led the migration project end to end.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var first submitAnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.NotNil(t, first.Evaluation)
	assert.InDelta(t, 0.9, first.Evaluation.Score, 1e-9)
	require.NotNil(t, first.NextQuestion)
	assert.False(t, first.Done)

	rec = doJSON(t, srv, http.MethodPost, base+"/answers", map[string]string{
		"question_id": first.NextQuestion.ID.String(),
		"answer":      "We shipped it on time.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var second submitAnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Nil(t, second.NextQuestion)
	assert.True(t, second.Done)

	rec = doJSON(t, srv, http.MethodPost, base+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotNil(t, report.Summary)
	assert.Equal(t, 2, report.Summary.QuestionCount)
	assert.InDelta(t, 0.9, report.Summary.MeanScore, 1e-9)
}

func TestGetSession(t *testing.T) {
	srv := newTestServer(t, nil)
	created := createSession(t, srv, 2)

	rec := doJSON(t, srv, http.MethodGet, "/sessions/"+created.SessionID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var session types.InterviewSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, created.SessionID, session.ID)
	assert.Equal(t, types.StateAwaitingAnswer, session.State)
}

func TestGetSession_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/sessions/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAnswer_WrongQuestion(t *testing.T) {
	srv := newTestServer(t, nil)
	created := createSession(t, srv, 2)

	rec := doJSON(t, srv, http.MethodPost, "/sessions/"+created.SessionID.String()+"/answers", map[string]string{
		"question_id": uuid.New().String(),
		"answer":      "out of order",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAbortThenReport(t *testing.T) {
	srv := newTestServer(t, nil)
	created := createSession(t, srv, 2)
	base := "/sessions/" + created.SessionID.String()

	rec := doJSON(t, srv, http.MethodPost, base+"/abort", map[string]string{"reason": "changed my mind"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aborted")

	// Aborted sessions never produce a report.
	rec = doJSON(t, srv, http.MethodPost, base+"/report", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Abort is not repeatable.
	rec = doJSON(t, srv, http.MethodPost, base+"/abort", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitAnswerStream(t *testing.T) {
	srv := newTestServer(t, nil)
	created := createSession(t, srv, 1)

	rec := doJSON(t, srv, http.MethodPost, "/sessions/"+created.SessionID.String()+"/answers/stream", map[string]string{
		"question_id": created.FirstQuestion.ID.String(),
		"answer":      "final answer",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: evaluation")
	assert.Contains(t, body, "event: complete")
	assert.Contains(t, body, created.SessionID.String())
}

func TestAuthRequired(t *testing.T) {
	jwtService := NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})
	srv := newTestServer(t, jwtService)

	// Health stays open.
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/sessions", map[string]any{"type": "general"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwtService.GenerateToken(uuid.New())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"type": "general"}))
	req := httptest.NewRequest(http.MethodPost, "/sessions", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	authed := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(authed, req)
	assert.Equal(t, http.StatusCreated, authed.Code, authed.Body.String())
}
