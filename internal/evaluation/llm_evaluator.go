package evaluation

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
)

const (
	promptFile      = "evaluation.json"
	answerPromptKey = "answer_system"
)

// LLMEvaluator scores answers with a language model. Malformed model output
// falls back to the heuristic evaluator instead of failing the submission.
type LLMEvaluator struct {
	client   llm.Client
	fallback Evaluator
	log      *zap.Logger
}

// NewLLMEvaluator creates an LLM-backed evaluator. A nil fallback uses the
// heuristic evaluator.
func NewLLMEvaluator(client llm.Client, fallback Evaluator, log *zap.Logger) *LLMEvaluator {
	if fallback == nil {
		fallback = NewHeuristicEvaluator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMEvaluator{client: client, fallback: fallback, log: log}
}

// evaluationPayload matches the JSON shape the evaluation prompt asks for.
// The model scores 0-100; the engine works in [0,1].
type evaluationPayload struct {
	OverallScore float64  `json:"overall_score"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	Feedback     string   `json:"feedback"`
}

// Evaluate scores one answer to one question.
func (e *LLMEvaluator) Evaluate(ctx context.Context, question types.Question, answerText string) (*types.Evaluation, error) {
	if ev := emptyAnswer(answerText); ev != nil {
		return ev, nil
	}

	tmpl, err := prompts.Get(promptFile, answerPromptKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation prompt: %w", err)
	}

	prompt := prompts.Format(tmpl, map[string]string{
		"Question":    question.Text,
		"TargetSkill": question.TargetSkill,
		"Answer":      answerText,
	})

	response, err := e.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		// Transport and model errors propagate; the engine decides whether to
		// retry or revert the session state.
		return nil, fmt.Errorf("evaluation call failed: %w", err)
	}

	raw := []byte(response)
	if err := schemas.Validate(schemas.SchemaEvaluation, raw); err != nil {
		e.log.Warn("model returned invalid evaluation, using heuristic fallback", zap.Error(err))
		return e.fallback.Evaluate(ctx, question, answerText)
	}

	var payload evaluationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		e.log.Warn("failed to parse evaluation payload, using heuristic fallback", zap.Error(err))
		return e.fallback.Evaluate(ctx, question, answerText)
	}

	ev := &types.Evaluation{
		Score:      clamp01(payload.OverallScore / 100),
		Strengths:  payload.Strengths,
		Weaknesses: payload.Weaknesses,
		Feedback:   payload.Feedback,
	}
	if ev.Strengths == nil {
		ev.Strengths = []string{}
	}
	if ev.Weaknesses == nil {
		ev.Weaknesses = []string{}
	}
	return ev, nil
}
