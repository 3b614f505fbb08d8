// Package evaluation scores candidate answers against the question asked.
// Scores are normalized to [0,1] regardless of which evaluator produced them.
package evaluation

import (
	"context"
	"strings"

	"github.com/jonathan/interview-coach/internal/types"
)

// Evaluator scores one answer to one question.
type Evaluator interface {
	Evaluate(ctx context.Context, question types.Question, answerText string) (*types.Evaluation, error)
}

// emptyAnswerWeakness is the canonical weakness recorded for blank answers.
const emptyAnswerWeakness = "no response provided"

// emptyAnswer handles the shared blank-answer path: a blank or
// whitespace-only answer is a valid submission that scores zero, never an
// error. Returns nil when the answer has content.
func emptyAnswer(answerText string) *types.Evaluation {
	if strings.TrimSpace(answerText) != "" {
		return nil
	}
	return &types.Evaluation{
		Score:      0,
		Strengths:  []string{},
		Weaknesses: []string{emptyAnswerWeakness},
		Feedback:   "No answer was given. Even a partial attempt lets the interviewer see your reasoning.",
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
