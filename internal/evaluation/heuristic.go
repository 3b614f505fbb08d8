package evaluation

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/jonathan/interview-coach/internal/types"
)

// Completeness saturates at this many words; longer answers stop earning
// length credit rather than being penalized.
const fullAnswerWords = 80

// briefAnswerWords is the floor below which brevity is flagged as a weakness.
const briefAnswerWords = 30

// Scoring blend between topical relevance and answer completeness.
const (
	relevanceWeight    = 0.6
	completenessWeight = 0.4
)

// HeuristicEvaluator scores answers with a deterministic keyword-overlap
// heuristic. It needs no network access, serves offline runs, and backs up
// the LLM evaluator. Longer, more on-topic answers never score lower.
type HeuristicEvaluator struct{}

// NewHeuristicEvaluator creates a heuristic evaluator.
func NewHeuristicEvaluator() *HeuristicEvaluator {
	return &HeuristicEvaluator{}
}

// Evaluate scores one answer to one question.
func (e *HeuristicEvaluator) Evaluate(_ context.Context, question types.Question, answerText string) (*types.Evaluation, error) {
	if ev := emptyAnswer(answerText); ev != nil {
		return ev, nil
	}

	answerWords := contentWords(answerText)
	questionWords := contentWords(question.Text)

	relevance := overlap(questionWords, answerWords)
	skillMentioned := question.TargetSkill != "" && mentions(answerText, question.TargetSkill)
	if skillMentioned {
		relevance = clamp01(relevance + 0.25)
	}

	completeness := clamp01(float64(len(answerWords)) / fullAnswerWords)

	ev := &types.Evaluation{
		Score:      clamp01(relevanceWeight*relevance + completenessWeight*completeness),
		Strengths:  []string{},
		Weaknesses: []string{},
	}

	if skillMentioned {
		ev.Strengths = append(ev.Strengths, fmt.Sprintf("directly addresses %s", question.TargetSkill))
	}
	if relevance >= 0.5 {
		ev.Strengths = append(ev.Strengths, "engages with the question's key points")
	}
	if len(answerWords) >= fullAnswerWords {
		ev.Strengths = append(ev.Strengths, "substantive answer with good depth")
	}

	if question.TargetSkill != "" && !skillMentioned {
		ev.Weaknesses = append(ev.Weaknesses, fmt.Sprintf("does not mention %s", question.TargetSkill))
	}
	if relevance < 0.3 {
		ev.Weaknesses = append(ev.Weaknesses, "answer does not engage with the question's key terms")
	}
	if len(answerWords) < briefAnswerWords {
		ev.Weaknesses = append(ev.Weaknesses, "answer is too brief to demonstrate depth")
	}

	ev.Feedback = feedbackFor(ev.Score)
	return ev, nil
}

func feedbackFor(score float64) string {
	switch {
	case score >= 0.8:
		return "Strong answer. Keep grounding your points in concrete examples."
	case score >= 0.5:
		return "Reasonable answer. Tighten the structure and cover the question's key terms more directly."
	default:
		return "The answer needs more substance. Address the question directly and back claims with specifics."
	}
}

// contentWords lowercases and tokenizes text, dropping short filler words.
func contentWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if len(w) > 3 {
			words = append(words, w)
		}
	}
	return words
}

// overlap returns the fraction of reference words present in candidate words.
func overlap(reference, candidate []string) float64 {
	if len(reference) == 0 {
		return 0
	}
	set := make(map[string]bool, len(candidate))
	for _, w := range candidate {
		set[w] = true
	}
	hits := 0
	for _, w := range reference {
		if set[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(reference))
}

func mentions(text, skill string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(skill))
}
