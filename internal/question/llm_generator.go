package question

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/types"
)

const promptFile = "questions.json"

// LLMGenerator generates questions with a language model and pads from the
// template generator when the model returns fewer than requested.
type LLMGenerator struct {
	client   llm.Client
	fallback *TemplateGenerator
	log      *zap.Logger
}

// NewLLMGenerator creates an LLM-backed generator.
func NewLLMGenerator(client llm.Client, fallback *TemplateGenerator, log *zap.Logger) *LLMGenerator {
	if fallback == nil {
		fallback = NewTemplateGenerator(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMGenerator{client: client, fallback: fallback, log: log}
}

// Generate produces the initial question list for a session.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) ([]types.Question, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	tmpl, err := prompts.Get(promptFile, string(req.Type)+"_system")
	if err != nil {
		return nil, fmt.Errorf("failed to load question prompt: %w", err)
	}

	prompt := prompts.Format(tmpl, map[string]string{
		"Count":      strconv.Itoa(req.Count),
		"CVContext":  profileContext(req.Profile),
		"JDContext":  requirementContext(req.Requirement),
		"GapContext": gapContext(req.Gaps),
	})

	response, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("question generation call failed: %w", err)
	}

	texts := parseNumberedList(response)
	if len(texts) > req.Count {
		texts = texts[:req.Count]
	}

	questions := make([]types.Question, 0, req.Count)
	for _, text := range texts {
		questions = append(questions, types.Question{
			ID:   uuid.New(),
			Text: text,
			Type: req.Type,
		})
	}

	// Short output from the model is padded from the template bank so the
	// session always gets the configured question count.
	if len(questions) < req.Count {
		g.log.Warn("model returned fewer questions than requested",
			zap.Int("requested", req.Count),
			zap.Int("returned", len(questions)))
		padded, err := g.fallback.pad(req, questions)
		if err != nil {
			return nil, err
		}
		questions = padded
	}

	assignTargets(questions, req)
	return questions, nil
}

// GenerateFollowUp produces one follow-up probing the weaknesses found in an
// answer. The follow-up keeps the original's type and target skill.
func (g *LLMGenerator) GenerateFollowUp(ctx context.Context, original types.Question, answer types.Answer) (*types.Question, error) {
	tmpl, err := prompts.Get(promptFile, "follow_up_system")
	if err != nil {
		return nil, fmt.Errorf("failed to load follow-up prompt: %w", err)
	}

	weaknesses := "none identified"
	if answer.Evaluation != nil && len(answer.Evaluation.Weaknesses) > 0 {
		weaknesses = strings.Join(answer.Evaluation.Weaknesses, "; ")
	}

	prompt := prompts.Format(tmpl, map[string]string{
		"Question":    original.Text,
		"TargetSkill": original.TargetSkill,
		"Answer":      answer.RawText,
		"Weaknesses":  weaknesses,
	})

	response, err := g.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("follow-up generation call failed: %w", err)
	}

	text := strings.TrimSpace(response)
	if text == "" {
		return nil, fmt.Errorf("model returned empty follow-up question")
	}

	return &types.Question{
		ID:          uuid.New(),
		Text:        text,
		Type:        original.Type,
		TargetSkill: original.TargetSkill,
		FollowUp:    true,
	}, nil
}

// Lines like "1. text", "2) text" or "3 - text" start a new question.
var numberedLine = regexp.MustCompile(`^\s*(\d+)\s*[.):\-]\s*(.+)$`)

// parseNumberedList extracts question texts from a numbered-list response.
// Continuation lines are appended to the preceding question; preamble before
// the first numbered line is dropped.
func parseNumberedList(response string) []string {
	var questions []string
	current := ""

	for _, line := range strings.Split(response, "\n") {
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			if current != "" {
				questions = append(questions, current)
			}
			current = strings.TrimSpace(m[2])
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && current != "" {
			current += " " + trimmed
		}
	}
	if current != "" {
		questions = append(questions, current)
	}
	return questions
}
