package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
)

const (
	promptFile          = "recommendation.json"
	supplementPromptKey = "supplement_system"
)

// LLMSupplementer asks a model for resources the static catalog lacks.
type LLMSupplementer struct {
	client llm.Client
}

// NewLLMSupplementer creates an LLM-backed supplementer.
func NewLLMSupplementer(client llm.Client) *LLMSupplementer {
	return &LLMSupplementer{client: client}
}

// Suggest returns model-suggested resources for the given weak areas and
// missing skills. Output is schema-validated before use.
func (s *LLMSupplementer) Suggest(ctx context.Context, weakAreas, missingSkills []string) ([]Resource, error) {
	tmpl, err := prompts.Get(promptFile, supplementPromptKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation prompt: %w", err)
	}

	prompt := prompts.Format(tmpl, map[string]string{
		"WeakAreas":     orNone(weakAreas),
		"MissingSkills": orNone(missingSkills),
	})

	response, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("resource suggestion call failed: %w", err)
	}

	raw := []byte(response)
	if err := schemas.Validate(schemas.SchemaResourceList, raw); err != nil {
		return nil, fmt.Errorf("model returned invalid resource list: %w", err)
	}

	var resources []Resource
	if err := json.Unmarshal(raw, &resources); err != nil {
		return nil, fmt.Errorf("failed to parse resource list: %w", err)
	}
	return resources, nil
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
