package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/types"
)

// fakeClient returns canned JSON, or an error, for every call.
type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                  { return nil }

func TestExtractResume(t *testing.T) {
	client := &fakeClient{response: `{
		"skills": ["golang", "Python", "k8s", "Go"],
		"experience_years": 5,
		"education": "master",
		"segments": [{"section": "experience", "text": "Built services in Go"}]
	}`}

	svc := NewService(client, nil, nil)
	profile, err := svc.ExtractResume(context.Background(), "resume text here")
	require.NoError(t, err)

	// golang and Go collapse into one canonical skill
	names := make([]string, 0, len(profile.Skills))
	for _, s := range profile.Skills {
		names = append(names, s.CanonicalName)
	}
	assert.Equal(t, []string{"Go", "Python", "Kubernetes"}, names)
	assert.Equal(t, 5.0, profile.ExperienceYears)
	assert.Equal(t, types.EducationMaster, profile.EducationLevel)
	require.Len(t, profile.RawSegments, 1)
	assert.Equal(t, "experience", profile.RawSegments[0].Section)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "resume text here")
}

func TestExtractResume_EmptyText(t *testing.T) {
	svc := NewService(&fakeClient{}, nil, nil)
	_, err := svc.ExtractResume(context.Background(), "   ")

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
}

func TestExtractResume_ModelError(t *testing.T) {
	cause := errors.New("rate limited")
	svc := NewService(&fakeClient{err: cause}, nil, nil)

	_, err := svc.ExtractResume(context.Background(), "text")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.ErrorIs(t, err, cause)
}

func TestExtractResume_InvalidPayload(t *testing.T) {
	// Missing required "skills" field fails schema validation.
	svc := NewService(&fakeClient{response: `{"experience_years": 3}`}, nil, nil)

	_, err := svc.ExtractResume(context.Background(), "text")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Contains(t, err.Error(), "invalid entities")
}

func TestExtractResume_UnknownEducation(t *testing.T) {
	svc := NewService(&fakeClient{response: `{"skills": ["Go"], "education": "unknown"}`}, nil, nil)

	profile, err := svc.ExtractResume(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, types.EducationUnknown, profile.EducationLevel)
}

func TestExtractJob(t *testing.T) {
	client := &fakeClient{response: `{
		"required_skills": ["golang", "postgres"],
		"nice_to_have_skills": ["k8s", "Go"],
		"responsibilities": ["design APIs", "review code"]
	}`}

	svc := NewService(client, nil, nil)
	req, err := svc.ExtractJob(context.Background(), "job description text")
	require.NoError(t, err)

	// Go appears in both lists; the must_have entry wins.
	require.Len(t, req.RequiredSkills, 3)
	assert.Equal(t, "Go", req.RequiredSkills[0].Skill.CanonicalName)
	assert.Equal(t, types.ImportanceMustHave, req.RequiredSkills[0].Importance)
	assert.Equal(t, "PostgreSQL", req.RequiredSkills[1].Skill.CanonicalName)
	assert.Equal(t, types.ImportanceMustHave, req.RequiredSkills[1].Importance)
	assert.Equal(t, "Kubernetes", req.RequiredSkills[2].Skill.CanonicalName)
	assert.Equal(t, types.ImportanceNiceToHave, req.RequiredSkills[2].Importance)

	assert.Equal(t, []string{"design APIs", "review code"}, req.Responsibilities)
}

func TestExtractJob_EmptyText(t *testing.T) {
	svc := NewService(&fakeClient{}, nil, nil)
	_, err := svc.ExtractJob(context.Background(), "")

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.True(t, strings.Contains(err.Error(), "empty"))
}
