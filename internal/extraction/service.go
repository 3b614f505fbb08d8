package extraction

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/normalize"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
)

const promptFile = "extraction.json"

// Service is the LLM-backed implementation of EntityExtractor. Raw model
// output is schema-validated before parsing, and skill mentions are
// canonicalized so downstream comparison is exact-match.
type Service struct {
	client llm.Client
	norm   *normalize.Normalizer
	log    *zap.Logger
}

// NewService creates an extraction service. A nil normalizer uses the
// default alias table.
func NewService(client llm.Client, norm *normalize.Normalizer, log *zap.Logger) *Service {
	if norm == nil {
		norm = normalize.New(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, norm: norm, log: log}
}

// resumePayload matches the JSON shape the resume extraction prompt asks for.
type resumePayload struct {
	Skills          []string         `json:"skills"`
	ExperienceYears float64          `json:"experience_years"`
	Education       string           `json:"education"`
	Segments        []types.TextSpan `json:"segments"`
}

// jobPayload matches the JSON shape the job extraction prompt asks for.
type jobPayload struct {
	RequiredSkills   []string `json:"required_skills"`
	NiceToHaveSkills []string `json:"nice_to_have_skills"`
	Responsibilities []string `json:"responsibilities"`
}

// ExtractResume parses resume text into a candidate profile.
func (s *Service) ExtractResume(ctx context.Context, text string) (*types.CandidateProfile, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Message: "resume text is empty"}
	}

	raw, err := s.extract(ctx, "resume_system", schemas.SchemaResumeEntity, text)
	if err != nil {
		return nil, err
	}

	var payload resumePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ExtractionError{Message: "failed to parse resume entities", Cause: err}
	}

	profile := &types.CandidateProfile{
		Skills:          s.norm.Normalize(payload.Skills),
		ExperienceYears: payload.ExperienceYears,
		EducationLevel:  parseEducation(payload.Education),
		RawSegments:     payload.Segments,
	}

	s.log.Debug("extracted resume entities",
		zap.Int("skills", len(profile.Skills)),
		zap.Float64("experience_years", profile.ExperienceYears),
		zap.String("education", string(profile.EducationLevel)))

	return profile, nil
}

// ExtractJob parses job description text into a job requirement. Required and
// nice-to-have skills keep their importance through normalization.
func (s *Service) ExtractJob(ctx context.Context, text string) (*types.JobRequirement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Message: "job description text is empty"}
	}

	raw, err := s.extract(ctx, "job_system", schemas.SchemaJobEntity, text)
	if err != nil {
		return nil, err
	}

	var payload jobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ExtractionError{Message: "failed to parse job entities", Cause: err}
	}

	req := &types.JobRequirement{
		Responsibilities: payload.Responsibilities,
	}
	for _, skill := range s.norm.Normalize(payload.RequiredSkills) {
		req.RequiredSkills = append(req.RequiredSkills, types.RequiredSkill{
			Skill:      skill,
			Importance: types.ImportanceMustHave,
		})
	}
	for _, skill := range s.norm.Normalize(payload.NiceToHaveSkills) {
		if hasRequired(req.RequiredSkills, skill.CanonicalName) {
			continue
		}
		req.RequiredSkills = append(req.RequiredSkills, types.RequiredSkill{
			Skill:      skill,
			Importance: types.ImportanceNiceToHave,
		})
	}

	s.log.Debug("extracted job entities",
		zap.Int("required_skills", len(req.RequiredSkills)),
		zap.Int("responsibilities", len(req.Responsibilities)))

	return req, nil
}

// extract runs one extraction prompt and returns schema-validated JSON.
func (s *Service) extract(ctx context.Context, promptKey, schemaName, text string) ([]byte, error) {
	tmpl, err := prompts.Get(promptFile, promptKey)
	if err != nil {
		return nil, &ExtractionError{Message: "failed to load extraction prompt", Cause: err}
	}
	prompt := prompts.Format(tmpl, map[string]string{"Text": text})

	response, err := s.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &ExtractionError{Message: "model call failed", Cause: err}
	}

	raw := []byte(response)
	if err := schemas.Validate(schemaName, raw); err != nil {
		return nil, &ExtractionError{Message: "model returned invalid entities", Cause: err}
	}
	return raw, nil
}

func hasRequired(skills []types.RequiredSkill, canonicalName string) bool {
	for _, rs := range skills {
		if rs.Skill.CanonicalName == canonicalName {
			return true
		}
	}
	return false
}

func parseEducation(s string) types.EducationLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high_school", "high school":
		return types.EducationHighSchool
	case "bachelor", "bachelors":
		return types.EducationBachelor
	case "master", "masters":
		return types.EducationMaster
	case "doctorate", "phd":
		return types.EducationDoctorate
	default:
		return types.EducationUnknown
	}
}
