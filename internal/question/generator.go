// Package question generates interview questions tailored to a candidate's
// skill gaps. The LLM generator is the primary implementation; the template
// generator backs it up and serves offline runs.
package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/types"
)

// Request carries everything a generator needs for one question batch.
type Request struct {
	Type        types.InterviewType
	Count       int
	Profile     *types.CandidateProfile
	Requirement *types.JobRequirement
	Gaps        []types.GapEntry
}

// Generator produces interview questions. Implementations must return exactly
// Count questions on success.
type Generator interface {
	// Generate produces the initial question list for a session
	Generate(ctx context.Context, req Request) ([]types.Question, error)
	// GenerateFollowUp produces one follow-up probing the weaknesses found in
	// an answer to the given question
	GenerateFollowUp(ctx context.Context, original types.Question, answer types.Answer) (*types.Question, error)
}

// InsufficientContextError indicates there is not enough material to target
// questions for the requested interview type.
type InsufficientContextError struct {
	Type types.InterviewType
}

func (e *InsufficientContextError) Error() string {
	return fmt.Sprintf("insufficient context to generate %s questions: no skill gaps or job requirements available", e.Type)
}

// validate checks a request before any generation work happens.
func validate(req Request) error {
	if !types.ValidInterviewType(req.Type) {
		return fmt.Errorf("unknown interview type %q", req.Type)
	}
	if req.Count < 1 {
		return fmt.Errorf("question count must be at least 1, got %d", req.Count)
	}
	// Skill-targeted types need something to target.
	if req.Type == types.InterviewTechnical || req.Type == types.InterviewCompetency {
		hasRequirement := req.Requirement != nil && len(req.Requirement.RequiredSkills) > 0
		if len(missingSkills(req.Gaps)) == 0 && !hasRequirement {
			return &InsufficientContextError{Type: req.Type}
		}
	}
	return nil
}

// missingSkills returns canonical names of gap skills the candidate lacks,
// highest priority first.
func missingSkills(gaps []types.GapEntry) []string {
	names := make([]string, 0, len(gaps))
	for _, g := range gaps {
		if !g.CandidateHasSkill {
			names = append(names, g.Skill.CanonicalName)
		}
	}
	return names
}

// assignTargets sets TargetSkill on questions round-robin over the missing gap
// skills. Behavioral and general questions stay untargeted.
func assignTargets(questions []types.Question, req Request) {
	if req.Type != types.InterviewTechnical && req.Type != types.InterviewCompetency {
		return
	}
	targets := missingSkills(req.Gaps)
	if len(targets) == 0 {
		return
	}
	for i := range questions {
		if questions[i].TargetSkill == "" {
			questions[i].TargetSkill = targets[i%len(targets)]
		}
	}
}

func profileContext(p *types.CandidateProfile) string {
	if p == nil {
		return "not provided"
	}
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.CanonicalName)
	}
	parts := []string{fmt.Sprintf("skills: %s", strings.Join(names, ", "))}
	if p.ExperienceYears > 0 {
		parts = append(parts, fmt.Sprintf("%.0f years of experience", p.ExperienceYears))
	}
	if p.EducationLevel != "" && p.EducationLevel != types.EducationUnknown {
		parts = append(parts, fmt.Sprintf("education: %s", p.EducationLevel))
	}
	return strings.Join(parts, "; ")
}

func requirementContext(r *types.JobRequirement) string {
	if r == nil {
		return "not provided"
	}
	parts := make([]string, 0, len(r.RequiredSkills))
	for _, rs := range r.RequiredSkills {
		parts = append(parts, fmt.Sprintf("%s (%s)", rs.Skill.CanonicalName, rs.Importance))
	}
	out := strings.Join(parts, ", ")
	if len(r.Responsibilities) > 0 {
		out += "; responsibilities: " + strings.Join(r.Responsibilities, ", ")
	}
	return out
}

func gapContext(gaps []types.GapEntry) string {
	missing := missingSkills(gaps)
	if len(missing) == 0 {
		return "none"
	}
	return strings.Join(missing, ", ")
}
