package question

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/types"
)

// Skill-targeted template banks. The %s slot takes a canonical skill name.
var technicalTemplates = []string{
	"How would you design a system that relies heavily on %s? Walk through the key components.",
	"What are the main tradeoffs to weigh when adopting %s in a production environment?",
	"Describe a debugging approach for a production incident involving %s.",
	"How would you get a new team productive with %s? What pitfalls would you warn them about?",
	"Explain how %s fits into a larger architecture you have worked with or studied.",
}

var competencyTemplates = []string{
	"Tell me about a time you had to deliver results using %s. What was the outcome?",
	"How do you measure success when applying %s in a project?",
	"Describe a situation where %s was critical to a decision you made.",
	"How would you bring %s into a team that has never used it?",
	"What evidence would convince you that your use of %s is effective?",
}

// Generic banks for interview types that do not target specific skills.
var behavioralQuestions = []string{
	"Tell me about a time you disagreed with a teammate. How did you resolve it?",
	"Describe a situation where you had to deliver under a tight deadline. What did you prioritize?",
	"Tell me about a project that failed. What did you learn from it?",
	"Describe a time you had to influence a decision without having authority.",
	"Tell me about a time you received difficult feedback. How did you respond?",
	"Describe a situation where you had to bring a struggling project back on track.",
	"Tell me about a time you mentored or onboarded a colleague.",
}

var generalQuestions = []string{
	"What attracts you to this role, and what would make it a success for you?",
	"Where do you want your career to be in three years?",
	"What kind of work environment brings out your best performance?",
	"What is the accomplishment you are most proud of, and why?",
	"How do you keep your skills current?",
	"What would your previous colleagues say is your biggest strength?",
	"What part of your last role would you change if you could?",
}

// TemplateGenerator produces questions from fixed template banks. It needs no
// network access, so it serves offline runs and pads short model output. A
// fixed seed gives a reproducible question order.
type TemplateGenerator struct {
	rng *rand.Rand
}

// NewTemplateGenerator creates a template generator seeded for reproducible
// ordering.
func NewTemplateGenerator(seed int64) *TemplateGenerator {
	return &TemplateGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces the initial question list for a session.
func (g *TemplateGenerator) Generate(_ context.Context, req Request) ([]types.Question, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	questions, err := g.pad(req, nil)
	if err != nil {
		return nil, err
	}
	assignTargets(questions, req)
	return questions, nil
}

// GenerateFollowUp produces one templated follow-up on the original topic.
func (g *TemplateGenerator) GenerateFollowUp(_ context.Context, original types.Question, answer types.Answer) (*types.Question, error) {
	topic := original.TargetSkill
	if topic == "" {
		topic = "that topic"
	}

	text := fmt.Sprintf("Your answer to %q left some ground uncovered. Could you go deeper into %s, ideally with a concrete example?", original.Text, topic)
	if answer.Evaluation != nil && len(answer.Evaluation.Weaknesses) > 0 {
		text = fmt.Sprintf("Your answer to %q did not address: %s. Could you expand on %s with a concrete example?",
			original.Text, strings.Join(answer.Evaluation.Weaknesses, "; "), topic)
	}

	return &types.Question{
		ID:          uuid.New(),
		Text:        text,
		Type:        original.Type,
		TargetSkill: original.TargetSkill,
		FollowUp:    true,
	}, nil
}

// pad extends existing up to req.Count questions from the template banks,
// skipping texts already present.
func (g *TemplateGenerator) pad(req Request, existing []types.Question) ([]types.Question, error) {
	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		seen[q.Text] = true
	}

	questions := append([]types.Question(nil), existing...)
	for _, text := range g.candidateTexts(req) {
		if len(questions) >= req.Count {
			break
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		questions = append(questions, types.Question{
			ID:   uuid.New(),
			Text: text,
			Type: req.Type,
		})
	}

	if len(questions) < req.Count {
		return nil, fmt.Errorf("template bank exhausted: produced %d of %d questions", len(questions), req.Count)
	}
	return questions, nil
}

// candidateTexts builds the ordered pool of template texts for a request.
func (g *TemplateGenerator) candidateTexts(req Request) []string {
	switch req.Type {
	case types.InterviewTechnical:
		return g.skillTexts(technicalTemplates, req)
	case types.InterviewCompetency:
		return g.skillTexts(competencyTemplates, req)
	case types.InterviewBehavioral:
		return g.shuffled(behavioralQuestions)
	default:
		return g.shuffled(generalQuestions)
	}
}

// skillTexts crosses templates with target skills, cycling skills so the
// highest priority gaps are covered first.
func (g *TemplateGenerator) skillTexts(templates []string, req Request) []string {
	skills := missingSkills(req.Gaps)
	if len(skills) == 0 && req.Requirement != nil {
		for _, rs := range req.Requirement.RequiredSkills {
			skills = append(skills, rs.Skill.CanonicalName)
		}
	}
	if len(skills) == 0 {
		return nil
	}

	// Skill-major order with template rotation: every skill gets a question
	// before any skill gets a second one, and no pairing repeats.
	texts := make([]string, 0, len(templates)*len(skills))
	for round := 0; round < len(templates); round++ {
		for si, skill := range skills {
			texts = append(texts, fmt.Sprintf(templates[(round+si)%len(templates)], skill))
		}
	}
	return texts
}

func (g *TemplateGenerator) shuffled(bank []string) []string {
	out := append([]string(nil), bank...)
	g.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
