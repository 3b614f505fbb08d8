package types

import (
	"time"

	"github.com/google/uuid"
)

// InterviewType selects the question style for a session
type InterviewType string

// Supported interview types
const (
	InterviewTechnical  InterviewType = "technical"
	InterviewBehavioral InterviewType = "behavioral"
	InterviewCompetency InterviewType = "competency"
	InterviewGeneral    InterviewType = "general"
)

// ValidInterviewType reports whether t is one of the supported interview types.
func ValidInterviewType(t InterviewType) bool {
	switch t {
	case InterviewTechnical, InterviewBehavioral, InterviewCompetency, InterviewGeneral:
		return true
	}
	return false
}

// SessionState is the lifecycle state of an interview session
type SessionState string

// Session states
const (
	StateCreated        SessionState = "created"
	StateAwaitingAnswer SessionState = "awaiting_answer"
	StateEvaluating     SessionState = "evaluating"
	StateCompleted      SessionState = "completed"
	StateAborted        SessionState = "aborted"
)

// Terminal reports whether no further transitions are permitted from s.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Question is a single interview question. TargetSkill holds the canonical
// name of the skill the question probes; it is a weak reference (lookup only)
// and empty for generic behavioral/general questions.
type Question struct {
	ID          uuid.UUID     `json:"id"`
	Text        string        `json:"text"`
	Type        InterviewType `json:"type"`
	TargetSkill string        `json:"target_skill,omitempty"`
	FollowUp    bool          `json:"follow_up,omitempty"`
}

// Evaluation is a structured critique of one answer. Strengths and weaknesses
// are always present, possibly empty, never nil.
type Evaluation struct {
	Score      float64  `json:"score"` // normalized [0,1]
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Feedback   string   `json:"feedback,omitempty"`
}

// Answer is a candidate's response to a question. Evaluation is absent until
// the evaluator has run.
type Answer struct {
	QuestionID uuid.UUID   `json:"question_id"`
	RawText    string      `json:"raw_text"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// InterviewSession is the full state of one mock-interview run. It is owned
// exclusively by the session engine and mutated only through engine
// transitions. CurrentIndex is always a valid index into Questions, or equals
// len(Questions) when the session is complete.
type InterviewSession struct {
	ID           uuid.UUID            `json:"id"`
	Type         InterviewType        `json:"type"`
	State        SessionState         `json:"state"`
	Questions    []Question           `json:"questions"`
	Answers      map[uuid.UUID]Answer `json:"answers"`
	CurrentIndex int                  `json:"current_index"`
	AbortReason  string               `json:"abort_reason,omitempty"`
	StartedAt    time.Time            `json:"started_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// CurrentQuestion returns the question awaiting an answer, or nil when the
// question list is exhausted.
func (s *InterviewSession) CurrentQuestion() *Question {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// Clone returns a deep copy safe to hand to callers while the engine keeps
// mutating the original.
func (s *InterviewSession) Clone() *InterviewSession {
	dup := *s
	dup.Questions = make([]Question, len(s.Questions))
	copy(dup.Questions, s.Questions)
	dup.Answers = make(map[uuid.UUID]Answer, len(s.Answers))
	for id, a := range s.Answers {
		if a.Evaluation != nil {
			ev := *a.Evaluation
			ev.Strengths = append([]string(nil), a.Evaluation.Strengths...)
			ev.Weaknesses = append([]string(nil), a.Evaluation.Weaknesses...)
			a.Evaluation = &ev
		}
		dup.Answers[id] = a
	}
	return &dup
}
