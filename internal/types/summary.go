package types

import "github.com/google/uuid"

// SkillScore aggregates per-question scores for one target skill area.
type SkillScore struct {
	Skill     string  `json:"skill"`
	MeanScore float64 `json:"mean_score"`
	Questions int     `json:"questions"`
}

// QuestionResult pairs a question with its answer and evaluation for reporting.
type QuestionResult struct {
	QuestionID  uuid.UUID   `json:"question_id"`
	Question    string      `json:"question"`
	TargetSkill string      `json:"target_skill,omitempty"`
	Answer      string      `json:"answer"`
	Evaluation  *Evaluation `json:"evaluation,omitempty"`
}

// SessionSummary is the aggregate produced by finalizing a completed session.
// WeakestSkills is ordered ascending by mean score, so the areas needing the
// most work come first.
type SessionSummary struct {
	SessionID     uuid.UUID        `json:"session_id"`
	Type          InterviewType    `json:"type"`
	QuestionCount int              `json:"question_count"`
	MeanScore     float64          `json:"mean_score"`
	WeakestSkills []SkillScore     `json:"weakest_skills"`
	Results       []QuestionResult `json:"results"`
}
