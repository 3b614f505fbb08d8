package types

// GapEntry is one required skill compared against the candidate profile.
// Entries are derived data: recomputed whenever the profile or requirement
// changes and never persisted independently of the run that produced them.
type GapEntry struct {
	Skill             Skill      `json:"skill"`
	Importance        Importance `json:"importance"`
	CandidateHasSkill bool       `json:"candidate_has_skill"`
	PriorityScore     float64    `json:"priority_score"`
}
