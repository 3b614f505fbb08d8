// Package gap compares a candidate skill set against a job requirement set
// and produces a prioritized deficiency ranking.
package gap

import (
	"sort"

	"github.com/jonathan/interview-coach/internal/types"
)

// Weights is the scoring policy for gap entries. The must-have weight is
// strictly greater than the nice-to-have weight so that must-have gaps always
// outrank nice-to-have gaps, all else equal.
type Weights struct {
	MustHave        float64 `json:"must_have"`
	NiceToHave      float64 `json:"nice_to_have"`
	RelevanceFactor float64 `json:"relevance_factor"`
}

// DefaultWeights returns the default scoring policy.
func DefaultWeights() Weights {
	return Weights{
		MustHave:        2.0,
		NiceToHave:      1.0,
		RelevanceFactor: 1.0,
	}
}

func (w Weights) importance(imp types.Importance) float64 {
	if imp == types.ImportanceMustHave {
		return w.MustHave
	}
	return w.NiceToHave
}

// Analyze produces one GapEntry per required skill. Membership is an exact
// canonical-name match against the profile; skills the candidate already has
// score 0 and are kept for strengths framing downstream. The result is ordered
// descending by priority score with ties broken by requirement declaration
// order. An empty requirement set yields an empty result, not an error.
func Analyze(profile *types.CandidateProfile, requirement *types.JobRequirement, weights Weights) []types.GapEntry {
	if requirement == nil || len(requirement.RequiredSkills) == 0 {
		return []types.GapEntry{}
	}

	entries := make([]types.GapEntry, 0, len(requirement.RequiredSkills))
	for _, req := range requirement.RequiredSkills {
		has := profile != nil && profile.HasSkill(req.Skill.CanonicalName)

		score := 0.0
		if !has {
			score = weights.importance(req.Importance) * weights.RelevanceFactor
		}

		entries = append(entries, types.GapEntry{
			Skill:             req.Skill,
			Importance:        req.Importance,
			CandidateHasSkill: has,
			PriorityScore:     score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PriorityScore > entries[j].PriorityScore
	})

	return entries
}

// Missing filters entries down to skills the candidate lacks, preserving order.
func Missing(entries []types.GapEntry) []types.GapEntry {
	out := make([]types.GapEntry, 0, len(entries))
	for _, e := range entries {
		if !e.CandidateHasSkill {
			out = append(out, e)
		}
	}
	return out
}

// TopN returns the first n entries (or fewer), preserving order.
func TopN(entries []types.GapEntry, n int) []types.GapEntry {
	if n < 0 {
		n = 0
	}
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n]
}
