// Package recommend maps gap analysis and session results to a ranked list
// of learning resources.
package recommend

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/types"
)

// Options is the blending policy between pre-interview gaps and observed
// interview weaknesses.
type Options struct {
	GapWeight      float64 `json:"gap_weight"`
	WeaknessWeight float64 `json:"weakness_weight"`
	Limit          int     `json:"limit"`
}

// DefaultOptions weights gaps over observed weaknesses, on the basis that
// missing skills block a hire harder than a shaky answer does.
func DefaultOptions() Options {
	return Options{
		GapWeight:      0.6,
		WeaknessWeight: 0.4,
		Limit:          10,
	}
}

// Supplementer suggests additional resources beyond the static catalog.
type Supplementer interface {
	Suggest(ctx context.Context, weakAreas, missingSkills []string) ([]Resource, error)
}

// Recommender builds ranked recommendations from the embedded catalog,
// optionally supplemented by a model. The supplementer may be nil.
type Recommender struct {
	catalog    *Catalog
	supplement Supplementer
	opts       Options
	log        *zap.Logger
}

// NewRecommender creates a recommender.
func NewRecommender(catalog *Catalog, supplement Supplementer, opts Options, log *zap.Logger) *Recommender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recommender{catalog: catalog, supplement: supplement, opts: opts, log: log}
}

// skillNeed is the blended priority for one skill.
type skillNeed struct {
	skill    string
	score    float64
	fromGap  bool
	fromWeak bool
}

// Recommend produces a ranked, deduplicated resource list. Gaps may be nil
// when no job description was analyzed; summary may be nil when no session
// ran. Supplementer failure degrades to catalog-only results.
func (r *Recommender) Recommend(ctx context.Context, gaps []types.GapEntry, summary *types.SessionSummary) []types.Recommendation {
	needs := r.blend(gaps, summary)

	var recs []types.Recommendation
	seen := make(map[string]bool) // resource URL -> already included

	add := func(res Resource, category types.RecommendationCategory, score float64) {
		if res.URL == "" || seen[res.URL] {
			return
		}
		seen[res.URL] = true
		recs = append(recs, types.Recommendation{
			Resource:     res.URL,
			Title:        res.Title,
			Category:     category,
			RelatedSkill: res.Skill,
			Score:        score,
		})
	}

	for _, need := range needs {
		for _, res := range r.catalog.ForSkill(need.skill) {
			add(res, categoryFor(need), need.score)
		}
	}

	if r.supplement != nil && len(needs) > 0 {
		weakAreas, missingSkills := needNames(needs)
		extra, err := r.supplement.Suggest(ctx, weakAreas, missingSkills)
		if err != nil {
			r.log.Warn("resource supplement failed, using catalog only", zap.Error(err))
		}
		for _, res := range extra {
			add(res, types.CategorySkillDevelopment, supplementScore(needs, res.Skill))
		}
	}

	for _, res := range r.catalog.General() {
		add(res, types.CategoryAdditional, 0)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if r.opts.Limit > 0 && len(recs) > r.opts.Limit {
		recs = recs[:r.opts.Limit]
	}
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs
}

// blend combines gap priorities and session weaknesses into per-skill needs,
// highest first with alphabetical tie-breaks.
func (r *Recommender) blend(gaps []types.GapEntry, summary *types.SessionSummary) []skillNeed {
	byName := make(map[string]*skillNeed)

	maxPriority := 0.0
	for _, g := range gaps {
		if g.PriorityScore > maxPriority {
			maxPriority = g.PriorityScore
		}
	}
	for _, g := range gaps {
		if g.CandidateHasSkill {
			continue
		}
		normalized := 1.0
		if maxPriority > 0 {
			normalized = g.PriorityScore / maxPriority
		}
		byName[g.Skill.CanonicalName] = &skillNeed{
			skill:   g.Skill.CanonicalName,
			score:   r.opts.GapWeight * normalized,
			fromGap: true,
		}
	}

	if summary != nil {
		for _, ws := range summary.WeakestSkills {
			need, ok := byName[ws.Skill]
			if !ok {
				need = &skillNeed{skill: ws.Skill}
				byName[ws.Skill] = need
			}
			need.score += r.opts.WeaknessWeight * (1 - ws.MeanScore)
			need.fromWeak = true
		}
	}

	needs := make([]skillNeed, 0, len(byName))
	for _, need := range byName {
		needs = append(needs, *need)
	}
	sort.Slice(needs, func(i, j int) bool {
		if needs[i].score != needs[j].score {
			return needs[i].score > needs[j].score
		}
		return needs[i].skill < needs[j].skill
	})
	return needs
}

func categoryFor(need skillNeed) types.RecommendationCategory {
	switch {
	case need.fromGap && need.fromWeak:
		return types.CategoryPriority
	case need.fromGap:
		return types.CategorySkillDevelopment
	default:
		return types.CategoryInterviewPrep
	}
}

func needNames(needs []skillNeed) (weakAreas, missingSkills []string) {
	for _, n := range needs {
		if n.fromWeak {
			weakAreas = append(weakAreas, n.skill)
		}
		if n.fromGap {
			missingSkills = append(missingSkills, n.skill)
		}
	}
	return weakAreas, missingSkills
}

// supplementScore places model-suggested resources just below the catalog
// entry for the same skill, so catalog material keeps precedence.
func supplementScore(needs []skillNeed, skill string) float64 {
	for _, n := range needs {
		if strings.EqualFold(n.skill, skill) {
			return n.score * 0.9
		}
	}
	return 0
}
