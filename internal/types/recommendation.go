package types

// RecommendationCategory buckets recommended resources the way the summary
// report presents them.
type RecommendationCategory string

// Recommendation categories
const (
	CategoryPriority         RecommendationCategory = "priority"
	CategorySkillDevelopment RecommendationCategory = "skill_development"
	CategoryInterviewPrep    RecommendationCategory = "interview_prep"
	CategoryAdditional       RecommendationCategory = "additional"
)

// Recommendation is one learning resource mapped from the gap analysis and
// session results. Resource identifiers are unique within a result set.
type Recommendation struct {
	Resource     string                 `json:"resource"` // stable identifier, typically the URL
	Title        string                 `json:"title"`
	Category     RecommendationCategory `json:"category"`
	RelatedSkill string                 `json:"related_skill,omitempty"`
	Rank         int                    `json:"rank"`
	Score        float64                `json:"score"`
}
