// Package types provides type definitions for structured data used throughout the interview-coach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SkillCategory classifies a skill for question targeting and recommendations
type SkillCategory string

// Skill categories
const (
	SkillCategoryTechnical  SkillCategory = "technical"
	SkillCategoryBehavioral SkillCategory = "behavioral"
	SkillCategoryDomain     SkillCategory = "domain"
)

// Skill is the canonical, deduplicated representation of a skill mention.
// Identity is the canonical name; a Skill is immutable once normalized.
type Skill struct {
	CanonicalName string        `json:"canonical_name"`
	Aliases       []string      `json:"aliases,omitempty"`
	Category      SkillCategory `json:"category"`
}

// Importance represents how strongly a job requires a skill
type Importance string

// Importance levels
const (
	ImportanceMustHave   Importance = "must_have"
	ImportanceNiceToHave Importance = "nice_to_have"
)
