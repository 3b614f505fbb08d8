// Package normalize canonicalizes free-text skill mentions into a
// deduplicated, comparable skill vocabulary.
package normalize

import (
	"strings"
	"unicode"

	"github.com/jonathan/interview-coach/internal/types"
)

// defaultAliases maps common skill name variants to canonical names.
var defaultAliases = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"react":      "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"node":       "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"ml":         "Machine Learning",
	"ci/cd":      "CI/CD",
	"cicd":       "CI/CD",
}

// defaultCategories marks known non-technical skills. Anything not listed is
// treated as technical.
var defaultCategories = map[string]types.SkillCategory{
	"communication":          types.SkillCategoryBehavioral,
	"leadership":             types.SkillCategoryBehavioral,
	"teamwork":               types.SkillCategoryBehavioral,
	"problem solving":        types.SkillCategoryBehavioral,
	"stakeholder management": types.SkillCategoryBehavioral,
	"project management":     types.SkillCategoryDomain,
	"agile":                  types.SkillCategoryDomain,
	"product development":    types.SkillCategoryDomain,
}

// Table is the read-only canonicalization policy: an alias table plus category
// hints. It is shared reference data, built once and passed explicitly so that
// concurrent sessions never race on it.
type Table struct {
	aliases    map[string]string
	categories map[string]types.SkillCategory
}

// DefaultTable returns a Table seeded with the built-in alias and category maps.
func DefaultTable() *Table {
	return NewTable(nil)
}

// NewTable builds a Table from the built-in maps merged with extra aliases
// (variant -> canonical). Extra entries override built-ins.
func NewTable(extra map[string]string) *Table {
	t := &Table{
		aliases:    make(map[string]string, len(defaultAliases)+len(extra)),
		categories: defaultCategories,
	}
	for variant, canonical := range defaultAliases {
		t.aliases[variant] = canonical
	}
	for variant, canonical := range extra {
		t.aliases[strings.ToLower(strings.TrimSpace(variant))] = canonical
	}
	// Canonical names must resolve to themselves so normalization is idempotent.
	for _, canonical := range t.aliases {
		t.aliases[strings.ToLower(canonical)] = canonical
	}
	return t
}

// Normalizer resolves raw skill mentions against a Table.
type Normalizer struct {
	table *Table
}

// New creates a Normalizer. A nil table uses the defaults.
func New(table *Table) *Normalizer {
	if table == nil {
		table = DefaultTable()
	}
	return &Normalizer{table: table}
}

// Normalize converts free-text skill mentions into a deduplicated Skill set.
// Resolution order: case-insensitive alias match, punctuation-stripped match,
// then the mention becomes a new canonical entry. Output order is the first
// occurrence order of each canonical skill, so results are deterministic.
// Normalizing an already-normalized set is a no-op.
func (n *Normalizer) Normalize(rawMentions []string) []types.Skill {
	skills := make([]types.Skill, 0, len(rawMentions))
	seen := make(map[string]int) // canonical name -> index in skills

	for _, mention := range rawMentions {
		trimmed := strings.TrimSpace(mention)
		if trimmed == "" {
			continue
		}
		canonical := n.Canonical(trimmed)

		if idx, ok := seen[canonical]; ok {
			if !strings.EqualFold(trimmed, canonical) && !containsFold(skills[idx].Aliases, trimmed) {
				skills[idx].Aliases = append(skills[idx].Aliases, trimmed)
			}
			continue
		}

		skill := types.Skill{
			CanonicalName: canonical,
			Category:      n.category(canonical),
		}
		if !strings.EqualFold(trimmed, canonical) {
			skill.Aliases = []string{trimmed}
		}
		skills = append(skills, skill)
		seen[canonical] = len(skills) - 1
	}

	return skills
}

// Canonical resolves a single mention to its canonical skill name.
func (n *Normalizer) Canonical(mention string) string {
	trimmed := strings.TrimSpace(mention)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)
	if canonical, ok := n.table.aliases[lower]; ok {
		return canonical
	}

	if canonical, ok := n.table.aliases[stripPunctuation(lower)]; ok {
		return canonical
	}

	// Unresolved mentions become new canonical entries. Single lowercase or
	// all-caps words are title-cased; mixed case is preserved as written.
	if !strings.Contains(trimmed, " ") {
		if trimmed == strings.ToLower(trimmed) || (trimmed == strings.ToUpper(trimmed) && len(trimmed) > 3) {
			return strings.ToUpper(trimmed[:1]) + strings.ToLower(trimmed[1:])
		}
	}
	return trimmed
}

func (n *Normalizer) category(canonicalName string) types.SkillCategory {
	if cat, ok := n.table.categories[strings.ToLower(canonicalName)]; ok {
		return cat
	}
	return types.SkillCategoryTechnical
}

// stripPunctuation removes everything except letters, digits and spaces, and
// collapses runs of whitespace, so "React.js" keys as "reactjs".
func stripPunctuation(s string) string {
	var sb strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
