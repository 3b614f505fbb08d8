package types

// EducationLevel represents the highest education level found on a resume
type EducationLevel string

// Education levels
const (
	EducationUnknown    EducationLevel = "unknown"
	EducationHighSchool EducationLevel = "high_school"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationDoctorate  EducationLevel = "doctorate"
)

// TextSpan is an extracted text fragment kept for traceability back to the source document
type TextSpan struct {
	Section string `json:"section"`
	Text    string `json:"text"`
}

// CandidateProfile is the structured view of a resume. It is created once per
// upload and never mutated after extraction, only read.
type CandidateProfile struct {
	Skills          []Skill        `json:"skills"`
	ExperienceYears float64        `json:"experience_years"`
	EducationLevel  EducationLevel `json:"education_level"`
	RawSegments     []TextSpan     `json:"raw_segments,omitempty"`
}

// HasSkill reports whether the profile contains a skill with the given
// canonical name (exact match only, no partial credit).
func (p *CandidateProfile) HasSkill(canonicalName string) bool {
	for _, s := range p.Skills {
		if s.CanonicalName == canonicalName {
			return true
		}
	}
	return false
}

// RequiredSkill pairs a skill with its importance in a job posting
type RequiredSkill struct {
	Skill      Skill      `json:"skill"`
	Importance Importance `json:"importance"`
}

// JobRequirement is the structured view of a job description, created once per upload.
type JobRequirement struct {
	RequiredSkills   []RequiredSkill `json:"required_skills"`
	Responsibilities []string        `json:"responsibilities,omitempty"`
}
