// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Resume string `json:"resume,omitempty"`  // Path to resume text file
	Job    string `json:"job,omitempty"`     // Path to job posting text file
	JobURL string `json:"job_url,omitempty"` // URL to fetch job posting from

	// Interview behavior
	InterviewType     string  `json:"interview_type,omitempty"`      // technical, behavioral, competency, general
	QuestionCount     int     `json:"question_count,omitempty"`      // Number of initial questions
	Adaptive          bool    `json:"adaptive,omitempty"`            // Insert follow-ups after weak answers
	FollowUpThreshold float64 `json:"follow_up_threshold,omitempty"` // Score below which a follow-up fires (0.0-1.0)

	// Scoring policy
	MustHaveWeight   float64 `json:"must_have_weight,omitempty"`    // Gap weight for must-have skills
	NiceToHaveWeight float64 `json:"nice_to_have_weight,omitempty"` // Gap weight for nice-to-have skills
	GapBlend         float64 `json:"gap_blend,omitempty"`           // Recommendation weight for gaps vs weaknesses (0.0-1.0)

	// Reference data
	AliasTable string `json:"alias_table,omitempty"` // Path to extra skill alias JSON (variant -> canonical)

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA job boards
	Offline     bool   `json:"offline,omitempty"`      // Template questions and heuristic scoring only
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	JSONLogs    bool   `json:"json_logs,omitempty"`    // Emit structured JSON logs
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	// Validate numeric ranges
	if c.QuestionCount < 0 {
		return fmt.Errorf("config error: 'question_count' must be non-negative")
	}
	if c.FollowUpThreshold < 0 || c.FollowUpThreshold > 1 {
		return fmt.Errorf("config error: 'follow_up_threshold' must be between 0.0 and 1.0")
	}
	if c.GapBlend < 0 || c.GapBlend > 1 {
		return fmt.Errorf("config error: 'gap_blend' must be between 0.0 and 1.0")
	}
	if c.MustHaveWeight < 0 || c.NiceToHaveWeight < 0 {
		return fmt.Errorf("config error: gap weights must be non-negative")
	}
	if c.MustHaveWeight > 0 && c.NiceToHaveWeight > 0 && c.MustHaveWeight <= c.NiceToHaveWeight {
		return fmt.Errorf("config error: 'must_have_weight' must exceed 'nice_to_have_weight'")
	}

	switch c.InterviewType {
	case "", "technical", "behavioral", "competency", "general":
	default:
		return fmt.Errorf("config error: unknown interview type %q", c.InterviewType)
	}

	// Validate file paths exist (if specified)
	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}
	if c.AliasTable != "" {
		if _, err := os.Stat(c.AliasTable); os.IsNotExist(err) {
			return fmt.Errorf("config error: alias table file not found: %s", c.AliasTable)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Resume == "" {
		result.Resume = defaults.Resume
	}
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.InterviewType == "" {
		result.InterviewType = defaults.InterviewType
	}
	if result.AliasTable == "" {
		result.AliasTable = defaults.AliasTable
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.QuestionCount == 0 {
		result.QuestionCount = defaults.QuestionCount
	}

	// Float fields
	if result.FollowUpThreshold == 0 {
		if defaults.FollowUpThreshold > 0 {
			result.FollowUpThreshold = defaults.FollowUpThreshold
		} else {
			result.FollowUpThreshold = 0.5 // follow up on answers below half credit
		}
	}
	if result.GapBlend == 0 {
		if defaults.GapBlend > 0 {
			result.GapBlend = defaults.GapBlend
		} else {
			result.GapBlend = 0.6 // gaps weigh slightly more than weaknesses
		}
	}
	if result.MustHaveWeight == 0 {
		if defaults.MustHaveWeight > 0 {
			result.MustHaveWeight = defaults.MustHaveWeight
		} else {
			result.MustHaveWeight = 2.0
		}
	}
	if result.NiceToHaveWeight == 0 {
		if defaults.NiceToHaveWeight > 0 {
			result.NiceToHaveWeight = defaults.NiceToHaveWeight
		} else {
			result.NiceToHaveWeight = 1.0
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LoadAliasTable reads an extra skill alias file (variant -> canonical JSON
// object). An empty path returns an empty map.
func LoadAliasTable(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias table %s: %w", path, err)
	}

	var aliases map[string]string
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("failed to parse alias table JSON: %w", err)
	}
	return aliases, nil
}
