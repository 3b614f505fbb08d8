// Package extraction turns raw resume and job description documents into the
// structured profiles the rest of the system operates on. The LLM-backed
// extractor is an adapter behind the EntityExtractor interface so the core
// never depends on a provider.
package extraction

import (
	"context"

	"github.com/jonathan/interview-coach/internal/types"
)

// EntityExtractor extracts structured entities from free-form document text.
type EntityExtractor interface {
	// ExtractResume parses resume text into a candidate profile
	ExtractResume(ctx context.Context, text string) (*types.CandidateProfile, error)
	// ExtractJob parses job description text into a job requirement
	ExtractJob(ctx context.Context, text string) (*types.JobRequirement, error)
}

// DocumentReader loads document text from a local path.
type DocumentReader interface {
	Read(path string) (string, error)
}

// Transcriber converts an audio recording into text. Voice answers go through
// this before evaluation; text answers skip it entirely.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
