package interview

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/types"
)

// Store persists session snapshots and summaries. The engine treats
// persistence as best-effort: a write failure is logged, never fatal to the
// session in memory.
type Store interface {
	SaveSession(ctx context.Context, session *types.InterviewSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*types.InterviewSession, error)
	SaveSummary(ctx context.Context, summary *types.SessionSummary) error
	GetSummary(ctx context.Context, id uuid.UUID) (*types.SessionSummary, error)
}
