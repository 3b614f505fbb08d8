package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-coach/internal/types"
)

// SaveSession upserts a session snapshot.
func (db *DB) SaveSession(ctx context.Context, session *types.InterviewSession) error {
	snapshot, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO interview_sessions (id, state, snapshot, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE SET state = $2, snapshot = $3, updated_at = NOW()`,
		session.ID, string(session.State), snapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// GetSession loads a session snapshot. Returns nil without error when the
// session does not exist.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*types.InterviewSession, error) {
	var snapshot []byte
	err := db.pool.QueryRow(ctx,
		`SELECT snapshot FROM interview_sessions WHERE id = $1`,
		id,
	).Scan(&snapshot)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	var session types.InterviewSession
	if err := json.Unmarshal(snapshot, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// SaveSummary upserts the final report for a completed session.
func (db *DB) SaveSummary(ctx context.Context, summary *types.SessionSummary) error {
	content, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO session_summaries (session_id, summary)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id) DO UPDATE SET summary = $2, created_at = NOW()`,
		summary.SessionID, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save summary for session %s: %w", summary.SessionID, err)
	}
	return nil
}

// GetSummary loads the report for a session. Returns nil without error when
// no summary exists.
func (db *DB) GetSummary(ctx context.Context, id uuid.UUID) (*types.SessionSummary, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT summary FROM session_summaries WHERE session_id = $1`,
		id,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get summary for session %s: %w", id, err)
	}

	var summary types.SessionSummary
	if err := json.Unmarshal(content, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary for session %s: %w", id, err)
	}
	return &summary, nil
}
