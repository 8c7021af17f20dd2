package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/sazed/internal/core"
)

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) Ensure(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

func (r *SessionsRepo) Get(ctx context.Context, sessionID string) (core.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, last_activity, message_count, processed_at, summary_kb_id
		 FROM sessions WHERE id = ?`, sessionID)

	var s core.Session
	var processedAt sql.NullTime
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.LastActivity, &s.MessageCount, &processedAt, &s.SummaryKBID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Session{}, core.ErrSessionNotFound
		}
		return core.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	if processedAt.Valid {
		t := processedAt.Time
		s.ProcessedAt = &t
	}
	return s, nil
}

func (r *SessionsRepo) List(ctx context.Context) ([]core.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, last_activity, message_count, processed_at, summary_kb_id
		 FROM sessions ORDER BY last_activity DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.Session
	for rows.Next() {
		var s core.Session
		var processedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.LastActivity, &s.MessageCount, &processedAt, &s.SummaryKBID); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if processedAt.Valid {
			t := processedAt.Time
			s.ProcessedAt = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionsRepo) Touch(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		 SET last_activity = CURRENT_TIMESTAMP,
		     message_count = (SELECT COUNT(*) FROM messages WHERE session_id = ?)
		 WHERE id = ?`, sessionID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SessionsRepo) MarkProcessed(ctx context.Context, sessionID, summaryKBID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET processed_at = CURRENT_TIMESTAMP, summary_kb_id = ? WHERE id = ?`,
		summaryKBID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to mark session processed: %w", err)
	}
	return nil
}
