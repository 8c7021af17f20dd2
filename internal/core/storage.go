package core

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrFactNotFound    = errors.New("fact not found")
)

type SessionsRepository interface {
	// Ensure creates the session row if it does not exist yet.
	Ensure(ctx context.Context, sessionID string) error
	Get(ctx context.Context, sessionID string) (Session, error)
	List(ctx context.Context) ([]Session, error)
	// Touch updates last_activity and recounts messages.
	Touch(ctx context.Context, sessionID string) error
	MarkProcessed(ctx context.Context, sessionID, summaryKBID string) error
}

type MessagesRepository interface {
	Append(ctx context.Context, sessionID string, msg Message) error
	// GetAll returns the full transcript in insertion order.
	GetAll(ctx context.Context, sessionID string) ([]Message, error)
}

type MemoryRepository interface {
	Load(ctx context.Context) ([]Fact, error)
	// Upsert applies the confidence-gated merge and returns the live row.
	Upsert(ctx context.Context, fact Fact) (Fact, error)
	Delete(ctx context.Context, factType, key string) error
}
