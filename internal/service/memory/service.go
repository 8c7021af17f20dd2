package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

// Service wraps the fact store with the policies callers care about:
// explicit user facts land at full confidence, prompt rendering is
// deterministic.
type Service struct {
	repo core.MemoryRepository
}

func NewService(repo core.MemoryRepository) *Service {
	return &Service{repo: repo}
}

// Remember stores a fact the user explicitly asked to keep. Explicit facts
// carry confidence 1.0 and win over anything inferred.
func (s *Service) Remember(ctx context.Context, factType, key, value string) (core.Fact, error) {
	fact, err := s.repo.Upsert(ctx, core.Fact{
		FactType:   factType,
		Key:        key,
		Value:      value,
		Confidence: 1.0,
		Source:     core.SourceExplicit,
	})
	if err != nil {
		return core.Fact{}, fmt.Errorf("remember fact: %w", err)
	}

	log.FromCtx(ctx).Info().
		Str("fact_type", fact.FactType).
		Str("key", fact.Key).
		Msg("stored explicit fact")
	return fact, nil
}

// Observe merges a fact extracted from conversation. The store decides
// whether it displaces the current value.
func (s *Service) Observe(ctx context.Context, fact core.Fact) (core.Fact, error) {
	if fact.Source == "" {
		fact.Source = core.SourceInferred
	}
	merged, err := s.repo.Upsert(ctx, fact)
	if err != nil {
		return core.Fact{}, fmt.Errorf("observe fact: %w", err)
	}
	return merged, nil
}

func (s *Service) List(ctx context.Context) ([]core.Fact, error) {
	return s.repo.Load(ctx)
}

func (s *Service) Forget(ctx context.Context, factType, key string) error {
	return s.repo.Delete(ctx, factType, key)
}

// Snapshot renders the current memory for the system prompt.
func (s *Service) Snapshot(ctx context.Context) (string, error) {
	facts, err := s.repo.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load memory: %w", err)
	}
	return FormatForPrompt(facts), nil
}

// FormatForPrompt groups facts by type into a markdown fragment. Facts
// arrive sorted from the store, so output is stable across calls.
func FormatForPrompt(facts []core.Fact) string {
	if len(facts) == 0 {
		return "(None yet)"
	}

	var b strings.Builder
	var current string
	for _, fact := range facts {
		if fact.FactType != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = fact.FactType
			b.WriteString("**" + capitalize(current) + "**\n")
		}
		b.WriteString("- " + fact.Key + ": " + fact.Value + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
