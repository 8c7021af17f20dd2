package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

// ErrNothingToProcess means the session exists but has no transcript.
var ErrNothingToProcess = errors.New("session has no messages to process")

// MemoryStore is the slice of the memory service the processor needs.
type MemoryStore interface {
	List(ctx context.Context) ([]core.Fact, error)
	Observe(ctx context.Context, fact core.Fact) (core.Fact, error)
}

type Result struct {
	SessionID        string `json:"session_id"`
	FactsExtracted   int    `json:"facts_extracted"`
	Summary          string `json:"summary"`
	SummaryKBID      string `json:"summary_kb_id,omitempty"`
	AlreadyProcessed bool   `json:"already_processed,omitempty"`
}

// Processor distills a finished session: extracts durable facts into memory
// and publishes a summary to the knowledge base. Extraction and
// summarization run on the cheap model in parallel.
type Processor struct {
	provider core.CompletionProvider
	sessions core.SessionsRepository
	messages core.MessagesRepository
	memory   MemoryStore
	kb       core.KnowledgeIndex
	model    string
}

func NewProcessor(
	provider core.CompletionProvider,
	sessions core.SessionsRepository,
	messages core.MessagesRepository,
	memory MemoryStore,
	kb core.KnowledgeIndex,
	model string,
) *Processor {
	return &Processor{
		provider: provider,
		sessions: sessions,
		messages: messages,
		memory:   memory,
		kb:       kb,
		model:    model,
	}
}

// Process runs the pipeline once per session. Re-runs are no-ops unless
// forced.
func (p *Processor) Process(ctx context.Context, sessionID string, force bool) (Result, error) {
	logger := log.FromCtx(ctx)

	sess, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if sess.ProcessedAt != nil && !force {
		logger.Debug().Str("session", sessionID).Msg("session already processed")
		return Result{SessionID: sessionID, AlreadyProcessed: true, SummaryKBID: sess.SummaryKBID}, nil
	}

	msgs, err := p.messages.GetAll(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("load transcript: %w", err)
	}
	if len(msgs) == 0 {
		return Result{}, ErrNothingToProcess
	}

	existing, err := p.memory.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load memory: %w", err)
	}

	transcript := formatTranscript(msgs)

	var facts []extractedFact
	var summary string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facts, err = p.extractFacts(gctx, transcript, existing)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = p.summarize(gctx, transcript)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	stored := 0
	for _, fact := range facts {
		if fact.FactType == "" || fact.Key == "" || fact.Value == "" {
			continue
		}
		confidence := fact.Confidence
		if confidence <= 0 {
			confidence = 0.7
		}
		_, err := p.memory.Observe(ctx, core.Fact{
			FactType:   fact.FactType,
			Key:        fact.Key,
			Value:      fact.Value,
			Confidence: confidence,
			Source:     core.SourceInferred,
		})
		if err != nil {
			logger.Warn().Err(err).Str("key", fact.Key).Msg("fact upsert failed")
			continue
		}
		stored++
	}

	// Publishing the summary is best-effort: a knowledge base outage must
	// not fail the pipeline.
	var kbID string
	if summary != "" {
		kbID, err = p.kb.Ingest(ctx, summary, map[string]string{
			"session_id": sessionID,
			"date":       time.Now().Format("2006-01-02"),
		})
		if err != nil {
			logger.Warn().Err(err).Str("session", sessionID).Msg("summary ingest failed")
			kbID = ""
		}
	}

	if err := p.sessions.MarkProcessed(ctx, sessionID, kbID); err != nil {
		return Result{}, fmt.Errorf("mark processed: %w", err)
	}

	logger.Info().
		Str("session", sessionID).
		Int("facts", stored).
		Bool("summary_published", kbID != "").
		Msg("session processed")

	return Result{
		SessionID:      sessionID,
		FactsExtracted: stored,
		Summary:        summary,
		SummaryKBID:    kbID,
	}, nil
}

type extractedFact struct {
	FactType   string  `json:"fact_type"`
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

func (p *Processor) extractFacts(ctx context.Context, transcript string, existing []core.Fact) ([]extractedFact, error) {
	prompt := fmt.Sprintf(`Extract personal facts about the user from this conversation.
Only extract facts that are explicitly stated or clearly implied.
Do not duplicate facts already in the existing list unless the value has changed.

Return a JSON array of objects with these fields:
  fact_type: one of "personal", "preference", "project", "instruction", "relationship"
  key: short identifier, e.g. "primary_language"
  value: the fact value, e.g. "Python"
  confidence: 1.0 if explicitly stated, 0.7 if clearly implied

Return [] if no new or updated facts are found.
Return only the JSON array, no other text.

Existing facts:
%s

Conversation:
%s`, formatExistingFacts(existing), transcript)

	completion, err := p.provider.Complete(ctx, core.CompletionRequest{
		Model:     p.model,
		Messages:  []core.Message{{Role: core.RoleUser, Content: prompt}},
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}

	return parseFactList(completion.Message.Content), nil
}

func (p *Processor) summarize(ctx context.Context, transcript string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this conversation in 1-3 paragraphs.
Focus on: key topics discussed, decisions made, action items, and important information shared.
Be concise and factual.

Conversation:
%s`, transcript)

	completion, err := p.provider.Complete(ctx, core.CompletionRequest{
		Model:     p.model,
		Messages:  []core.Message{{Role: core.RoleUser, Content: prompt}},
		MaxTokens: 512,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	return strings.TrimSpace(completion.Message.Content), nil
}

// formatTranscript renders the session for the extraction prompts. Raw tool
// results are too noisy to include, tool calls are noted by name only.
func formatTranscript(msgs []core.Message) string {
	var lines []string
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleUser:
			if msg.Content != "" {
				lines = append(lines, "USER: "+msg.Content)
			}
		case core.RoleAssistant:
			if msg.Content != "" {
				lines = append(lines, "ASSISTANT: "+msg.Content)
			}
			for _, call := range msg.ToolCalls {
				lines = append(lines, "ASSISTANT [called "+call.Name+"]")
			}
		}
	}
	return strings.Join(lines, "\n\n")
}

func formatExistingFacts(facts []core.Fact) string {
	if len(facts) == 0 {
		return "(none)"
	}
	lines := make([]string, 0, len(facts))
	for _, f := range facts {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", f.FactType, f.Key, f.Value))
	}
	return strings.Join(lines, "\n")
}

// parseFactList tolerates markdown code fences around the JSON array.
func parseFactList(text string) []extractedFact {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) >= 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	var facts []extractedFact
	if err := json.Unmarshal([]byte(text), &facts); err != nil {
		return nil
	}
	return facts
}
