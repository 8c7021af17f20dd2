package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/service/session"
	"github.com/sandevgo/sazed/internal/service/tools"
	"github.com/sandevgo/sazed/pkg/log"
)

// AgentRunner runs one user turn, plain or streaming.
type AgentRunner interface {
	Run(ctx context.Context, sessionID, userText string) (string, string, error)
	RunStream(ctx context.Context, sessionID, userText string, sink core.EventSink) (string, string, error)
}

// SessionProcessor distills a finished session into facts and a summary.
type SessionProcessor interface {
	Process(ctx context.Context, sessionID string, force bool) (session.Result, error)
}

// MemoryManager is the admin surface over the fact store.
type MemoryManager interface {
	List(ctx context.Context) ([]core.Fact, error)
	Remember(ctx context.Context, factType, key, value string) (core.Fact, error)
	Forget(ctx context.Context, factType, key string) error
}

type Handler struct {
	agent     AgentRunner
	processor SessionProcessor
	memory    MemoryManager
	sessions  core.SessionsRepository
	messages  core.MessagesRepository
	registry  *tools.Registry
}

func NewHandler(
	agent AgentRunner,
	processor SessionProcessor,
	memory MemoryManager,
	sessions core.SessionsRepository,
	messages core.MessagesRepository,
	registry *tools.Registry,
) *Handler {
	return &Handler{
		agent:     agent,
		processor: processor,
		memory:    memory,
		sessions:  sessions,
		messages:  messages,
		registry:  registry,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /chat", h.chat)
	mux.HandleFunc("POST /chat/stream", h.chatStream)
	mux.HandleFunc("GET /conversations", h.listConversations)
	mux.HandleFunc("GET /conversations/{session_id}", h.getConversation)
	mux.HandleFunc("POST /conversations/{session_id}/process", h.processConversation)
	mux.HandleFunc("GET /memory", h.listMemory)
	mux.HandleFunc("PUT /memory", h.upsertMemory)
	mux.HandleFunc("DELETE /memory/{fact_type}/{key}", h.deleteMemory)
	mux.HandleFunc("GET /tools", h.listTools)
	return mux
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "sazed",
		"version": core.AppVersion,
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	sessionID, text, err := h.agent.Run(r.Context(), req.SessionID, req.Message)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("turn failed")
		respondError(w, http.StatusInternalServerError, "Agent turn failed")
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Response: text})
}

func (h *Handler) chatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, _, err := h.agent.RunStream(r.Context(), req.SessionID, req.Message, func(ev core.Event) {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, sseData(ev))
		flusher.Flush()
	})
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("stream turn failed")
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", sseData(core.Event{}))
		flusher.Flush()
	}
}

func sseData(ev core.Event) string {
	var payload any
	switch ev.Type {
	case core.EventSession:
		payload = map[string]string{"session_id": ev.SessionID}
	case core.EventToolStart, core.EventToolDone:
		payload = map[string]string{"name": ev.Tool}
	case core.EventTextDelta:
		payload = map[string]string{"text": ev.Text}
	default:
		return "{}"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (h *Handler) listConversations(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"conversations": sessions})
}

func (h *Handler) getConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	if _, err := h.sessions.Get(r.Context(), sessionID); err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "Session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	msgs, err := h.messages.GetAll(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load transcript")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session_id":    sessionID,
		"messages":      msgs,
		"message_count": len(msgs),
	})
}

func (h *Handler) processConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	force := r.URL.Query().Get("force") == "true"

	result, err := h.processor.Process(r.Context(), sessionID, force)
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, session.ErrNothingToProcess):
		respondError(w, http.StatusBadRequest, "Session has no messages to process")
	case err != nil:
		log.FromCtx(r.Context()).Error().Err(err).Msg("session processing failed")
		respondError(w, http.StatusInternalServerError, "Processing failed")
	default:
		respondJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) listMemory(w http.ResponseWriter, r *http.Request) {
	facts, err := h.memory.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load memory")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"facts": facts, "count": len(facts)})
}

type upsertMemoryRequest struct {
	FactType string `json:"fact_type"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}

func (h *Handler) upsertMemory(w http.ResponseWriter, r *http.Request) {
	var req upsertMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.FactType == "" || req.Key == "" || req.Value == "" {
		respondError(w, http.StatusBadRequest, "fact_type, key, and value are required")
		return
	}

	fact, err := h.memory.Remember(r.Context(), req.FactType, req.Key, req.Value)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store fact")
		return
	}
	respondJSON(w, http.StatusOK, fact)
}

func (h *Handler) deleteMemory(w http.ResponseWriter, r *http.Request) {
	factType := r.PathValue("fact_type")
	key := r.PathValue("key")

	if err := h.memory.Forget(r.Context(), factType, key); err != nil {
		if errors.Is(err, core.ErrFactNotFound) {
			respondError(w, http.StatusNotFound, "Fact not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete fact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type toolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Method      string          `json:"method"`
	Endpoint    string          `json:"endpoint"`
	Parameters  []toolParameter `json:"parameters"`
}

func (h *Handler) listTools(w http.ResponseWriter, _ *http.Request) {
	defs := h.registry.All()
	out := make([]toolInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, toolInfo{
			Name:        def.Name,
			Description: def.Description,
			Category:    def.Category(),
			Method:      def.Method,
			Endpoint:    def.Endpoint,
			Parameters:  toolParameters(def.InputSchema),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func toolParameters(raw json.RawMessage) []toolParameter {
	var schema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	out := make([]toolParameter, 0, len(schema.Properties))
	for name, prop := range schema.Properties {
		typ := prop.Type
		if typ == "" {
			typ = "string"
		}
		out = append(out, toolParameter{
			Name:        name,
			Type:        typ,
			Description: prop.Description,
			Required:    required[name],
		})
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
