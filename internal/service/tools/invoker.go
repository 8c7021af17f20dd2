package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

// Gateway forwards a tool invocation to the capability gateway.
type Gateway interface {
	Call(ctx context.Context, method, path string, args map[string]any) (string, error)
}

// MemoryWriter stores a fact the user explicitly asked to remember.
type MemoryWriter interface {
	Remember(ctx context.Context, factType, key, value string) (core.Fact, error)
}

// Invoker dispatches tool calls and folds every failure into a result string
// so the conversation keeps going. The model sees what went wrong and can
// react, the loop never aborts on a bad tool call.
type Invoker struct {
	registry *Registry
	gateway  Gateway
	memory   MemoryWriter
}

func NewInvoker(registry *Registry, gateway Gateway, memory MemoryWriter) *Invoker {
	return &Invoker{
		registry: registry,
		gateway:  gateway,
		memory:   memory,
	}
}

// Invoke executes a single tool call. The second return value flags the
// result as an error for the tool_result block.
func (inv *Invoker) Invoke(ctx context.Context, name string, args json.RawMessage) (string, bool) {
	def, ok := inv.registry.Get(name)
	if !ok {
		log.FromCtx(ctx).Error().Str("tool", name).Msg("model requested unknown tool")
		return fmt.Sprintf("Unknown tool: %s", name), true
	}

	input := map[string]any{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return fmt.Sprintf("Invalid arguments: %v", err), true
		}
	}

	if def.Method == MethodInternal {
		return inv.invokeInternal(ctx, name, input)
	}

	if raw, hasURL := input["url"]; hasURL {
		if err := checkURL(fmt.Sprint(raw)); err != nil {
			return fmt.Sprintf("Blocked: %v", err), true
		}
	}

	endpoint := def.Endpoint
	for _, param := range def.PathParams {
		val, present := input[param]
		if !present || val == nil {
			return fmt.Sprintf("Missing required path parameter: %s", param), true
		}
		delete(input, param)
		endpoint = strings.ReplaceAll(endpoint, "{"+param+"}", url.PathEscape(fmt.Sprint(val)))
	}

	res, err := inv.gateway.Call(ctx, def.Method, endpoint, input)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("tool", name).Msg("tool call failed")
		return fmt.Sprintf("Error: %v", err), true
	}
	return truncate(res), false
}

func (inv *Invoker) invokeInternal(ctx context.Context, name string, input map[string]any) (string, bool) {
	switch name {
	case "memory_update":
		factType, _ := input["fact_type"].(string)
		key, _ := input["key"].(string)
		value, _ := input["value"].(string)
		if factType == "" || key == "" || value == "" {
			return "memory_update requires fact_type, key, and value.", true
		}

		fact, err := inv.memory.Remember(ctx, factType, key, value)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("key", key).Msg("memory update failed")
			return fmt.Sprintf("Error: %v", err), true
		}
		return fmt.Sprintf("Remembered: [%s] %s = %s", fact.FactType, fact.Key, fact.Value), false
	}

	return fmt.Sprintf("Unknown internal tool: %s", name), true
}

// truncate keeps tool output inside the context budget, preserving the head
// and tail of oversized results.
func truncate(input string) string {
	const maxLen = 2000
	if len(input) <= maxLen {
		return input
	}

	head := input[:500]
	tail := input[len(input)-(maxLen-500):]
	return fmt.Sprintf("%s\n\n... [TRUNCATED %d bytes] ...\n\n%s", head, len(input)-maxLen, tail)
}
