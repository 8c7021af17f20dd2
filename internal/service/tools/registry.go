package tools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/sandevgo/sazed/internal/core"
)

// MethodInternal marks tools handled in-process instead of through the gateway.
const MethodInternal = "INTERNAL"

// Definition describes a single tool: its schema for the model and how an
// invocation is dispatched. Remote tools map to a gateway endpoint, internal
// tools are handled by the invoker itself.
type Definition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Method      string
	Endpoint    string
	PathParams  []string
}

// Category groups tools by the first segment of their gateway path.
func (d Definition) Category() string {
	if d.Method == MethodInternal {
		return "memory"
	}
	segment := strings.SplitN(strings.TrimPrefix(d.Endpoint, "/"), "/", 2)[0]
	if segment == "" {
		return "other"
	}
	return segment
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Registry holds the tool catalogue, validated at construction so a broken
// definition fails at startup instead of mid-conversation.
type Registry struct {
	defs  []Definition
	index map[string]Definition
}

func NewRegistry(defs []Definition) (*Registry, error) {
	index := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if err := validate(def); err != nil {
			return nil, fmt.Errorf("tool %q: %w", def.Name, err)
		}
		if _, dup := index[def.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", def.Name)
		}
		index[def.Name] = def
	}
	return &Registry{defs: defs, index: index}, nil
}

func validate(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("empty name")
	}

	switch def.Method {
	case MethodInternal:
		if def.Endpoint != "" || len(def.PathParams) > 0 {
			return fmt.Errorf("internal tools take no endpoint")
		}
		return nil
	case http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("unsupported method %q", def.Method)
	}

	props, err := schemaProperties(def.InputSchema)
	if err != nil {
		return fmt.Errorf("input schema: %w", err)
	}

	placeholders := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(def.Endpoint, -1) {
		placeholders[m[1]] = true
	}

	declared := make(map[string]bool, len(def.PathParams))
	for _, param := range def.PathParams {
		declared[param] = true
		if !placeholders[param] {
			return fmt.Errorf("path param %q has no {%s} placeholder in endpoint", param, param)
		}
		if _, ok := props[param]; !ok {
			return fmt.Errorf("path param %q missing from input schema properties", param)
		}
	}
	for name := range placeholders {
		if !declared[name] {
			return fmt.Errorf("endpoint placeholder {%s} not declared in path params", name)
		}
	}
	return nil
}

func schemaProperties(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var schema struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	return schema.Properties, nil
}

// Schemas renders the catalogue in the shape the completion provider expects.
func (r *Registry) Schemas() []core.Tool {
	out := make([]core.Tool, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, core.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}
	return out
}

func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.index[name]
	return def, ok
}

func (r *Registry) All() []Definition {
	return r.defs
}
