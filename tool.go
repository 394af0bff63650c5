package relay

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolInfo is the manifest entry sent to the model describing a tool's
// capabilities. It never carries the handler.
type ToolInfo struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// Handler executes a tool with already schema-checked arguments. Handlers
// translate their own I/O failures (filesystem, subprocess, network) into
// IsError results; a non-nil error is reserved for infrastructure faults and
// aborts the current run.
type Handler func(ctx context.Context, args json.RawMessage) (*ToolResult, error)

// Tool is a single named capability the model may invoke.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Handler     Handler
}

// Info returns the manifest entry for the tool.
func (t Tool) Info() ToolInfo {
	return ToolInfo{Name: t.Name, Description: t.Description, Schema: t.Schema}
}

// ToolResult represents the outcome of a tool execution. IsError marks
// tool-reported domain failures sent back to the model for self-correction.
type ToolResult struct {
	Content []ContentBlock
	IsError bool
}

// TextResult wraps text in a successful ToolResult.
func TextResult(text string) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{TextBlock{Text: text}},
		IsError: false,
	}
}

// ErrorResult wraps a message in an IsError ToolResult.
func ErrorResult(msg string) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{TextBlock{Text: msg}},
		IsError: true,
	}
}

// Text returns the concatenated text content of the result.
func (r *ToolResult) Text() string {
	var out string
	for _, b := range r.Content {
		if tb, ok := b.(TextBlock); ok {
			if out != "" {
				out += "\n"
			}
			out += tb.Text
		}
	}
	return out
}

// Invoke checks args against the tool's schema and runs the handler.
// Validation failures are returned as IsError results naming the tool and
// the rejected input; the handler is never called for them. Handler results
// propagate as-is.
func (t Tool) Invoke(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	if err := checkArgs(args, t.Schema); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments for tool %q: %s (arguments: %s)", t.Name, err, compactArgs(args))), nil
	}
	if t.Handler == nil {
		return nil, fmt.Errorf("tool %q has no handler", t.Name)
	}
	return t.Handler(ctx, args)
}

// schemaShape is the subset of JSON Schema the argument check understands:
// required property names and primitive property types.
type schemaShape struct {
	Type       string                 `json:"type"`
	Properties map[string]propertyDef `json:"properties"`
	Required   []string               `json:"required"`
}

type propertyDef struct {
	Type string `json:"type"`
}

// checkArgs validates args structurally against schema: the payload must be
// a JSON object, every required property must be present, and present
// properties must match their declared primitive type. Unknown properties
// pass through; the model frequently sends harmless extras.
func checkArgs(args, schema json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	var shape schemaShape
	if err := json.Unmarshal(schema, &shape); err != nil {
		return fmt.Errorf("malformed schema: %w", err)
	}

	params := map[string]any{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return fmt.Errorf("arguments are not a JSON object: %w", err)
		}
	}

	for _, field := range shape.Required {
		if _, ok := params[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}

	for key, value := range params {
		def, ok := shape.Properties[key]
		if !ok || def.Type == "" {
			continue
		}
		if err := checkType(value, def.Type); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

func checkType(value any, expected string) error {
	ok := false
	switch expected {
	case "string":
		_, ok = value.(string)
	case "number":
		_, ok = value.(float64)
	case "integer":
		// encoding/json decodes all numbers to float64.
		f, isNum := value.(float64)
		ok = isNum && f == float64(int64(f))
	case "boolean":
		_, ok = value.(bool)
	case "array":
		_, ok = value.([]any)
	case "object":
		_, ok = value.(map[string]any)
	case "null":
		ok = value == nil
	default:
		// Unknown schema type: don't reject what we can't check.
		ok = true
	}
	if !ok {
		return fmt.Errorf("expected %s, got %T", expected, value)
	}
	return nil
}

func compactArgs(args json.RawMessage) string {
	if len(args) == 0 {
		return "{}"
	}
	return string(args)
}
