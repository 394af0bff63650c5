// Package anthropic implements [relay.Provider] for the Anthropic Messages
// API. Each Complete call is a single blocking POST; the JSON response body
// is decoded into a [relay.AssistantMessage] with content blocks in strict
// response order.
package anthropic

import "encoding/json"

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 8192
	apiVersion       = "2023-06-01"
	messagesPath     = "/v1/messages"
)

// apiCacheControl specifies a cache breakpoint for prompt caching.
type apiCacheControl struct {
	Type string `json:"type"`          // always "ephemeral"
	TTL  string `json:"ttl,omitempty"` // "" (default 5m) or "1h"
}

// apiRequest is the JSON body sent to the Anthropic Messages API.
type apiRequest struct {
	Model        string            `json:"model"`
	MaxTokens    int               `json:"max_tokens"`
	System       []apiContentBlock `json:"system,omitempty"`
	Messages     []apiMessage      `json:"messages"`
	Tools        []apiTool         `json:"tools,omitempty"`
	Temperature  *float64          `json:"temperature,omitempty"`
	CacheControl *apiCacheControl  `json:"cache_control,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

// apiContentBlock represents a content block in the API request and response.
// Different fields are populated depending on Type.
type apiContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// thinking
	Thinking string `json:"thinking,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string            `json:"tool_use_id,omitempty"`
	Content   []apiContentBlock `json:"content,omitempty"`
	IsError   bool              `json:"is_error,omitempty"`

	// cache control
	CacheControl *apiCacheControl `json:"cache_control,omitempty"`
}

type apiTool struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	InputSchema  json.RawMessage  `json:"input_schema"`
	CacheControl *apiCacheControl `json:"cache_control,omitempty"`
}

// apiResponse is the JSON body of a successful (non-streaming) response.
type apiResponse struct {
	ID         string            `json:"id"`
	Model      string            `json:"model"`
	Content    []apiContentBlock `json:"content"`
	StopReason string            `json:"stop_reason"`
	Usage      apiUsage          `json:"usage"`
}

// apiUsage carries token accounting. Cache fields are nullable per the
// Anthropic API schema.
type apiUsage struct {
	InputTokens              int  `json:"input_tokens"`
	OutputTokens             int  `json:"output_tokens"`
	CacheCreationInputTokens *int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     *int `json:"cache_read_input_tokens"`
}

// apiErrorResponse is the JSON body returned on non-200 HTTP responses.
type apiErrorResponse struct {
	Type  string         `json:"type"`
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
