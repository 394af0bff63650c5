package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moczadlo/relay"
)

// Interface compliance check.
var _ relay.Provider = (*Client)(nil)

// Client implements [relay.Provider] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Anthropic [Client] with the given API key and options.
// An empty key is sent as-is; the service rejects the unauthenticated
// request and the rejection surfaces as a transport failure, not a local
// validation error.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete sends one blocking request to the Anthropic Messages API and
// returns the parsed assistant message. Content block order in the result
// matches response order exactly.
func (c *Client) Complete(ctx context.Context, req relay.Request) (relay.AssistantMessage, error) {
	if err := req.Validate(); err != nil {
		return relay.AssistantMessage{}, fmt.Errorf("anthropic: %w", err)
	}

	body, err := c.buildRequestBody(req)
	if err != nil {
		return relay.AssistantMessage{}, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return relay.AssistantMessage{}, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return relay.AssistantMessage{}, fmt.Errorf("anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return relay.AssistantMessage{}, parseHTTPError(resp)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return relay.AssistantMessage{}, fmt.Errorf("anthropic: decode response: %w", err)
	}

	return parseResponse(apiResp), nil
}

func (c *Client) buildRequestBody(req relay.Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	apiReq := apiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      convertSystem(req.SystemPrompt),
		Messages:    convertMessages(req.Messages),
		Tools:       convertTools(req.Tools),
		Temperature: req.Temperature,
	}
	injectCacheMarkers(&apiReq)

	return json.Marshal(apiReq)
}

// convertSystem converts a system prompt string to an array of content blocks
// suitable for the Anthropic API. Returns nil when the prompt is empty.
func convertSystem(prompt string) []apiContentBlock {
	if prompt == "" {
		return nil
	}
	return []apiContentBlock{{Type: "text", Text: prompt}}
}

// injectCacheMarkers sets cache_control breakpoints on the request:
//  1. Top-level: automatic caching for the conversation message window.
//  2. System prompt last block: stable content breakpoint.
//  3. Last tool: stable tool definitions breakpoint.
func injectCacheMarkers(req *apiRequest) {
	// cc is shared across all breakpoints; safe because it is read-only after assignment.
	cc := &apiCacheControl{Type: "ephemeral"}

	req.CacheControl = cc

	if len(req.System) > 0 {
		req.System[len(req.System)-1].CacheControl = cc
	}

	if len(req.Tools) > 0 {
		req.Tools[len(req.Tools)-1].CacheControl = cc
	}
}

func convertMessages(msgs []relay.Message) []apiMessage {
	var result []apiMessage
	for _, msg := range msgs {
		switch m := msg.(type) {
		case relay.UserMessage:
			result = append(result, apiMessage{
				Role:    "user",
				Content: convertContentBlocks(m.Content),
			})
		case relay.AssistantMessage:
			result = append(result, apiMessage{
				Role:    "assistant",
				Content: convertContentBlocks(m.Content),
			})
		case relay.ToolResultMessage:
			block := apiContentBlock{
				Type:      "tool_result",
				ToolUseID: m.ToolCallID,
				Content:   convertContentBlocks(m.Content),
				IsError:   m.IsError,
			}
			// Merge consecutive tool results into the same user message.
			if n := len(result); n > 0 && result[n-1].Role == "user" && isToolResultMessage(result[n-1]) {
				result[n-1].Content = append(result[n-1].Content, block)
			} else {
				result = append(result, apiMessage{
					Role:    "user",
					Content: []apiContentBlock{block},
				})
			}
		}
	}
	return result
}

func isToolResultMessage(msg apiMessage) bool {
	return len(msg.Content) > 0 && msg.Content[0].Type == "tool_result"
}

func convertContentBlocks(blocks []relay.ContentBlock) []apiContentBlock {
	result := make([]apiContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch bl := b.(type) {
		case relay.TextBlock:
			result = append(result, apiContentBlock{Type: "text", Text: bl.Text})
		case relay.ThinkingBlock:
			result = append(result, apiContentBlock{Type: "thinking", Thinking: bl.Thinking})
		case relay.ToolCallBlock:
			result = append(result, apiContentBlock{Type: "tool_use", ID: bl.ID, Name: bl.Name, Input: bl.Arguments})
		}
	}
	return result
}

func convertTools(tools []relay.ToolInfo) []apiTool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]apiTool, len(tools))
	for i, t := range tools {
		result[i] = apiTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema,
		}
	}
	return result
}

// parseResponse converts a decoded API response into the domain message,
// preserving content block order.
func parseResponse(resp apiResponse) relay.AssistantMessage {
	msg := relay.AssistantMessage{
		StopReason:    mapStopReason(resp.StopReason),
		RawStopReason: resp.StopReason,
		Timestamp:     time.Now(),
	}
	for _, b := range resp.Content {
		switch b.Type {
		case "text":
			msg.Content = append(msg.Content, relay.TextBlock{Text: b.Text})
		case "thinking":
			msg.Content = append(msg.Content, relay.ThinkingBlock{Thinking: b.Thinking})
		case "tool_use":
			input := b.Input
			if len(input) == 0 {
				input = json.RawMessage(`{}`)
			}
			msg.Content = append(msg.Content, relay.ToolCallBlock{ID: b.ID, Name: b.Name, Arguments: input})
		}
		// Unknown block types are skipped: forward compatibility with new
		// API block kinds the runtime does not interpret.
	}
	msg.Usage = relay.Usage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	if resp.Usage.CacheReadInputTokens != nil {
		msg.Usage.CacheReadTokens = *resp.Usage.CacheReadInputTokens
	}
	if resp.Usage.CacheCreationInputTokens != nil {
		msg.Usage.CacheWriteTokens = *resp.Usage.CacheCreationInputTokens
	}
	return msg
}

func mapStopReason(raw string) relay.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return relay.StopEndTurn
	case "max_tokens":
		return relay.StopLength
	case "tool_use":
		return relay.StopToolUse
	default:
		return relay.StopUnknown
	}
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Type == "" {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}
