package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/moczadlo/relay"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ relay.Provider = (*Client)(nil)

// Client implements [relay.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-3.1-pro-preview.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Complete sends one blocking request to the Gemini API and returns the
// parsed assistant message.
func (c *Client) Complete(ctx context.Context, req relay.Request) (relay.AssistantMessage, error) {
	if err := req.Validate(); err != nil {
		return relay.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	contents := ConvertMessages(req.Messages)
	config := buildConfig(req)

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return relay.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}
	return ParseResponse(resp)
}

// Plan runs a one-shot planning request and returns the plan text. It is the
// backend for the plan tool and bypasses conversation history on purpose:
// the planner sees only the goal.
func (c *Client) Plan(ctx context.Context, goal string) (string, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: goal}},
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: planSystemPrompt}},
		},
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini: plan: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: plan: empty response")
	}
	return text, nil
}

func buildConfig(req relay.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           ConvertTools(req.Tools),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts relay Messages to genai Contents.
// Exported for testing.
func ConvertMessages(msgs []relay.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch m := msg.(type) {
		case relay.UserMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: convertParts(m.Content),
			})
		case relay.AssistantMessage:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: convertParts(m.Content),
			})
		case relay.ToolResultMessage:
			text := extractText(m.Content)
			var responseMap map[string]any
			if m.IsError {
				responseMap = map[string]any{"error": text}
			} else {
				responseMap = map[string]any{"output": text}
			}
			result = append(result, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.ToolName,
						Response: responseMap,
					},
				}},
			})
		}
	}
	return result
}

func convertParts(blocks []relay.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case relay.TextBlock:
			parts = append(parts, &genai.Part{Text: bl.Text})
		case relay.ThinkingBlock:
			parts = append(parts, &genai.Part{Text: bl.Thinking, Thought: true})
		case relay.ToolCallBlock:
			// Arguments is json.RawMessage — always valid JSON from domain types.
			var args map[string]any
			_ = json.Unmarshal(bl.Arguments, &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   bl.ID,
					Name: bl.Name,
					Args: args,
				},
			})
		}
	}
	return parts
}

// extractText returns the text of the first TextBlock, or empty string if none.
func extractText(blocks []relay.ContentBlock) string {
	for _, b := range blocks {
		if tb, ok := b.(relay.TextBlock); ok {
			return tb.Text
		}
	}
	return ""
}

// ConvertTools converts relay tool descriptors to genai Tools.
// Exported for testing.
func ConvertTools(tools []relay.ToolInfo) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		// Schema is json.RawMessage — always valid JSON from domain types.
		var schema map[string]any
		_ = json.Unmarshal(t.Schema, &schema)
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: schema,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// ParseResponse converts a genai response into the domain message, preserving
// part order. Exported for testing.
func ParseResponse(resp *genai.GenerateContentResponse) (relay.AssistantMessage, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return relay.AssistantMessage{}, fmt.Errorf("gemini: response has no candidates")
	}
	cand := resp.Candidates[0]

	msg := relay.AssistantMessage{
		RawStopReason: string(cand.FinishReason),
		Timestamp:     time.Now(),
	}

	sawFunctionCall := false
	for _, p := range cand.Content.Parts {
		switch {
		case p.FunctionCall != nil:
			sawFunctionCall = true
			args, err := json.Marshal(p.FunctionCall.Args)
			if err != nil || len(p.FunctionCall.Args) == 0 {
				args = json.RawMessage(`{}`)
			}
			msg.Content = append(msg.Content, relay.ToolCallBlock{
				ID:        p.FunctionCall.ID,
				Name:      p.FunctionCall.Name,
				Arguments: args,
			})
		case p.Thought:
			msg.Content = append(msg.Content, relay.ThinkingBlock{Thinking: p.Text})
		case p.Text != "":
			msg.Content = append(msg.Content, relay.TextBlock{Text: p.Text})
		}
	}

	msg.StopReason = mapFinishReason(cand.FinishReason, sawFunctionCall)

	if resp.UsageMetadata != nil {
		msg.Usage = relay.Usage{
			InputTokens:     int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens:    int(resp.UsageMetadata.CandidatesTokenCount),
			CacheReadTokens: int(resp.UsageMetadata.CachedContentTokenCount),
		}
	}
	return msg, nil
}

// mapFinishReason normalizes the Gemini finish reason. Gemini reports STOP
// even when the model requested function calls, so tool use is inferred from
// the parts rather than the reason.
func mapFinishReason(reason genai.FinishReason, sawFunctionCall bool) relay.StopReason {
	if sawFunctionCall {
		return relay.StopToolUse
	}
	switch reason {
	case genai.FinishReasonStop:
		return relay.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return relay.StopLength
	default:
		return relay.StopUnknown
	}
}
