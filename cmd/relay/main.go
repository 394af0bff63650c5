// Command relay is a terminal chat agent with tool calling.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... relay [flags]
//	GEMINI_API_KEY=gk-...   relay [flags]
//
// Flags:
//
//	-provider string       Provider: anthropic, gemini (auto-detected from env vars if omitted)
//	-model string          Model ID (default: provider default)
//	-resume string         Path to a saved transcript to resume
//	-save string           Path to save the transcript on exit
//	-system-prompt string  Path to system prompt file (default: .relay/prompt.md)
//	-api-key string        API key (overrides provider's env var)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/moczadlo/relay"
	bt "github.com/moczadlo/relay/bubbletea"
	"github.com/moczadlo/relay/jsonx"
)

const defaultPromptPath = ".relay/prompt.md"

const defaultSystemPrompt = "You are a helpful coding assistant. Use the available tools to " +
	"inspect and modify files, run commands, and search the workspace."

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		model        = flag.String("model", "", "Model ID (provider-specific)")
		resumePath   = flag.String("resume", "", "Path to a saved transcript to resume")
		savePath     = flag.String("save", "", "Path to save the transcript on exit")
		promptPath   = flag.String("system-prompt", defaultPromptPath, "Path to system prompt file")
		providerFlag = flag.String("provider", "", "Provider: anthropic, gemini (auto-detected from env vars if omitted)")
		apiKey       = flag.String("api-key", "", "API key (overrides provider's env var)")
	)
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Resolve provider. Env vars are read here and passed as values.
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	provider, err := resolveProvider(ctx, *providerFlag, *apiKey, anthropicKey, geminiKey)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(ctx, geminiKey)
	if err != nil {
		return err
	}

	conv, err := loadOrCreateConversation(*resumePath, *promptPath, registry)
	if err != nil {
		return err
	}

	loop := relay.NewLoop(provider, registry)

	// Agent function closure for the TUI.
	modelID := *model
	agentFn := func(ctx context.Context, c *relay.Conversation, onEvent func(relay.Event)) error {
		opts := []relay.RunOption{relay.WithEventHandler(onEvent)}
		if modelID != "" {
			opts = append(opts, relay.WithModel(modelID))
		}
		return loop.Run(ctx, c, opts...)
	}

	tuiModel := bt.New(agentFn, conv, registry, relay.DefaultTheme(), *savePath)
	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	// Save transcript on exit.
	if *savePath != "" {
		if err := jsonx.Save(*savePath, conv); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
	} else if conv.Len() > 0 {
		path := defaultTranscriptPath(conv.ID())
		if err := jsonx.Save(path, conv); err != nil {
			return fmt.Errorf("auto-save transcript: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Transcript saved to %s\n", path)
	}

	return nil
}

// loadOrCreateConversation resumes a saved transcript when resumePath is set;
// otherwise it creates a fresh conversation whose system prompt is the prompt
// file (or the built-in default) plus the registry's tool enumeration.
func loadOrCreateConversation(resumePath, promptPath string, registry *relay.Registry) (*relay.Conversation, error) {
	if resumePath != "" {
		conv, err := jsonx.Load(resumePath)
		if err != nil {
			return nil, fmt.Errorf("resume transcript: %w", err)
		}
		return conv, nil
	}

	// Tolerate a missing default prompt file; fail on all other errors.
	systemPrompt := defaultSystemPrompt
	data, err := os.ReadFile(promptPath)
	switch {
	case err == nil:
		systemPrompt = string(data)
	case errors.Is(err, os.ErrNotExist) && promptPath == defaultPromptPath:
	default:
		return nil, fmt.Errorf("read system prompt: %w", err)
	}

	if fragment := registry.PromptFragment(); fragment != "" {
		systemPrompt = systemPrompt + "\n\n" + fragment
	}
	return relay.NewConversation(systemPrompt), nil
}

func defaultTranscriptPath(id string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".relay", "transcripts", id+".json")
}
