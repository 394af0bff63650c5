package main

import (
	"context"
	"fmt"

	"github.com/moczadlo/relay"
	relayexec "github.com/moczadlo/relay/exec"
	"github.com/moczadlo/relay/fs"
	"github.com/moczadlo/relay/gemini"
	"github.com/moczadlo/relay/planner"
)

// buildRegistry assembles the built-in tool set. The plan tool is registered
// only when a Gemini key is available, since planning runs on a secondary
// Gemini model regardless of the primary provider.
func buildRegistry(ctx context.Context, geminiKey string) (*relay.Registry, error) {
	registry := relay.NewRegistry(
		fs.ReadTool(),
		fs.WriteTool(),
		fs.EditTool(),
		fs.GlobTool(),
		relayexec.BashTool(),
		relayexec.SearchTool(),
	)

	if geminiKey != "" {
		client, err := gemini.New(ctx, geminiKey)
		if err != nil {
			return nil, fmt.Errorf("gemini planner: %w", err)
		}
		registry.Register(planner.PlanTool(client))
	}

	return registry, nil
}
