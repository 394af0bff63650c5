package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moczadlo/relay"
)

type writeArgs struct {
	FilePath string `json:"file_path" jsonschema:"description=The path to the file to write" validate:"required"`
	Content  string `json:"content" jsonschema:"description=The content to write to the file"`
}

// WriteTool returns the write tool.
func WriteTool() relay.Tool {
	return relay.Tool{
		Name:        "write",
		Description: "Write content to a file, creating it if it doesn't exist or overwriting if it does.",
		Schema:      relay.SchemaFor[writeArgs](),
		Handler:     executeWrite,
	}
}

func executeWrite(_ context.Context, args json.RawMessage) (*relay.ToolResult, error) {
	a, err := relay.UnmarshalArgs[writeArgs](args)
	if err != nil {
		return relay.ErrorResult(err.Error()), nil
	}

	if err := os.MkdirAll(filepath.Dir(a.FilePath), 0o755); err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to create directories: %s", err)), nil
	}

	// Preserve existing permissions on overwrite.
	perm := os.FileMode(0o644)
	if info, err := os.Stat(a.FilePath); err == nil {
		perm = info.Mode().Perm()
	}

	if err := os.WriteFile(a.FilePath, []byte(a.Content), perm); err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to write file: %s", err)), nil
	}

	return relay.TextResult(fmt.Sprintf("wrote %d bytes to %s", len(a.Content), a.FilePath)), nil
}
