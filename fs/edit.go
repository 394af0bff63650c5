package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/moczadlo/relay"
)

type editArgs struct {
	FilePath   string `json:"file_path" jsonschema:"description=The path to the file to edit" validate:"required"`
	OldString  string `json:"old_string" jsonschema:"description=The exact string to find and replace" validate:"required"`
	NewString  string `json:"new_string" jsonschema:"description=The replacement string"`
	ReplaceAll bool   `json:"replace_all,omitempty" jsonschema:"description=Replace all occurrences instead of requiring a unique match"`
}

// EditTool returns the edit tool.
func EditTool() relay.Tool {
	return relay.Tool{
		Name:        "edit",
		Description: "Replace a string in a file. Fails if old_string is not unique unless replace_all is true.",
		Schema:      relay.SchemaFor[editArgs](),
		Handler:     executeEdit,
	}
}

func executeEdit(_ context.Context, args json.RawMessage) (*relay.ToolResult, error) {
	a, err := relay.UnmarshalArgs[editArgs](args)
	if err != nil {
		return relay.ErrorResult(err.Error()), nil
	}

	info, err := os.Stat(a.FilePath)
	if err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to stat file: %s", err)), nil
	}

	data, err := os.ReadFile(a.FilePath)
	if err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to read file: %s", err)), nil
	}

	content := string(data)
	count := strings.Count(content, a.OldString)

	if count == 0 {
		return relay.ErrorResult(fmt.Sprintf("old_string not found in %s", a.FilePath)), nil
	}

	if count > 1 && !a.ReplaceAll {
		return relay.ErrorResult(fmt.Sprintf("old_string found %d times in %s; use replace_all to replace all occurrences", count, a.FilePath)), nil
	}

	var newContent string
	if a.ReplaceAll {
		newContent = strings.ReplaceAll(content, a.OldString, a.NewString)
	} else {
		newContent = strings.Replace(content, a.OldString, a.NewString, 1)
	}

	if err := os.WriteFile(a.FilePath, []byte(newContent), info.Mode().Perm()); err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to write file: %s", err)), nil
	}

	replacements := count
	if !a.ReplaceAll {
		replacements = 1
	}

	return relay.TextResult(fmt.Sprintf("replaced %d occurrence(s) in %s", replacements, a.FilePath)), nil
}
