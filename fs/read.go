package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/moczadlo/relay"
)

type readArgs struct {
	FilePath string `json:"file_path" jsonschema:"description=The path to the file to read" validate:"required"`
	Offset   int    `json:"offset,omitempty" jsonschema:"description=Line number to start reading from (1-based)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"description=Maximum number of lines to read"`
}

// ReadTool returns the read tool.
func ReadTool() relay.Tool {
	return relay.Tool{
		Name:        "read",
		Description: "Read the contents of a file, optionally with line offset and limit.",
		Schema:      relay.SchemaFor[readArgs](),
		Handler:     executeRead,
	}
}

func executeRead(_ context.Context, args json.RawMessage) (*relay.ToolResult, error) {
	a, err := relay.UnmarshalArgs[readArgs](args)
	if err != nil {
		return relay.ErrorResult(err.Error()), nil
	}

	f, err := os.Open(a.FilePath)
	if err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to open file: %s", err)), nil
	}
	defer f.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	lineNum := 0
	linesRead := 0

	for scanner.Scan() {
		lineNum++

		if a.Offset > 0 && lineNum < a.Offset {
			continue
		}

		if a.Limit > 0 && linesRead >= a.Limit {
			break
		}

		fmt.Fprintf(&b, "%d\t%s\n", lineNum, scanner.Text())
		linesRead++
	}

	if err := scanner.Err(); err != nil {
		return relay.ErrorResult(fmt.Sprintf("error reading file: %s", err)), nil
	}

	return relay.TextResult(b.String()), nil
}
