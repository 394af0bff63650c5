package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"

	"github.com/moczadlo/relay"
)

type searchArgs struct {
	Pattern string `json:"pattern" jsonschema:"description=Regular expression pattern to search for" validate:"required"`
	Path    string `json:"path" jsonschema:"description=File or directory to search in" validate:"required"`
	Glob    string `json:"glob,omitempty" jsonschema:"description=Glob pattern to filter files (e.g. *.go)"`
}

// SearchTool returns the search tool, backed by ripgrep.
func SearchTool() relay.Tool {
	return relay.Tool{
		Name:        "search",
		Description: "Search file contents with a regular expression using ripgrep. Returns matching lines with file:line:content context.",
		Schema:      relay.SchemaFor[searchArgs](),
		Handler:     executeSearch,
	}
}

// executeSearch shells out to rg. Exit code 1 means no matches, which is a
// successful result, not an error; exit code 2 is a real ripgrep failure.
func executeSearch(ctx context.Context, args json.RawMessage) (*relay.ToolResult, error) {
	a, err := relay.UnmarshalArgs[searchArgs](args)
	if err != nil {
		return relay.ErrorResult(err.Error()), nil
	}

	if _, err := osexec.LookPath("rg"); err != nil {
		return relay.ErrorResult("ripgrep (rg) is not installed or not in PATH"), nil
	}

	cmdArgs := []string{"--line-number", "--no-heading", "--color=never"}
	if a.Glob != "" {
		cmdArgs = append(cmdArgs, "--glob", a.Glob)
	}
	cmdArgs = append(cmdArgs, "--regexp", a.Pattern, a.Path)

	cmd := osexec.CommandContext(ctx, "rg", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return relay.TextResult("no matches found"), nil
		}
		if ctx.Err() != nil {
			return relay.ErrorResult(fmt.Sprintf("search cancelled: %s", ctx.Err())), nil
		}
		msg := strings.TrimSpace(Sanitize(stderr.String()))
		if msg == "" {
			msg = err.Error()
		}
		return relay.ErrorResult(fmt.Sprintf("ripgrep failed: %s", msg)), nil
	}

	tr := TruncateTail(Sanitize(stdout.String()), DefaultMaxLines, DefaultMaxBytes)
	out := tr.Content
	if tr.Truncated {
		out += fmt.Sprintf("\n[Showing last %d of %d lines]", tr.OutputLines, tr.TotalLines)
	}
	return relay.TextResult(out), nil
}
