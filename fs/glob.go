package fs

import (
	"context"
	"encoding/json"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/moczadlo/relay"
)

type globArgs struct {
	Pattern string `json:"pattern" jsonschema:"description=Glob pattern to match files (e.g. **/*.go)" validate:"required"`
	Path    string `json:"path" jsonschema:"description=Base directory to search from" validate:"required"`
}

// GlobTool returns the glob tool.
func GlobTool() relay.Tool {
	return relay.Tool{
		Name:        "glob",
		Description: "Find files matching a glob pattern. Supports ** for recursive matching.",
		Schema:      relay.SchemaFor[globArgs](),
		Handler:     executeGlob,
	}
}

func executeGlob(_ context.Context, args json.RawMessage) (*relay.ToolResult, error) {
	a, err := relay.UnmarshalArgs[globArgs](args)
	if err != nil {
		return relay.ErrorResult(err.Error()), nil
	}

	if !doublestar.ValidatePattern(a.Pattern) {
		return relay.ErrorResult(fmt.Sprintf("invalid glob pattern: %s", a.Pattern)), nil
	}

	info, err := os.Stat(a.Path)
	if err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to access path: %s", err)), nil
	}
	if !info.IsDir() {
		return relay.ErrorResult("path must be a directory"), nil
	}

	type match struct {
		path    string
		modTime time.Time
	}

	fsys := os.DirFS(a.Path)
	var matches []match

	err = doublestar.GlobWalk(fsys, a.Pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		var mod time.Time
		if fi, err := d.Info(); err == nil {
			mod = fi.ModTime()
		}
		matches = append(matches, match{path: filepath.FromSlash(path), modTime: mod})
		return nil
	})
	if err != nil {
		return relay.ErrorResult(fmt.Sprintf("error matching pattern: %s", err)), nil
	}

	if len(matches) == 0 {
		return relay.TextResult("no matches found"), nil
	}

	// Most recently modified first, so the likeliest-relevant files lead.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].modTime.After(matches[j].modTime)
	})

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.path
	}
	return relay.TextResult(strings.Join(paths, "\n")), nil
}
