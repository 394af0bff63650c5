package relay

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps tool names to tools. It is an explicitly constructed, owned
// instance: pass one into each Loop so independent agents and tests never
// share tool state.
//
// Names are identity. Registering a second tool under an existing name
// silently replaces the first; last write wins.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register stores the tool under its name, replacing any prior entry.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
}

// Lookup returns the tool registered under name. Unknown names fail with
// ErrToolNotFound: an expected, recoverable condition that the loop reports
// to the model as an error tool result.
func (r *Registry) Lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%q: %w", name, ErrToolNotFound)
	}
	return t, nil
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Manifest returns the manifest entries for all registered tools, sorted by
// name. The output is deterministic and free of handlers; calling it twice
// without intervening registrations yields identical results.
func (r *Registry) Manifest() []ToolInfo {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]ToolInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, r.tools[name].Info())
	}
	return infos
}

// PromptFragment renders a readable enumeration of tool names and
// descriptions for inclusion in the system prompt.
func (r *Registry) PromptFragment() string {
	names := r.Names()
	if len(names) == 0 {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var b strings.Builder
	b.WriteString("You have access to the following tools:\n")
	for _, name := range names {
		t := r.tools[name]
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	return b.String()
}
