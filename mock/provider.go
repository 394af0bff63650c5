// Package mock provides test doubles for relay interfaces using function fields.
package mock

import (
	"context"

	"github.com/moczadlo/relay"
)

// Interface compliance check.
var _ relay.Provider = (*Provider)(nil)

// Provider is a test double for relay.Provider.
// Set CompleteFn before calling Complete.
type Provider struct {
	CompleteFn func(ctx context.Context, req relay.Request) (relay.AssistantMessage, error)
}

// Complete delegates to CompleteFn.
func (p *Provider) Complete(ctx context.Context, req relay.Request) (relay.AssistantMessage, error) {
	return p.CompleteFn(ctx, req)
}
