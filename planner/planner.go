// Package planner provides the plan tool: it delegates a goal to a secondary
// model and returns a numbered step plan the primary model can follow.
package planner

import (
	"context"
	"encoding/json"

	"github.com/moczadlo/relay"
)

// Planner produces a plan for a goal. [gemini.Client] satisfies it.
type Planner interface {
	Plan(ctx context.Context, goal string) (string, error)
}

type planArgs struct {
	Goal string `json:"goal" jsonschema:"description=The goal to produce a step-by-step plan for" validate:"required"`
}

// PlanTool returns the plan tool backed by p.
func PlanTool(p Planner) relay.Tool {
	return relay.Tool{
		Name:        "plan",
		Description: "Produce a step-by-step plan for a goal using a planning model. Use before tackling multi-step tasks.",
		Schema:      relay.SchemaFor[planArgs](),
		Handler: func(ctx context.Context, args json.RawMessage) (*relay.ToolResult, error) {
			a, err := relay.UnmarshalArgs[planArgs](args)
			if err != nil {
				return relay.ErrorResult(err.Error()), nil
			}
			plan, err := p.Plan(ctx, a.Goal)
			if err != nil {
				// The planning model being unreachable is recoverable: the
				// primary model can proceed without a plan.
				return relay.ErrorResult("planning failed: " + err.Error()), nil
			}
			return relay.TextResult(plan), nil
		},
	}
}
