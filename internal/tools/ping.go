package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PingInput defines the input schema for the ping tool.
type PingInput struct {
	Echo   string `json:"echo,omitempty" jsonschema:"Text to echo back"`
	Status bool   `json:"status,omitempty" jsonschema:"Report the journal owner and how many notes are reachable"`
}

type pingStatus struct {
	User  string `json:"user"`
	Notes int    `json:"notes"`
}

// NewPingHandler answers "pong", echoes input, or with status set reports
// whether the record store is reachable for the configured user.
func NewPingHandler(deps *Dependencies) mcp.ToolHandlerFor[PingInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PingInput) (*mcp.CallToolResult, any, error) {
		deps.logger().Debug("ping tool called", "echo", input.Echo, "status", input.Status)
		switch {
		case input.Status:
			notes, err := deps.Notes.List(ctx, deps.UserID)
			if err != nil {
				return serviceError("Journal unavailable", err), nil, nil
			}
			return JSONResult(pingStatus{User: deps.UserID, Notes: len(notes)}), nil, nil
		case input.Echo != "":
			return TextResult(input.Echo), nil, nil
		default:
			return TextResult("pong"), nil, nil
		}
	}
}
