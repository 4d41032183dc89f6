// Package tools implements the MCP tool handlers. Each handler group is a
// struct holding the services it needs plus the shared session; results
// are rendered as JSON text content, failures as IsError results rather
// than protocol errors.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storyloom/workshop-mcp/internal/models"
)

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// toolFailure renders a domain error. Not-found and validation errors
// already carry user-facing messages; anything else gets the action
// prefix.
func toolFailure(action string, err error) *mcp.CallToolResult {
	if models.IsNotFound(err) || models.IsValidation(err) {
		return toolError("%v", err)
	}
	return toolError("%s: %v", action, err)
}
