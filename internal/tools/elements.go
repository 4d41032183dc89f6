package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storyloom/workshop-mcp/internal/session"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

// ElementTools holds references needed by element store handlers.
type ElementTools struct {
	Store   *storage.Store
	Session *session.Session
}

// --- Input types ---

type SaveElementInput struct {
	ProjectID   string         `json:"project_id,omitempty" jsonschema:"Project to save into (defaults to the active project)"`
	ElementType string         `json:"element_type" jsonschema:"Element type, e.g. characters, scenes, outlines, analyses, symbols"`
	ElementData map[string]any `json:"element_data" jsonschema:"Element content; stored verbatim plus a created_at stamp"`
	ElementID   string         `json:"element_id,omitempty" jsonschema:"Explicit element id; derived from name/title when omitted"`
}

type GetElementInput struct {
	ProjectID   string `json:"project_id,omitempty" jsonschema:"Project to read from (defaults to the active project)"`
	ElementType string `json:"element_type" jsonschema:"Element type"`
	ElementID   string `json:"element_id" jsonschema:"Element id"`
}

type ListElementsInput struct {
	ProjectID   string `json:"project_id,omitempty" jsonschema:"Project to list (defaults to the active project)"`
	ElementType string `json:"element_type,omitempty" jsonschema:"Element type to list; omit to list all types"`
}

type SearchElementsInput struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project to search (defaults to the active project)"`
	Query     string `json:"query" jsonschema:"Search query over element names and content"`
}

type RebuildIndexInput struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project whose element index to rebuild (defaults to the active project)"`
}

// --- Handlers ---

func (t *ElementTools) requireProject(explicit string) (string, *mcp.CallToolResult) {
	projectID := t.Session.Resolve(explicit)
	if projectID == "" {
		return "", toolError("No active project. Use switch_project or pass project_id.")
	}
	return projectID, nil
}

func (t *ElementTools) SaveElement(_ context.Context, _ *mcp.CallToolRequest, input SaveElementInput) (*mcp.CallToolResult, any, error) {
	projectID, errResult := t.requireProject(input.ProjectID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.ElementType == "" {
		return toolError("Element type is required"), nil, nil
	}
	if input.ElementData == nil {
		return toolError("Element data is required"), nil, nil
	}

	saved, err := t.Store.SaveElement(projectID, input.ElementType, input.ElementData, input.ElementID)
	if err != nil {
		return toolFailure("Failed to save element", err), nil, nil
	}
	return toolJSON(saved)
}

func (t *ElementTools) GetElement(_ context.Context, _ *mcp.CallToolRequest, input GetElementInput) (*mcp.CallToolResult, any, error) {
	projectID, errResult := t.requireProject(input.ProjectID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.ElementType == "" || input.ElementID == "" {
		return toolError("Element type and id are required"), nil, nil
	}

	element, err := t.Store.GetElement(projectID, input.ElementType, input.ElementID)
	if err != nil {
		return toolFailure("Failed to get element", err), nil, nil
	}
	return toolJSON(element)
}

func (t *ElementTools) ListElements(_ context.Context, _ *mcp.CallToolRequest, input ListElementsInput) (*mcp.CallToolResult, any, error) {
	projectID, errResult := t.requireProject(input.ProjectID)
	if errResult != nil {
		return errResult, nil, nil
	}

	if input.ElementType == "" {
		all, err := t.Store.ListElementTypes(projectID)
		if err != nil {
			return toolFailure("Failed to list elements", err), nil, nil
		}
		return toolJSON(all)
	}

	refs, err := t.Store.ListElements(projectID, input.ElementType)
	if err != nil {
		return toolFailure("Failed to list elements", err), nil, nil
	}
	return toolJSON(map[string]any{input.ElementType: refs})
}

func (t *ElementTools) SearchElements(_ context.Context, _ *mcp.CallToolRequest, input SearchElementsInput) (*mcp.CallToolResult, any, error) {
	projectID, errResult := t.requireProject(input.ProjectID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.Query == "" {
		return toolError("Search query is required"), nil, nil
	}

	hits, err := t.Store.SearchElements(projectID, input.Query)
	if err != nil {
		return toolFailure("Search failed", err), nil, nil
	}
	return toolJSON(map[string]any{"results": hits, "count": len(hits)})
}

func (t *ElementTools) ListOutputs(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	out, err := t.Store.ListOutputs()
	if err != nil {
		return toolFailure("Failed to list outputs", err), nil, nil
	}
	return toolJSON(out)
}

func (t *ElementTools) RebuildIndex(_ context.Context, _ *mcp.CallToolRequest, input RebuildIndexInput) (*mcp.CallToolResult, any, error) {
	projectID, errResult := t.requireProject(input.ProjectID)
	if errResult != nil {
		return errResult, nil, nil
	}

	proj, err := t.Store.RebuildIndex(projectID)
	if err != nil {
		return toolFailure("Failed to rebuild index", err), nil, nil
	}
	return toolJSON(map[string]any{"project": proj, "project_id": projectID})
}
