package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storyloom/workshop-mcp/internal/session"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

// ProjectTools holds references needed by project management handlers.
type ProjectTools struct {
	Store   *storage.Store
	Session *session.Session
}

// --- Input types ---

type CreateProjectInput struct {
	Name        string `json:"name" jsonschema:"Project name; the id is its slug"`
	Description string `json:"description,omitempty" jsonschema:"Optional project description"`
	ProjectType string `json:"project_type,omitempty" jsonschema:"Project type, e.g. story, novel, screenplay (default story)"`
}

type SwitchProjectInput struct {
	ProjectID string `json:"project_id" jsonschema:"Id of the project to make active"`
}

type UpdateProjectInput struct {
	ProjectID string         `json:"project_id,omitempty" jsonschema:"Project to update (defaults to the active project)"`
	Updates   map[string]any `json:"updates" jsonschema:"Metadata fields to set; only fields already present in the metadata are applied"`
}

// --- Handlers ---

func (t *ProjectTools) CreateProject(_ context.Context, _ *mcp.CallToolRequest, input CreateProjectInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return toolError("Project name is required"), nil, nil
	}

	proj, err := t.Store.CreateProject(input.Name, input.Description, input.ProjectType)
	if err != nil {
		return toolFailure("Failed to create project", err), nil, nil
	}

	// New projects become the active one.
	if _, err := t.Session.SwitchProject(t.Store, proj.ID); err != nil {
		return toolError("Project created but failed to activate: %v", err), nil, nil
	}

	return toolJSON(map[string]any{"project": proj, "project_id": proj.ID})
}

func (t *ProjectTools) ListProjects(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	projects, err := t.Store.ListProjects()
	if err != nil {
		return toolFailure("Failed to list projects", err), nil, nil
	}
	return toolJSON(map[string]any{"projects": projects})
}

func (t *ProjectTools) SwitchProject(_ context.Context, _ *mcp.CallToolRequest, input SwitchProjectInput) (*mcp.CallToolResult, any, error) {
	if input.ProjectID == "" {
		return toolError("Project id is required"), nil, nil
	}

	proj, err := t.Session.SwitchProject(t.Store, input.ProjectID)
	if err != nil {
		return toolFailure("Failed to switch project", err), nil, nil
	}
	return toolJSON(map[string]any{"project": proj, "project_id": proj.ID})
}

func (t *ProjectTools) GetCurrentProject(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	id, name, ok := t.Session.Current()
	if !ok {
		return toolText("No project is currently active. Use switch_project to select one."), nil, nil
	}

	proj, err := t.Store.GetProject(id)
	if err != nil {
		return toolText(fmt.Sprintf("Active project: %s (details unavailable)", name)), nil, nil
	}
	return toolJSON(map[string]any{"project": proj, "project_id": id})
}

func (t *ProjectTools) UpdateProject(_ context.Context, _ *mcp.CallToolRequest, input UpdateProjectInput) (*mcp.CallToolResult, any, error) {
	projectID := t.Session.Resolve(input.ProjectID)
	if projectID == "" {
		return toolError("No active project. Use switch_project or pass project_id."), nil, nil
	}
	if len(input.Updates) == 0 {
		return toolError("No updates given"), nil, nil
	}

	proj, err := t.Store.UpdateProject(projectID, input.Updates)
	if err != nil {
		return toolFailure("Failed to update project", err), nil, nil
	}
	return toolJSON(map[string]any{"project": proj, "project_id": projectID})
}
