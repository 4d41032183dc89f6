package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/pattern"
	"github.com/storyloom/workshop-mcp/internal/session"
)

// PatternTools holds references needed by pattern and analysis handlers.
type PatternTools struct {
	Repo    *pattern.Repository
	Matcher *pattern.Matcher
	Session *session.Session
}

// --- Input types ---

type GetPatternDetailsInput struct {
	PatternName string `json:"pattern_name" jsonschema:"Pattern id, e.g. heroes_journey"`
}

type CreateCustomPatternInput struct {
	Name                   string   `json:"name" jsonschema:"Pattern name"`
	Description            string   `json:"description,omitempty" jsonschema:"Pattern description"`
	Stages                 []string `json:"stages" jsonschema:"Ordered stage names"`
	PsychologicalFunctions []string `json:"psychological_functions,omitempty" jsonschema:"Psychological functions of the pattern"`
	Examples               []string `json:"examples,omitempty" jsonschema:"Example works using this pattern"`
	BasedOn                string   `json:"based_on,omitempty" jsonschema:"Existing pattern id to clone and override"`
}

type CreateHybridPatternInput struct {
	Name         string             `json:"name" jsonschema:"Hybrid pattern name"`
	Description  string             `json:"description,omitempty" jsonschema:"Hybrid pattern description"`
	Patterns     map[string]float64 `json:"patterns" jsonschema:"Component pattern ids mapped to weights, e.g. {\"heroes_journey\": 0.6, \"transformation\": 0.4}"`
	CustomStages []string           `json:"custom_stages,omitempty" jsonschema:"Explicit stage list overriding weighted sampling"`
}

type AnalyzeNarrativeInput struct {
	Scenes      []map[string]any `json:"scenes" jsonschema:"Scene objects; the title, description, pattern_stage, conflict, goal, outcome and notes fields are matched"`
	PatternName string           `json:"pattern_name" jsonschema:"Pattern id to analyze against"`
	Adherence   float64          `json:"adherence,omitempty" jsonschema:"Fraction of stages required for full coverage (0-1, default 1.0)"`
	ProjectID   string           `json:"project_id,omitempty" jsonschema:"Project to store the analysis in (defaults to the active project)"`
}

// --- Handlers ---

func (t *PatternTools) ListPatterns(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	patterns, err := t.Repo.List()
	if err != nil {
		return toolFailure("Failed to list patterns", err), nil, nil
	}
	return toolJSON(map[string]any{"patterns": patterns})
}

func (t *PatternTools) GetPatternDetails(_ context.Context, _ *mcp.CallToolRequest, input GetPatternDetailsInput) (*mcp.CallToolResult, any, error) {
	if input.PatternName == "" {
		return toolError("Pattern name is required"), nil, nil
	}
	p, err := t.Repo.Get(input.PatternName)
	if err != nil {
		return toolFailure("Failed to get pattern", err), nil, nil
	}
	return toolJSON(map[string]any{"pattern": p})
}

func (t *PatternTools) CreateCustomPattern(_ context.Context, _ *mcp.CallToolRequest, input CreateCustomPatternInput) (*mcp.CallToolResult, any, error) {
	p, err := t.Repo.Create(pattern.CreateInput{
		Name:                   input.Name,
		Description:            input.Description,
		Stages:                 input.Stages,
		PsychologicalFunctions: input.PsychologicalFunctions,
		Examples:               input.Examples,
		BasedOn:                input.BasedOn,
	})
	if err != nil {
		return toolFailure("Failed to create pattern", err), nil, nil
	}
	return toolJSON(map[string]any{"pattern": p, "id": p.ID})
}

func (t *PatternTools) CreateHybridPattern(_ context.Context, _ *mcp.CallToolRequest, input CreateHybridPatternInput) (*mcp.CallToolResult, any, error) {
	p, err := t.Repo.ComposeHybrid(pattern.HybridInput{
		Name:         input.Name,
		Description:  input.Description,
		Patterns:     input.Patterns,
		CustomStages: input.CustomStages,
	})
	if err != nil {
		return toolFailure("Failed to create hybrid pattern", err), nil, nil
	}
	return toolJSON(map[string]any{"pattern": p, "id": p.ID})
}

func (t *PatternTools) AnalyzeNarrative(_ context.Context, _ *mcp.CallToolRequest, input AnalyzeNarrativeInput) (*mcp.CallToolResult, any, error) {
	if input.PatternName == "" {
		return toolError("Pattern name is required"), nil, nil
	}
	scenes, err := decodeScenes(input.Scenes)
	if err != nil {
		return toolError("Invalid scenes: %v", err), nil, nil
	}

	projectID := t.Session.Resolve(input.ProjectID)
	result, err := t.Matcher.Analyze(scenes, input.PatternName, projectID, input.Adherence)
	if err != nil {
		return toolFailure("Analysis failed", err), nil, nil
	}
	return toolJSON(result)
}

// decodeScenes round-trips the raw scene maps through JSON into typed
// scenes. Only the named text fields take part in matching.
func decodeScenes(raw []map[string]any) ([]models.Scene, error) {
	scenes := make([]models.Scene, 0, len(raw))
	for _, m := range raw {
		data, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		var scene models.Scene
		if err := json.Unmarshal(data, &scene); err != nil {
			return nil, err
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}
