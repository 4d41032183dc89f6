package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storyloom/workshop-mcp/internal/library"
	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/session"
)

// LibraryTools holds references needed by symbol, archetype and
// scaffolding-generator handlers.
type LibraryTools struct {
	Symbols    *library.Symbols
	Archetypes *library.Archetypes
	Generators *library.Generators
	Session    *session.Session
}

// --- Input types ---

type FindSymbolicConnectionsInput struct {
	Theme     string `json:"theme" jsonschema:"Theme to find symbols for, e.g. rebirth, power, love"`
	Count     int    `json:"count,omitempty" jsonschema:"Number of symbols to return (default 3)"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project to store the symbols in (defaults to the active project)"`
}

type SymbolInput struct {
	Symbol  string `json:"symbol" jsonschema:"Symbol name"`
	Meaning string `json:"meaning" jsonschema:"What the symbol stands for"`
}

type CreateCustomSymbolsInput struct {
	Theme     string        `json:"theme" jsonschema:"Theme name for the new symbol system"`
	Symbols   []SymbolInput `json:"symbols" jsonschema:"Symbol/meaning pairs"`
	ProjectID string        `json:"project_id,omitempty" jsonschema:"Project to store the symbols in (defaults to the active project)"`
}

type GetArchetypeDetailsInput struct {
	ArchetypeName string `json:"archetype_name" jsonschema:"Archetype id, e.g. hero, mentor, shadow"`
}

type CreateCharacterInput struct {
	Name      string   `json:"name" jsonschema:"Character name"`
	Archetype string   `json:"archetype" jsonschema:"Base archetype id"`
	Traits    []string `json:"traits,omitempty" jsonschema:"Explicit traits overriding the archetype's"`
	ProjectID string   `json:"project_id,omitempty" jsonschema:"Project to store the character in (defaults to the active project)"`
}

type DevelopCharacterArcInput struct {
	CharacterName string `json:"character_name" jsonschema:"Character name"`
	Archetype     string `json:"archetype" jsonschema:"Character's archetype id"`
	Pattern       string `json:"pattern" jsonschema:"Narrative pattern id to map the arc onto"`
	ProjectID     string `json:"project_id,omitempty" jsonschema:"Project to store the arc in (defaults to the active project)"`
}

type OutlineCharacterInput struct {
	Name      string `json:"name,omitempty" jsonschema:"Main character name"`
	Archetype string `json:"archetype,omitempty" jsonschema:"Main character archetype"`
}

type GenerateOutlineInput struct {
	Title         string                 `json:"title" jsonschema:"Story title"`
	Pattern       string                 `json:"pattern" jsonschema:"Narrative pattern id to outline against"`
	MainCharacter *OutlineCharacterInput `json:"main_character,omitempty" jsonschema:"Optional main character information"`
	ProjectID     string                 `json:"project_id,omitempty" jsonschema:"Project to store the outline in (defaults to the active project)"`
}

type GenerateSceneInput struct {
	SceneTitle   string   `json:"scene_title" jsonschema:"Scene title"`
	PatternStage string   `json:"pattern_stage" jsonschema:"Pattern stage this scene represents"`
	Characters   []string `json:"characters,omitempty" jsonschema:"Character names appearing in the scene"`
	ProjectID    string   `json:"project_id,omitempty" jsonschema:"Project to store the scene in (defaults to the active project)"`
}

type ApplySymbolicThemeInput struct {
	Theme        string   `json:"theme" jsonschema:"Theme whose symbols to apply"`
	ElementTypes []string `json:"element_types,omitempty" jsonschema:"Element types to apply the theme to (default characters, scenes, outlines)"`
	ProjectID    string   `json:"project_id,omitempty" jsonschema:"Project to apply the theme to (defaults to the active project)"`
}

// --- Handlers ---

func (t *LibraryTools) FindSymbolicConnections(_ context.Context, _ *mcp.CallToolRequest, input FindSymbolicConnectionsInput) (*mcp.CallToolResult, any, error) {
	if input.Theme == "" {
		return toolError("Theme is required"), nil, nil
	}

	result, err := t.Symbols.FindConnections(input.Theme, input.Count, t.Session.Resolve(input.ProjectID))
	if err != nil {
		return toolFailure("Failed to find symbolic connections", err), nil, nil
	}
	return toolJSON(result)
}

func (t *LibraryTools) CreateCustomSymbols(_ context.Context, _ *mcp.CallToolRequest, input CreateCustomSymbolsInput) (*mcp.CallToolResult, any, error) {
	symbols := make([]models.Symbol, len(input.Symbols))
	for i, s := range input.Symbols {
		symbols[i] = models.Symbol{Symbol: s.Symbol, Meaning: s.Meaning}
	}

	result, err := t.Symbols.CreateCustomSymbols(input.Theme, symbols, t.Session.Resolve(input.ProjectID))
	if err != nil {
		return toolFailure("Failed to create symbols", err), nil, nil
	}
	return toolJSON(result)
}

func (t *LibraryTools) ListArchetypes(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	archetypes, err := t.Archetypes.List()
	if err != nil {
		return toolFailure("Failed to list archetypes", err), nil, nil
	}
	return toolJSON(map[string]any{"archetypes": archetypes})
}

func (t *LibraryTools) GetArchetypeDetails(_ context.Context, _ *mcp.CallToolRequest, input GetArchetypeDetailsInput) (*mcp.CallToolResult, any, error) {
	if input.ArchetypeName == "" {
		return toolError("Archetype name is required"), nil, nil
	}
	arch, err := t.Archetypes.Get(input.ArchetypeName)
	if err != nil {
		return toolFailure("Failed to get archetype", err), nil, nil
	}
	return toolJSON(map[string]any{"archetype": arch})
}

func (t *LibraryTools) CreateCharacter(_ context.Context, _ *mcp.CallToolRequest, input CreateCharacterInput) (*mcp.CallToolResult, any, error) {
	character, err := t.Archetypes.CreateCharacter(input.Name, input.Archetype, input.Traits, t.Session.Resolve(input.ProjectID))
	if err != nil {
		return toolFailure("Failed to create character", err), nil, nil
	}
	return toolJSON(character)
}

func (t *LibraryTools) DevelopCharacterArc(_ context.Context, _ *mcp.CallToolRequest, input DevelopCharacterArcInput) (*mcp.CallToolResult, any, error) {
	if input.CharacterName == "" {
		return toolError("Character name is required"), nil, nil
	}
	arc, err := t.Archetypes.DevelopArc(input.CharacterName, input.Archetype, input.Pattern, t.Session.Resolve(input.ProjectID))
	if err != nil {
		return toolFailure("Failed to develop character arc", err), nil, nil
	}
	return toolJSON(arc)
}

func (t *LibraryTools) GenerateOutline(_ context.Context, _ *mcp.CallToolRequest, input GenerateOutlineInput) (*mcp.CallToolResult, any, error) {
	var seed *library.CharacterSeed
	if input.MainCharacter != nil {
		seed = &library.CharacterSeed{Name: input.MainCharacter.Name, Archetype: input.MainCharacter.Archetype}
	}
	outline, err := t.Generators.GenerateOutline(input.Title, input.Pattern, seed, t.Session.Resolve(input.ProjectID))
	if err != nil {
		return toolFailure("Failed to generate outline", err), nil, nil
	}
	return toolJSON(outline)
}

func (t *LibraryTools) GenerateScene(_ context.Context, _ *mcp.CallToolRequest, input GenerateSceneInput) (*mcp.CallToolResult, any, error) {
	scene, err := t.Generators.GenerateScene(input.SceneTitle, input.PatternStage, input.Characters, t.Session.Resolve(input.ProjectID))
	if err != nil {
		return toolFailure("Failed to generate scene", err), nil, nil
	}
	return toolJSON(scene)
}

func (t *LibraryTools) ApplySymbolicTheme(_ context.Context, _ *mcp.CallToolRequest, input ApplySymbolicThemeInput) (*mcp.CallToolResult, any, error) {
	if input.Theme == "" {
		return toolError("Theme is required"), nil, nil
	}
	projectID := t.Session.Resolve(input.ProjectID)
	if projectID == "" {
		return toolError("No active project. Use switch_project or pass project_id."), nil, nil
	}
	result, err := t.Symbols.ApplyTheme(projectID, input.Theme, input.ElementTypes)
	if err != nil {
		return toolFailure("Failed to apply symbolic theme", err), nil, nil
	}
	return toolJSON(result)
}
