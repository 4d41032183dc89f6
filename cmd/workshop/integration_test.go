package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storyloom/workshop-mcp/internal/config"
	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/server"
)

// setupIntegration builds a real server over a temp base dir and returns a
// connected client session using in-memory transports.
func setupIntegration(t *testing.T) *mcp.ClientSession {
	t.Helper()

	cfg := &config.Config{
		BaseDir:     t.TempDir(),
		LogMode:     "dev",
		SearchIndex: true,
	}
	app, err := server.NewApp(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	srv := app.MCPServer()

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	if _, err := srv.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

// callTool calls a tool and returns the text content, failing on IsError.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
	}
	return tc.Text
}

// callToolExpectError calls a tool and expects an IsError response.
func callToolExpectError(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): protocol error: %v", name, err)
	}
	tc := result.Content[0].(*mcp.TextContent)
	if !result.IsError {
		t.Fatalf("CallTool(%s): expected error but got success: %s", name, tc.Text)
	}
	return tc.Text
}

func parseJSON(t *testing.T, text string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("parse response: %v\n%s", err, text)
	}
	return out
}

func TestIntegration_ListTools(t *testing.T) {
	session := setupIntegration(t)

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	expectedTools := []string{
		"list_patterns", "get_pattern_details", "create_custom_pattern",
		"create_hybrid_pattern", "analyze_narrative",
		"create_project", "list_projects", "switch_project",
		"get_current_project", "update_project",
		"save_element", "get_element", "list_elements",
		"search_elements", "rebuild_index", "list_outputs",
		"find_symbolic_connections", "create_custom_symbols",
		"list_archetypes", "get_archetype_details",
		"create_character", "develop_character_arc",
		"generate_outline", "generate_scene", "apply_symbolic_theme",
	}

	toolNames := make(map[string]bool)
	for _, tool := range result.Tools {
		toolNames[tool.Name] = true
	}
	for _, name := range expectedTools {
		if !toolNames[name] {
			t.Errorf("Missing tool: %s", name)
		}
	}
	if len(result.Tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(result.Tools))
	}
}

func TestIntegration_PatternWorkflow(t *testing.T) {
	session := setupIntegration(t)

	// Defaults are present out of the box.
	text := callTool(t, session, "list_patterns", nil)
	listed := parseJSON(t, text)
	patterns, ok := listed["patterns"].(map[string]any)
	if !ok || len(patterns) != 3 {
		t.Fatalf("Expected 3 default patterns, got %v", listed)
	}

	text = callTool(t, session, "get_pattern_details", map[string]any{
		"pattern_name": "heroes_journey",
	})
	details := parseJSON(t, text)
	p, _ := details["pattern"].(map[string]any)
	stages, _ := p["stages"].([]any)
	if len(stages) != 12 {
		t.Errorf("heroes_journey should have 12 stages, got %d", len(stages))
	}

	// Unknown patterns fail with the known ids in the message.
	errText := callToolExpectError(t, session, "get_pattern_details", map[string]any{
		"pattern_name": "three_act",
	})
	if !strings.Contains(errText, "heroes_journey") {
		t.Errorf("Expected known ids in error, got %q", errText)
	}

	// Hybrid composition.
	text = callTool(t, session, "create_hybrid_pattern", map[string]any{
		"name":     "Journey of Change",
		"patterns": map[string]any{"heroes_journey": 0.6, "transformation": 0.4},
	})
	hybrid := parseJSON(t, text)
	hp, _ := hybrid["pattern"].(map[string]any)
	hstages, _ := hp["stages"].([]any)
	if len(hstages) != 12 {
		t.Errorf("Hybrid should have 12 stages, got %d", len(hstages))
	}
	if hp["hybrid"] != true {
		t.Error("Hybrid flag should be set")
	}

	// Analysis without a project lands in the legacy analyses directory.
	text = callTool(t, session, "analyze_narrative", map[string]any{
		"pattern_name": "heroes_journey",
		"scenes": []any{
			map[string]any{"title": "Opening", "pattern_stage": "Ordinary World"},
		},
	})
	analysis := parseJSON(t, text)
	if analysis["pattern"] != "heroes_journey" {
		t.Errorf("analysis pattern = %v", analysis["pattern"])
	}
	if analysis["output_path"] != "analyses/analysis-opening-heroes_journey.json" {
		t.Errorf("output_path = %v", analysis["output_path"])
	}
}

func TestIntegration_ProjectWorkflow(t *testing.T) {
	session := setupIntegration(t)

	// create_project auto-activates.
	text := callTool(t, session, "create_project", map[string]any{
		"name":        "My Novel",
		"description": "Integration test project",
	})
	created := parseJSON(t, text)
	if created["project_id"] != "my_novel" {
		t.Fatalf("project_id = %v", created["project_id"])
	}

	text = callTool(t, session, "get_current_project", nil)
	current := parseJSON(t, text)
	if current["project_id"] != "my_novel" {
		t.Errorf("current project = %v, want my_novel", current["project_id"])
	}

	// Elements save into the active project without an explicit id.
	text = callTool(t, session, "save_element", map[string]any{
		"element_type": "scenes",
		"element_data": map[string]any{
			"title":       "The Crossing",
			"description": "Kay crosses the frozen river at dawn.",
		},
	})
	saved := parseJSON(t, text)
	if saved["id"] != "the_crossing" {
		t.Errorf("element id = %v", saved["id"])
	}

	text = callTool(t, session, "get_element", map[string]any{
		"element_type": "scenes",
		"element_id":   "the_crossing",
	})
	element := parseJSON(t, text)
	if element["title"] != "The Crossing" {
		t.Errorf("element title = %v", element["title"])
	}

	text = callTool(t, session, "list_elements", map[string]any{
		"element_type": "scenes",
	})
	elements := parseJSON(t, text)
	refs, _ := elements["scenes"].([]any)
	if len(refs) != 1 {
		t.Errorf("Expected 1 scene ref, got %v", elements)
	}

	// Full-text search over element content.
	text = callTool(t, session, "search_elements", map[string]any{
		"query": "frozen",
	})
	search := parseJSON(t, text)
	if search["count"] != float64(1) {
		t.Errorf("search count = %v", search["count"])
	}

	// Metadata patch touches known fields only.
	text = callTool(t, session, "update_project", map[string]any{
		"updates": map[string]any{"status": "complete"},
	})
	updated := parseJSON(t, text)
	proj, _ := updated["project"].(map[string]any)
	if proj["status"] != "complete" {
		t.Errorf("status = %v", proj["status"])
	}

	callTool(t, session, "rebuild_index", nil)

	// Analysis with an active project persists as an analyses element.
	callTool(t, session, "analyze_narrative", map[string]any{
		"pattern_name": "heroes_journey",
		"scenes": []any{
			map[string]any{"title": "The Crossing", "pattern_stage": "Crossing the Threshold"},
		},
	})
	text = callTool(t, session, "get_element", map[string]any{
		"element_type": "analyses",
		"element_id":   "analysis-the_crossing-heroes_journey",
	})
	analysis := parseJSON(t, text)
	if analysis["pattern"] != "heroes_journey" {
		t.Errorf("persisted analysis pattern = %v", analysis["pattern"])
	}
}

func TestIntegration_LibraryWorkflow(t *testing.T) {
	session := setupIntegration(t)

	text := callTool(t, session, "find_symbolic_connections", map[string]any{
		"theme": "rebirth",
		"count": 2,
	})
	symbols := parseJSON(t, text)
	list, _ := symbols["symbols"].([]any)
	if len(list) != 2 {
		t.Fatalf("Expected 2 symbols, got %v", symbols)
	}

	// Bad custom symbols are rejected before any write.
	errText := callToolExpectError(t, session, "create_custom_symbols", map[string]any{
		"theme":   "decay",
		"symbols": []any{map[string]any{"symbol": "Rust"}},
	})
	if !strings.Contains(errText, "meaning") {
		t.Errorf("Expected validation message, got %q", errText)
	}

	text = callTool(t, session, "list_archetypes", nil)
	archetypes := parseJSON(t, text)
	listed, _ := archetypes["archetypes"].(map[string]any)
	if len(listed) != 7 {
		t.Errorf("Expected 7 archetypes, got %d", len(listed))
	}

	text = callTool(t, session, "create_character", map[string]any{
		"name":      "Kay",
		"archetype": "hero",
	})
	character := parseJSON(t, text)
	if character["shadow_aspect"] != "Egotism" {
		t.Errorf("shadow_aspect = %v", character["shadow_aspect"])
	}

	text = callTool(t, session, "develop_character_arc", map[string]any{
		"character_name": "Kay",
		"archetype":      "hero",
		"pattern":        "voyage_and_return",
	})
	arc := parseJSON(t, text)
	stages, _ := arc["arc_stages"].([]any)
	if len(stages) != 5 {
		t.Errorf("Expected 5 arc stages, got %d", len(stages))
	}
}

func TestIntegration_GenerationWorkflow(t *testing.T) {
	session := setupIntegration(t)

	callTool(t, session, "create_project", map[string]any{"name": "The Long Winter"})

	// Outline sections track the pattern's stages.
	text := callTool(t, session, "generate_outline", map[string]any{
		"title":          "The Long Winter",
		"pattern":        "voyage_and_return",
		"main_character": map[string]any{"name": "Kay", "archetype": "hero"},
	})
	outline := parseJSON(t, text)
	sections, _ := outline["outline"].([]any)
	if len(sections) != 5 {
		t.Fatalf("Expected 5 outline sections, got %d", len(sections))
	}
	if outline["character_info"] != "The main character is Kay, a hero." {
		t.Errorf("character_info = %v", outline["character_info"])
	}

	text = callTool(t, session, "generate_scene", map[string]any{
		"scene_title":   "The Thaw",
		"pattern_stage": "The Return",
		"characters":    []any{"Kay", "Mara"},
	})
	scene := parseJSON(t, text)
	if scene["id"] != "scene-the_thaw" {
		t.Errorf("scene id = %v", scene["id"])
	}

	// The theme pass touches the generated elements.
	text = callTool(t, session, "apply_symbolic_theme", map[string]any{
		"theme": "rebirth",
	})
	applied := parseJSON(t, text)
	appliedTo, _ := applied["applied_to"].(map[string]any)
	scenes, _ := appliedTo["scenes"].(map[string]any)
	if scenes["count"] != float64(1) {
		t.Errorf("applied_to scenes = %v", appliedTo["scenes"])
	}

	text = callTool(t, session, "get_element", map[string]any{
		"element_type": "scenes",
		"element_id":   "scene-the_thaw",
	})
	element := parseJSON(t, text)
	if _, ok := element["symbolic_themes"].(map[string]any); !ok {
		t.Errorf("Expected symbolic_themes on the scene, got %v", element["symbolic_themes"])
	}

	// Legacy mirrors and projects both show up in the outputs listing.
	text = callTool(t, session, "list_outputs", nil)
	outputs := parseJSON(t, text)
	if _, ok := outputs["projects"].([]any); !ok {
		t.Errorf("Expected projects list, got %v", outputs["projects"])
	}
	legacy, _ := outputs["legacy"].(map[string]any)
	outlines, _ := legacy["outlines"].([]any)
	if len(outlines) != 1 {
		t.Errorf("Expected 1 legacy outline, got %v", legacy["outlines"])
	}

	errText := callToolExpectError(t, session, "apply_symbolic_theme", map[string]any{
		"theme": "entropy",
	})
	if !strings.Contains(errText, "not found") {
		t.Errorf("Expected 'not found', got %q", errText)
	}
}

func TestIntegration_ErrorCases(t *testing.T) {
	session := setupIntegration(t)

	// Element tools without an active project.
	errText := callToolExpectError(t, session, "save_element", map[string]any{
		"element_type": "scenes",
		"element_data": map[string]any{"title": "Orphan"},
	})
	if !strings.Contains(errText, "No active project") {
		t.Errorf("Expected 'No active project', got %q", errText)
	}

	errText = callToolExpectError(t, session, "switch_project", map[string]any{
		"project_id": "ghost",
	})
	if !strings.Contains(errText, "not found") {
		t.Errorf("Expected 'not found', got %q", errText)
	}

	callTool(t, session, "create_project", map[string]any{"name": "Error Test"})

	errText = callToolExpectError(t, session, "get_element", map[string]any{
		"element_type": "scenes",
		"element_id":   "missing",
	})
	if !strings.Contains(errText, "not found") {
		t.Errorf("Expected 'not found', got %q", errText)
	}

	errText = callToolExpectError(t, session, "analyze_narrative", map[string]any{
		"pattern_name": "",
	})
	if !strings.Contains(errText, "required") {
		t.Errorf("Expected required-field message, got %q", errText)
	}
}
