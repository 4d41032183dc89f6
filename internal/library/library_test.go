package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/pattern"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

type fixture struct {
	docs       *storage.DocStore
	store      *storage.Store
	symbols    *Symbols
	archetypes *Archetypes
	generators *Generators
}

func setup(t *testing.T) *fixture {
	t.Helper()
	docs, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	store := storage.NewStore(docs, nil, logger.Nop())
	patterns, err := pattern.NewRepository(docs, logger.Nop())
	require.NoError(t, err)
	symbols, err := NewSymbols(docs, store, logger.Nop())
	require.NoError(t, err)
	archetypes, err := NewArchetypes(docs, store, patterns, logger.Nop())
	require.NoError(t, err)
	return &fixture{
		docs:       docs,
		store:      store,
		symbols:    symbols,
		archetypes: archetypes,
		generators: NewGenerators(patterns, store, logger.Nop()),
	}
}

func TestSymbolsSeeded(t *testing.T) {
	f := setup(t)
	for _, theme := range []string{"rebirth", "power", "love", "knowledge", "journey"} {
		assert.True(t, f.docs.Exists("library/symbols/"+theme+".json"), "expected %s to be seeded", theme)
	}
	assert.Equal(t, []string{"journey", "knowledge", "love", "power", "rebirth"}, f.symbols.Themes())
}

func TestFindConnectionsLimitsCount(t *testing.T) {
	f := setup(t)

	result, err := f.symbols.FindConnections("rebirth", 2, "")
	require.NoError(t, err)
	assert.Equal(t, "rebirth", result["theme"])

	symbols, ok := result["symbols"].([]any)
	require.True(t, ok)
	require.Len(t, symbols, 2)
	first, ok := symbols[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Phoenix", first["symbol"])

	// Default count is 3.
	result, err = f.symbols.FindConnections("power", 0, "")
	require.NoError(t, err)
	assert.Len(t, result["symbols"], 3)
}

func TestFindConnectionsUnknownThemeSuggests(t *testing.T) {
	f := setup(t)

	result, err := f.symbols.FindConnections("entropy", 3, "")
	require.NoError(t, err, "an unknown theme is not a hard error")

	symbols, ok := result["symbols"].([]any)
	require.True(t, ok)
	require.Len(t, symbols, 1)
	entry, ok := symbols[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Not found", entry["symbol"])
	assert.Contains(t, entry["meaning"], "rebirth")
}

func TestFindConnectionsPersistsToProject(t *testing.T) {
	f := setup(t)
	_, err := f.store.CreateProject("My Novel", "", "")
	require.NoError(t, err)

	result, err := f.symbols.FindConnections("journey", 3, "my_novel")
	require.NoError(t, err)
	assert.Equal(t, "symbols-journey", result["id"])

	saved, err := f.store.GetElement("my_novel", "symbols", "symbols-journey")
	require.NoError(t, err)
	assert.Equal(t, "journey", saved["theme"])
}

func TestCreateCustomSymbolsValidation(t *testing.T) {
	f := setup(t)

	_, err := f.symbols.CreateCustomSymbols("decay", []models.Symbol{{Symbol: "Rust"}}, "")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	assert.False(t, f.docs.Exists("library/symbols/decay.json"), "nothing is written on validation failure")

	_, err = f.symbols.CreateCustomSymbols("decay", nil, "")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestCreateCustomSymbolsRegistersTheme(t *testing.T) {
	f := setup(t)

	result, err := f.symbols.CreateCustomSymbols("Deep Time", []models.Symbol{
		{Symbol: "Strata", Meaning: "Layers of buried history"},
		{Symbol: "Fossil", Meaning: "What persists after loss"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "library/symbols/deep_time.json", result["output_path"])

	// The new theme resolves on the next lookup.
	found, err := f.symbols.FindConnections("deep time", 3, "")
	require.NoError(t, err)
	symbols, ok := found["symbols"].([]any)
	require.True(t, ok)
	assert.Len(t, symbols, 2)
}

func TestArchetypesSeededAndListed(t *testing.T) {
	f := setup(t)

	assert.Equal(t, []string{
		"herald", "hero", "mentor", "shadow", "shapeshifter", "threshold_guardian", "trickster",
	}, f.archetypes.KnownIDs())

	listed, err := f.archetypes.List()
	require.NoError(t, err)
	require.Len(t, listed, 7)
	assert.Equal(t, "Hero", listed["hero"].Name)
}

func TestGetArchetype(t *testing.T) {
	f := setup(t)

	arch, err := f.archetypes.Get("Mentor")
	require.NoError(t, err)
	assert.Equal(t, "mentor", arch.ID)
	assert.Contains(t, arch.Traits, "Wise")
	assert.Contains(t, arch.Examples, "Gandalf")

	_, err = f.archetypes.Get("antihero")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Contains(t, err.Error(), "trickster")
}

func TestCreateCharacter(t *testing.T) {
	f := setup(t)

	character, err := f.archetypes.CreateCharacter("Kay", "hero", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Kay", character["name"])
	assert.Equal(t, "Brave", character["traits"].([]any)[0])
	assert.Equal(t, "Egotism", character["shadow_aspect"])
	assert.Contains(t, character["development_potential"], "Egotism")
	assert.Equal(t, "characters/kay-hero.json", character["output_path"])
}

func TestCreateCharacterExplicitTraits(t *testing.T) {
	f := setup(t)
	_, err := f.store.CreateProject("My Novel", "", "")
	require.NoError(t, err)

	character, err := f.archetypes.CreateCharacter("Mara", "trickster", []string{"Patient"}, "my_novel")
	require.NoError(t, err)
	traits, ok := character["traits"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"Patient"}, traits)

	_, err = f.store.GetElement("my_novel", "characters", "mara_trickster")
	require.NoError(t, err)
}

func TestCreateCharacterUnknownArchetype(t *testing.T) {
	f := setup(t)
	_, err := f.archetypes.CreateCharacter("Kay", "antihero", nil, "")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestDevelopArc(t *testing.T) {
	f := setup(t)

	arc, err := f.archetypes.DevelopArc("Kay", "hero", "voyage_and_return", "")
	require.NoError(t, err)
	assert.Equal(t, "voyage_and_return", arc["pattern"])

	stages, ok := arc["arc_stages"].([]any)
	require.True(t, ok)
	require.Len(t, stages, 5)
	first, ok := stages[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "The Ordinary World", first["pattern_stage"])
	assert.Contains(t, first["character_development"], "Kay")

	assert.Equal(t, "characters/arc-kay-voyage_and_return.json", arc["output_path"])
}

func TestDevelopArcUnknownPattern(t *testing.T) {
	f := setup(t)
	_, err := f.archetypes.DevelopArc("Kay", "hero", "three_act", "")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestGenerateOutline(t *testing.T) {
	f := setup(t)

	outline, err := f.generators.GenerateOutline("The Long Winter", "voyage_and_return", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "The Long Winter", outline["title"])
	assert.Equal(t, "voyage_and_return", outline["pattern"])
	assert.Equal(t, "No main character information provided.", outline["character_info"])
	assert.Equal(t, "outlines/outline-the_long_winter.json", outline["output_path"])

	sections, ok := outline["outline"].([]any)
	require.True(t, ok)
	require.Len(t, sections, 5)
	first, ok := sections[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, first["section"])
	assert.Equal(t, "The Ordinary World", first["title"])
	assert.Contains(t, first["description"], "'The Ordinary World' stage")
	assert.Len(t, first["key_elements"], 3)
}

func TestGenerateOutlineWithCharacter(t *testing.T) {
	f := setup(t)
	_, err := f.store.CreateProject("My Novel", "", "")
	require.NoError(t, err)

	outline, err := f.generators.GenerateOutline("The Long Winter", "heroes_journey",
		&CharacterSeed{Name: "Kay", Archetype: "hero"}, "my_novel")
	require.NoError(t, err)
	assert.Equal(t, "The main character is Kay, a hero.", outline["character_info"])
	assert.Equal(t, "outline-the_long_winter", outline["id"])

	saved, err := f.store.GetElement("my_novel", "outlines", "outline-the_long_winter")
	require.NoError(t, err)
	assert.Len(t, saved["outline"], 12)

	// A seed with empty fields falls back to placeholders.
	outline, err = f.generators.GenerateOutline("Nameless", "transformation", &CharacterSeed{}, "")
	require.NoError(t, err)
	assert.Equal(t, "The main character is Unnamed, a character.", outline["character_info"])
}

func TestGenerateOutlineErrors(t *testing.T) {
	f := setup(t)

	_, err := f.generators.GenerateOutline("", "heroes_journey", nil, "")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	_, err = f.generators.GenerateOutline("Untitled", "three_act", nil, "")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestGenerateScene(t *testing.T) {
	f := setup(t)

	scene, err := f.generators.GenerateScene("The Crossing", "Crossing the Threshold", []string{"Kay", "Mara"}, "")
	require.NoError(t, err)
	assert.Equal(t, "The Crossing", scene["scene_title"])
	assert.Equal(t, "Crossing the Threshold", scene["pattern_stage"])
	assert.Equal(t, []any{"Kay", "Mara"}, scene["characters"])
	assert.Contains(t, scene["conflict"], "Kay, Mara")
	assert.Contains(t, scene["goal"], "'Crossing the Threshold' stage")
	assert.Equal(t, "scenes/scene-the_crossing.json", scene["output_path"])

	_, err = f.generators.GenerateScene("", "Ordeal", nil, "")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestGenerateScenePersistsToProject(t *testing.T) {
	f := setup(t)
	_, err := f.store.CreateProject("My Novel", "", "")
	require.NoError(t, err)

	scene, err := f.generators.GenerateScene("The Crossing", "Ordeal", []string{"Kay"}, "my_novel")
	require.NoError(t, err)
	assert.Equal(t, "scene-the_crossing", scene["id"])

	saved, err := f.store.GetElement("my_novel", "scenes", "scene-the_crossing")
	require.NoError(t, err)
	assert.Equal(t, "Ordeal", saved["pattern_stage"])
}

func TestApplyTheme(t *testing.T) {
	f := setup(t)
	_, err := f.store.CreateProject("My Novel", "", "")
	require.NoError(t, err)
	_, err = f.archetypes.CreateCharacter("Kay", "hero", nil, "my_novel")
	require.NoError(t, err)
	_, err = f.generators.GenerateScene("The Crossing", "Ordeal", []string{"Kay"}, "my_novel")
	require.NoError(t, err)

	result, err := f.symbols.ApplyTheme("my_novel", "rebirth", nil)
	require.NoError(t, err)
	assert.Equal(t, "rebirth", result["theme"])
	assert.Equal(t, "my_novel", result["project"])
	assert.Len(t, result["symbols_used"], 3)

	applied, ok := result["applied_to"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"count": 1}, applied["characters"])
	assert.Equal(t, map[string]any{"count": 1}, applied["scenes"])
	// No outlines exist yet, so that type reports zero with a reason.
	outlines, ok := applied["outlines"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0, outlines["count"])

	// The element carries the theme's symbols after the pass.
	character, err := f.store.GetElement("my_novel", "characters", "kay_hero")
	require.NoError(t, err)
	themes, ok := character["symbolic_themes"].(map[string]any)
	require.True(t, ok)
	symbols, ok := themes["rebirth"].([]any)
	require.True(t, ok)
	require.Len(t, symbols, 3)
	first, ok := symbols[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Phoenix", first["symbol"])

	// The theme lands in the project metadata exactly once.
	proj, err := f.store.GetProject("my_novel")
	require.NoError(t, err)
	assert.Equal(t, []string{"rebirth"}, proj.Themes)

	_, err = f.symbols.ApplyTheme("my_novel", "rebirth", []string{"characters"})
	require.NoError(t, err)
	proj, err = f.store.GetProject("my_novel")
	require.NoError(t, err)
	assert.Equal(t, []string{"rebirth"}, proj.Themes)
}

func TestApplyThemeUnknownThemeOrProject(t *testing.T) {
	f := setup(t)
	_, err := f.store.CreateProject("My Novel", "", "")
	require.NoError(t, err)

	_, err = f.symbols.ApplyTheme("my_novel", "entropy", nil)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Contains(t, err.Error(), "rebirth")

	_, err = f.symbols.ApplyTheme("ghost", "rebirth", nil)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}
