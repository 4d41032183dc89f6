// Package library holds the shared writing reference material: symbolic
// theme systems and character archetypes. Both are seeded from built-in
// defaults on first run and served from disk afterwards, so users can
// edit or extend the library without touching code.
package library

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

const symbolsDir = "library/symbols"

// Symbols serves symbolic theme systems: named groups of symbol/meaning
// pairs used to thread imagery through a narrative.
type Symbols struct {
	docs  *storage.DocStore
	store *storage.Store
	cache map[string][]models.Symbol
	log   *logger.Logger
}

func defaultSymbolSystems() map[string][]models.Symbol {
	return map[string][]models.Symbol{
		"rebirth": {
			{Symbol: "Phoenix", Meaning: "Rising from ashes, transformation through fire"},
			{Symbol: "Spring", Meaning: "Renewal after winter, cyclical rebirth"},
			{Symbol: "Butterfly", Meaning: "Transformation from caterpillar, beauty emerging from confinement"},
			{Symbol: "Sunrise", Meaning: "New day, fresh beginnings after darkness"},
		},
		"power": {
			{Symbol: "Lion", Meaning: "Strength, leadership, dominance"},
			{Symbol: "Crown", Meaning: "Authority, rulership, responsibility"},
			{Symbol: "Mountain", Meaning: "Permanence, solidity, overseeing from height"},
			{Symbol: "Fire", Meaning: "Transformative energy, destructive or creative force"},
		},
		"love": {
			{Symbol: "Rose", Meaning: "Beauty with thorns, passion with pain"},
			{Symbol: "Circle", Meaning: "Eternity, completion, unbroken connection"},
			{Symbol: "Bridge", Meaning: "Connection between separate entities"},
			{Symbol: "Twin Flames", Meaning: "Two parts of a whole, complementary forces"},
		},
		"knowledge": {
			{Symbol: "Tree", Meaning: "Branching wisdom, deep roots of understanding"},
			{Symbol: "Book", Meaning: "Accumulated wisdom, preserved insights"},
			{Symbol: "Lantern", Meaning: "Illumination in darkness, guided insight"},
			{Symbol: "Owl", Meaning: "Wisdom, perception beyond ordinary sight"},
		},
		"journey": {
			{Symbol: "Road", Meaning: "Path of life, choices and direction"},
			{Symbol: "River", Meaning: "Flow of time, changing yet constant"},
			{Symbol: "Bridge", Meaning: "Transition, crossing boundaries"},
			{Symbol: "Map", Meaning: "Guidance, overview of possibilities"},
		},
	}
}

// NewSymbols seeds the default theme systems into the library directory
// (skipping any theme that already has a file) and returns the service.
func NewSymbols(docs *storage.DocStore, store *storage.Store, log *logger.Logger) (*Symbols, error) {
	s := &Symbols{
		docs:  docs,
		store: store,
		cache: defaultSymbolSystems(),
		log:   log,
	}
	for theme, symbols := range s.cache {
		rel := path.Join(symbolsDir, theme+".json")
		if docs.Exists(rel) {
			continue
		}
		system := models.SymbolSystem{Theme: theme, Symbols: symbols}
		if _, err := docs.Write(rel, system); err != nil {
			return nil, fmt.Errorf("seed symbol system %q: %w", theme, err)
		}
	}
	return s, nil
}

// Themes lists the known theme ids, sorted.
func (s *Symbols) Themes() []string {
	themes := make([]string, 0, len(s.cache))
	for theme := range s.cache {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	return themes
}

// FindConnections returns up to count symbols for a theme, preferring the
// on-disk library over the built-in defaults. An unknown theme is not an
// error: the result carries a single placeholder entry suggesting the
// known themes. The result is persisted as a symbols element when
// projectID is set, else to the flat legacy symbols directory.
func (s *Symbols) FindConnections(theme string, count int, projectID string) (map[string]any, error) {
	if count <= 0 {
		count = 3
	}
	symbols, ok, err := s.lookup(theme)
	if err != nil {
		return nil, err
	}
	if !ok {
		symbols = []models.Symbol{{
			Symbol:  "Not found",
			Meaning: fmt.Sprintf("Theme %q not found. Try: %s", theme, strings.Join(s.Themes(), ", ")),
		}}
	}
	if len(symbols) > count {
		symbols = symbols[:count]
	}

	data := map[string]any{
		"theme":      theme,
		"symbols":    symbolMaps(symbols),
		"created_at": nowISO(),
	}

	if projectID != "" {
		return s.store.SaveElement(projectID, "symbols", data, "symbols-"+storage.Slug(theme))
	}
	out, err := s.store.SaveLegacy("symbols", "symbols-"+storage.Slug(theme), data)
	if err != nil {
		return nil, err
	}
	data["output_path"] = out
	return data, nil
}

// CreateCustomSymbols registers a new theme system. Every entry needs a
// non-empty symbol and meaning; nothing is written on validation failure.
func (s *Symbols) CreateCustomSymbols(theme string, symbols []models.Symbol, projectID string) (map[string]any, error) {
	if theme == "" {
		return nil, &models.ValidationError{Reason: "theme is required"}
	}
	if len(symbols) == 0 {
		return nil, &models.ValidationError{Reason: "at least one symbol is required"}
	}
	for i, sym := range symbols {
		if sym.Symbol == "" || sym.Meaning == "" {
			return nil, &models.ValidationError{
				Reason: fmt.Sprintf("symbol %d must have both a symbol and a meaning", i),
			}
		}
	}

	themeID := storage.Slug(theme)
	data := map[string]any{
		"theme":      theme,
		"symbols":    symbolMaps(symbols),
		"created_at": nowISO(),
	}
	rel := path.Join(symbolsDir, themeID+".json")
	if _, err := s.docs.Write(rel, data); err != nil {
		return nil, err
	}
	s.cache[themeID] = symbols
	s.log.Info("custom symbol system created", "theme", themeID, "symbols", len(symbols))

	if projectID != "" {
		return s.store.SaveElement(projectID, "symbols", data, "symbols-"+themeID)
	}
	data["output_path"] = rel
	return data, nil
}

// ApplyTheme threads a theme's symbols through a project's existing
// elements: each element gains the theme under a symbolic_themes key, and
// the theme is recorded in the project metadata. elementTypes defaults to
// characters, scenes and outlines. Up to three symbols are applied.
func (s *Symbols) ApplyTheme(projectID, theme string, elementTypes []string) (map[string]any, error) {
	proj, err := s.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	symbols, ok, err := s.lookup(theme)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.NotFoundError{Kind: "theme", Name: theme, Available: s.Themes()}
	}
	if len(symbols) > 3 {
		symbols = symbols[:3]
	}
	if len(elementTypes) == 0 {
		elementTypes = []string{"characters", "scenes", "outlines"}
	}

	appliedTo := map[string]any{}
	for _, elementType := range elementTypes {
		refs, err := s.store.ListElements(projectID, elementType)
		if err != nil {
			if models.IsNotFound(err) {
				appliedTo[elementType] = map[string]any{"count": 0, "reason": err.Error()}
				continue
			}
			return nil, err
		}
		if len(refs) == 0 {
			appliedTo[elementType] = map[string]any{"count": 0, "reason": "no elements found"}
			continue
		}

		count := 0
		for _, ref := range refs {
			element, err := s.store.GetElement(projectID, elementType, ref.ID)
			if err != nil {
				continue
			}
			// Strip the read-time keys so they don't end up in the file.
			delete(element, "id")
			delete(element, "output_path")

			themes, _ := element["symbolic_themes"].(map[string]any)
			if themes == nil {
				themes = map[string]any{}
			}
			themes[theme] = symbolMaps(symbols)
			element["symbolic_themes"] = themes
			element["modified_at"] = nowISO()

			if _, err := s.store.SaveElement(projectID, elementType, element, ref.ID); err != nil {
				return nil, err
			}
			count++
		}
		appliedTo[elementType] = map[string]any{"count": count}
	}

	recorded := false
	for _, t := range proj.Themes {
		if t == theme {
			recorded = true
			break
		}
	}
	if !recorded {
		themes := append(append([]string{}, proj.Themes...), theme)
		if _, err := s.store.UpdateProject(projectID, map[string]any{"themes": themes}); err != nil {
			return nil, err
		}
	}

	s.log.Info("symbolic theme applied", "project_id", projectID, "theme", theme)
	return map[string]any{
		"theme":        theme,
		"project":      projectID,
		"applied_to":   appliedTo,
		"symbols_used": symbolMaps(symbols),
	}, nil
}

// lookup resolves a theme's symbol list, disk first then the built-in
// defaults. ok is false for an unknown theme.
func (s *Symbols) lookup(theme string) (symbols []models.Symbol, ok bool, err error) {
	key := strings.ToLower(theme)
	rel := path.Join(symbolsDir, key+".json")
	if s.docs.Exists(rel) {
		var system models.SymbolSystem
		if err := s.docs.Read(rel, &system); err != nil {
			return nil, false, err
		}
		return system.Symbols, true, nil
	}
	if cached, found := s.cache[key]; found {
		return cached, true, nil
	}
	return nil, false, nil
}

// symbolMaps converts typed symbols to the generic map form the element
// store persists, so project elements round-trip byte for byte.
func symbolMaps(symbols []models.Symbol) []any {
	out := make([]any, len(symbols))
	for i, sym := range symbols {
		out[i] = map[string]any{"symbol": sym.Symbol, "meaning": sym.Meaning}
	}
	return out
}
