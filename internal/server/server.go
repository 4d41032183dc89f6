// Package server wires configuration, storage, the pattern engine and the
// writing library into a single App and exposes them as an MCP server.
package server

import (
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storyloom/workshop-mcp/internal/config"
	"github.com/storyloom/workshop-mcp/internal/library"
	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/pattern"
	"github.com/storyloom/workshop-mcp/internal/session"
	"github.com/storyloom/workshop-mcp/internal/storage"
	"github.com/storyloom/workshop-mcp/internal/tools"
)

// App holds the assembled services behind the tool surface.
type App struct {
	Config     *config.Config
	Log        *logger.Logger
	Docs       *storage.DocStore
	Index      *storage.SearchIndex
	Store      *storage.Store
	Patterns   *pattern.Repository
	Matcher    *pattern.Matcher
	Symbols    *library.Symbols
	Archetypes *library.Archetypes
	Generators *library.Generators
	Session    *session.Session
}

// NewApp builds the full service graph: storage rooted at the configured
// base dir, the optional search index, seeded pattern and library
// repositories, and an empty session.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	docs, err := storage.Open(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("open base dir: %w", err)
	}

	var index *storage.SearchIndex
	if cfg.SearchIndex {
		index, err = storage.OpenIndex(filepath.Join(cfg.BaseDir, "index.db"))
		if err != nil {
			return nil, fmt.Errorf("open search index: %w", err)
		}
	}

	store := storage.NewStore(docs, index, log)

	patterns, err := pattern.NewRepository(docs, log)
	if err != nil {
		return nil, fmt.Errorf("seed patterns: %w", err)
	}
	symbols, err := library.NewSymbols(docs, store, log)
	if err != nil {
		return nil, fmt.Errorf("seed symbols: %w", err)
	}
	archetypes, err := library.NewArchetypes(docs, store, patterns, log)
	if err != nil {
		return nil, fmt.Errorf("seed archetypes: %w", err)
	}

	return &App{
		Config:     cfg,
		Log:        log,
		Docs:       docs,
		Index:      index,
		Store:      store,
		Patterns:   patterns,
		Matcher:    pattern.NewMatcher(patterns, store, log),
		Symbols:    symbols,
		Archetypes: archetypes,
		Generators: library.NewGenerators(patterns, store, log),
		Session:    session.New(),
	}, nil
}

// Close releases the search index handle.
func (a *App) Close() error {
	if a.Index != nil {
		return a.Index.Close()
	}
	return nil
}

// MCPServer returns a fully configured MCP server with all tools
// registered.
func (a *App) MCPServer() *mcp.Server {
	pt := &tools.PatternTools{Repo: a.Patterns, Matcher: a.Matcher, Session: a.Session}
	prt := &tools.ProjectTools{Store: a.Store, Session: a.Session}
	et := &tools.ElementTools{Store: a.Store, Session: a.Session}
	lt := &tools.LibraryTools{Symbols: a.Symbols, Archetypes: a.Archetypes, Generators: a.Generators, Session: a.Session}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "workshop-mcp",
		Version: "0.1.0",
	}, nil)

	// Pattern tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_patterns",
		Description: "List all available narrative patterns with stage counts",
	}, pt.ListPatterns)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_pattern_details",
		Description: "Get the full record of a narrative pattern: stages, psychological functions, examples",
	}, pt.GetPatternDetails)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_custom_pattern",
		Description: "Create a custom narrative pattern, optionally cloning and overriding an existing one",
	}, pt.CreateCustomPattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_hybrid_pattern",
		Description: "Compose a hybrid pattern from weighted component patterns (or explicit custom stages)",
	}, pt.CreateHybridPattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_narrative",
		Description: "Match a set of scenes against a narrative pattern and report matched/missing stages",
	}, pt.AnalyzeNarrative)

	// Project tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_project",
		Description: "Create a new writing project and make it the active one",
	}, prt.CreateProject)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_projects",
		Description: "List all writing projects",
	}, prt.ListProjects)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "switch_project",
		Description: "Switch the active project context for the current session",
	}, prt.SwitchProject)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_current_project",
		Description: "Get the currently active project",
	}, prt.GetCurrentProject)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_project",
		Description: "Update fields of a project's metadata (only existing fields are applied)",
	}, prt.UpdateProject)

	// Element tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "save_element",
		Description: "Save a narrative element (character, scene, outline, ...) into a project",
	}, et.SaveElement)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_element",
		Description: "Get a project element by type and id",
	}, et.GetElement)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_elements",
		Description: "List a project's elements, for one type or all types",
	}, et.ListElements)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_elements",
		Description: "Search a project's elements by name and content",
	}, et.SearchElements)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "rebuild_index",
		Description: "Rebuild a project's element index from the files on disk",
	}, et.RebuildIndex)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_outputs",
		Description: "List every project plus the records in the flat legacy directories",
	}, et.ListOutputs)

	// Library tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "find_symbolic_connections",
		Description: "Find symbols for a theme from the symbol library",
	}, lt.FindSymbolicConnections)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_custom_symbols",
		Description: "Register a custom symbol system for a theme",
	}, lt.CreateCustomSymbols)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_archetypes",
		Description: "List the available character archetypes",
	}, lt.ListArchetypes)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_archetype_details",
		Description: "Get the full record of a character archetype",
	}, lt.GetArchetypeDetails)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_character",
		Description: "Create a character from an archetype",
	}, lt.CreateCharacter)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "develop_character_arc",
		Description: "Map a character's development onto the stages of a narrative pattern",
	}, lt.DevelopCharacterArc)

	// Generation tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "generate_outline",
		Description: "Generate a story outline with one section per stage of a narrative pattern",
	}, lt.GenerateOutline)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "generate_scene",
		Description: "Generate a scene skeleton for a pattern stage",
	}, lt.GenerateScene)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "apply_symbolic_theme",
		Description: "Apply a theme's symbols to a project's existing elements",
	}, lt.ApplySymbolicTheme)

	return srv
}
