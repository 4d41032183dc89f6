package library

import (
	"fmt"
	"strings"

	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/pattern"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

// Generators builds template-based story scaffolding: outlines driven by a
// pattern's stages and scene skeletons for a single stage. No text model
// is involved; every field is a fill-in prompt for the writer.
type Generators struct {
	patterns *pattern.Repository
	store    *storage.Store
	log      *logger.Logger
}

// NewGenerators wires the scaffolding generators.
func NewGenerators(patterns *pattern.Repository, store *storage.Store, log *logger.Logger) *Generators {
	return &Generators{patterns: patterns, store: store, log: log}
}

// CharacterSeed is the optional main-character hint for outline generation.
type CharacterSeed struct {
	Name      string
	Archetype string
}

// GenerateOutline produces one outline section per stage of the pattern,
// each with a description and placeholder key elements. Persisted as an
// outlines element when projectID is set, else to the flat legacy
// outlines directory under the id outline-{slug}.
func (g *Generators) GenerateOutline(title, patternName string, mainCharacter *CharacterSeed, projectID string) (map[string]any, error) {
	if title == "" {
		return nil, &models.ValidationError{Reason: "outline title is required"}
	}
	p, err := g.patterns.Get(patternName)
	if err != nil {
		return nil, err
	}

	sections := make([]any, 0, len(p.Stages))
	for i, stage := range p.Stages {
		sections = append(sections, map[string]any{
			"section":     i + 1,
			"title":       stage,
			"description": fmt.Sprintf("In this section, the story addresses the '%s' stage of the %s pattern.", stage, patternName),
			"key_elements": []any{
				fmt.Sprintf("Element 1 for %s", stage),
				fmt.Sprintf("Element 2 for %s", stage),
				fmt.Sprintf("Element 3 for %s", stage),
			},
		})
	}

	characterInfo := "No main character information provided."
	if mainCharacter != nil {
		name := mainCharacter.Name
		if name == "" {
			name = "Unnamed"
		}
		archetype := mainCharacter.Archetype
		if archetype == "" {
			archetype = "character"
		}
		characterInfo = fmt.Sprintf("The main character is %s, a %s.", name, archetype)
	}

	data := map[string]any{
		"title":          title,
		"pattern":        patternName,
		"character_info": characterInfo,
		"outline":        sections,
		"created_at":     nowISO(),
	}

	id := "outline-" + storage.Slug(title)
	if projectID != "" {
		return g.store.SaveElement(projectID, "outlines", data, id)
	}
	out, err := g.store.SaveLegacy("outlines", id, data)
	if err != nil {
		return nil, err
	}
	data["output_path"] = out
	return data, nil
}

// GenerateScene produces a scene skeleton for one pattern stage: setting,
// goal, conflict and outcome prompts around the given characters.
// Persisted as a scenes element when projectID is set, else to the flat
// legacy scenes directory under the id scene-{slug}.
func (g *Generators) GenerateScene(sceneTitle, patternStage string, characters []string, projectID string) (map[string]any, error) {
	if sceneTitle == "" {
		return nil, &models.ValidationError{Reason: "scene title is required"}
	}

	data := map[string]any{
		"scene_title":   sceneTitle,
		"pattern_stage": patternStage,
		"characters":    toAnySlice(characters),
		"setting":       fmt.Sprintf("The setting for the '%s' scene", sceneTitle),
		"goal":          fmt.Sprintf("The goal of this scene is to demonstrate the '%s' stage", patternStage),
		"conflict":      fmt.Sprintf("The conflict in this scene involves %s", strings.Join(characters, ", ")),
		"outcome":       "The outcome of this scene moves the story forward by...",
		"notes":         fmt.Sprintf("This scene is a key moment in the %s stage of the story.", patternStage),
		"created_at":    nowISO(),
	}

	id := "scene-" + storage.Slug(sceneTitle)
	if projectID != "" {
		return g.store.SaveElement(projectID, "scenes", data, id)
	}
	out, err := g.store.SaveLegacy("scenes", id, data)
	if err != nil {
		return nil, err
	}
	data["output_path"] = out
	return data, nil
}
