package library

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/pattern"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

const archetypesDir = "library/archetypes"

// Archetypes serves character archetypes and builds character records and
// arcs from them.
type Archetypes struct {
	docs     *storage.DocStore
	store    *storage.Store
	patterns *pattern.Repository
	cache    map[string]models.Archetype
	log      *logger.Logger
}

func defaultArchetypes() map[string]models.Archetype {
	return map[string]models.Archetype{
		"hero": {
			Name:          "Hero",
			Description:   "The main protagonist who embarks on a journey of growth and transformation.",
			Traits:        []string{"Brave", "Determined", "Selfless", "Growth-oriented"},
			ShadowAspects: []string{"Egotism", "Martyrdom", "Hubris"},
			Examples:      []string{"Luke Skywalker", "Frodo", "Harry Potter"},
		},
		"mentor": {
			Name:          "Mentor",
			Description:   "A wise guide who provides advice, tools, or special knowledge to the hero.",
			Traits:        []string{"Wise", "Experienced", "Protective", "Instructive"},
			ShadowAspects: []string{"Manipulative", "Withholding", "Dogmatic"},
			Examples:      []string{"Obi-Wan Kenobi", "Gandalf", "Dumbledore"},
		},
		"threshold_guardian": {
			Name:          "Threshold Guardian",
			Description:   "A character who tests the hero's commitment and readiness to enter the special world.",
			Traits:        []string{"Challenging", "Testing", "Protective", "Gatekeeping"},
			ShadowAspects: []string{"Blocking", "Inflexible", "Judgmental"},
			Examples:      []string{"The Doorman in The Wizard of Oz", "The Three-Headed Dog in Harry Potter"},
		},
		"herald": {
			Name:          "Herald",
			Description:   "A character who announces the call to adventure or significant change.",
			Traits:        []string{"Messenger", "Catalyst", "Announcer", "Signal"},
			ShadowAspects: []string{"Deceptive", "Manipulative", "Fear-inducing"},
			Examples:      []string{"R2-D2 in Star Wars", "The White Rabbit in Alice in Wonderland"},
		},
		"shapeshifter": {
			Name:          "Shapeshifter",
			Description:   "A character whose loyalty or identity is uncertain or changing.",
			Traits:        []string{"Mysterious", "Changeable", "Unpredictable", "Ambiguous"},
			ShadowAspects: []string{"Treacherous", "Inconsistent", "Untrustworthy"},
			Examples:      []string{"Severus Snape in Harry Potter", "Catwoman in Batman"},
		},
		"shadow": {
			Name:          "Shadow",
			Description:   "The antagonist or representation of the hero's inner darkness.",
			Traits:        []string{"Opposing", "Threatening", "Powerful", "Dark mirror"},
			ShadowAspects: []string{"Destructive", "Corrupt", "Tyrannical"},
			Examples:      []string{"Darth Vader in Star Wars", "Sauron in Lord of the Rings"},
		},
		"trickster": {
			Name:          "Trickster",
			Description:   "A character who brings humor, mischief, or chaos.",
			Traits:        []string{"Playful", "Disruptive", "Clever", "Unpredictable"},
			ShadowAspects: []string{"Malicious", "Destructive", "Cruel"},
			Examples:      []string{"Loki in Norse mythology/Marvel", "The Joker in Batman"},
		},
	}
}

// NewArchetypes seeds the default archetypes into the library directory
// and returns the service.
func NewArchetypes(docs *storage.DocStore, store *storage.Store, patterns *pattern.Repository, log *logger.Logger) (*Archetypes, error) {
	a := &Archetypes{
		docs:     docs,
		store:    store,
		patterns: patterns,
		cache:    defaultArchetypes(),
		log:      log,
	}
	for id, arch := range a.cache {
		rel := path.Join(archetypesDir, id+".json")
		if docs.Exists(rel) {
			continue
		}
		if _, err := docs.Write(rel, arch); err != nil {
			return nil, fmt.Errorf("seed archetype %q: %w", id, err)
		}
	}
	return a, nil
}

// KnownIDs lists the archetype ids, sorted.
func (a *Archetypes) KnownIDs() []string {
	ids := make([]string, 0, len(a.cache))
	for id := range a.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List summarizes the archetypes on disk, falling back to the built-in
// defaults when the library directory is empty.
func (a *Archetypes) List() (map[string]models.PatternSummary, error) {
	out := map[string]models.PatternSummary{}

	ids, err := a.docs.List(archetypesDir)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		var arch models.Archetype
		if err := a.docs.Read(path.Join(archetypesDir, id+".json"), &arch); err != nil {
			return nil, err
		}
		out[id] = summarizeArchetype(id, arch)
	}
	if len(out) == 0 {
		for id, arch := range a.cache {
			out[id] = summarizeArchetype(id, arch)
		}
	}
	return out, nil
}

func summarizeArchetype(id string, arch models.Archetype) models.PatternSummary {
	name := arch.Name
	if name == "" {
		name = id
	}
	desc := arch.Description
	if desc == "" {
		desc = "No description available"
	}
	return models.PatternSummary{Name: name, Description: desc}
}

// Get resolves an archetype by id, disk first then defaults. A miss
// lists the known ids.
func (a *Archetypes) Get(name string) (*models.Archetype, error) {
	id := strings.ToLower(name)
	rel := path.Join(archetypesDir, id+".json")
	if a.docs.Exists(rel) {
		var arch models.Archetype
		if err := a.docs.Read(rel, &arch); err != nil {
			return nil, err
		}
		arch.ID = id
		return &arch, nil
	}
	if arch, ok := a.cache[id]; ok {
		arch.ID = id
		return &arch, nil
	}
	return nil, &models.NotFoundError{Kind: "archetype", Name: name, Available: a.KnownIDs()}
}

// CreateCharacter builds a character record from an archetype. Explicit
// traits override the archetype's; the first shadow aspect becomes the
// character's growth axis. Persisted as a characters element when
// projectID is set, else to the flat legacy characters directory.
func (a *Archetypes) CreateCharacter(name, archetype string, traits []string, projectID string) (map[string]any, error) {
	if name == "" {
		return nil, &models.ValidationError{Reason: "character name is required"}
	}
	arch, err := a.Get(archetype)
	if err != nil {
		return nil, err
	}
	if traits == nil {
		traits = arch.Traits
	}
	shadow := ""
	if len(arch.ShadowAspects) > 0 {
		shadow = arch.ShadowAspects[0]
	}

	character := map[string]any{
		"name":          name,
		"archetype":     archetype,
		"description":   fmt.Sprintf("%s is a character based on the %s archetype.", name, archetype),
		"traits":        toAnySlice(traits),
		"shadow_aspect": shadow,
		"development_potential": fmt.Sprintf(
			"As a %s, %s has potential for growth through confronting their %s tendencies.",
			archetype, name, shadow,
		),
		"created_at": nowISO(),
	}

	if projectID != "" {
		return a.store.SaveElement(projectID, "characters", character, storage.Slug(name+"-"+archetype))
	}
	out, err := a.store.SaveLegacy("characters", storage.Slug(name)+"-"+archetype, character)
	if err != nil {
		return nil, err
	}
	character["output_path"] = out
	return character, nil
}

// DevelopArc maps a character's development onto the stages of a
// narrative pattern, producing one arc entry per stage. Persisted under
// the id arc-{character}-{pattern}.
func (a *Archetypes) DevelopArc(characterName, archetype, patternName, projectID string) (map[string]any, error) {
	p, err := a.patterns.Get(patternName)
	if err != nil {
		return nil, err
	}
	if _, err := a.Get(archetype); err != nil {
		return nil, err
	}

	stages := make([]any, 0, len(p.Stages))
	for _, stage := range p.Stages {
		stages = append(stages, map[string]any{
			"pattern_stage":          stage,
			"character_development":  fmt.Sprintf("%s's development during the %s stage.", characterName, stage),
			"internal_change":        fmt.Sprintf("Internal transformation that occurs during %s.", stage),
			"external_manifestation": fmt.Sprintf("How %s's change manifests externally during %s.", characterName, stage),
		})
	}

	arc := map[string]any{
		"character_name": characterName,
		"archetype":      archetype,
		"pattern":        patternName,
		"arc_stages":     stages,
		"created_at":     nowISO(),
	}

	id := fmt.Sprintf("arc-%s-%s", storage.Slug(characterName), patternName)
	if projectID != "" {
		return a.store.SaveElement(projectID, "characters", arc, id)
	}
	out, err := a.store.SaveLegacy("characters", id, arc)
	if err != nil {
		return nil, err
	}
	arc["output_path"] = out
	return arc, nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func nowISO() string {
	return time.Now().Format("2006-01-02T15:04:05.000000")
}
