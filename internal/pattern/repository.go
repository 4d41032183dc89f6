package pattern

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

const patternsDir = "library/patterns"

// Repository manages canonical and user-defined patterns backed by the
// document store. Disk is preferred over the in-memory defaults, so a
// custom pattern written under a default id shadows the default. Patterns
// are never mutated in place; new versions get new ids.
type Repository struct {
	docs     *storage.DocStore
	defaults map[string]models.Pattern
	cache    map[string]models.Pattern
	log      *logger.Logger
}

// NewRepository builds a repository and seeds the default patterns to the
// library, writing each only if its file is absent (idempotent).
func NewRepository(docs *storage.DocStore, log *logger.Logger) (*Repository, error) {
	defaults := defaultPatterns()
	cache := make(map[string]models.Pattern, len(defaults))
	for id, p := range defaults {
		cache[id] = p
		rel := path.Join(patternsDir, id+".json")
		if docs.Exists(rel) {
			continue
		}
		if _, err := docs.Write(rel, p); err != nil {
			return nil, err
		}
	}
	return &Repository{docs: docs, defaults: defaults, cache: cache, log: log}, nil
}

// KnownIDs returns the sorted ids of every pattern the repository knows
// about in memory.
func (r *Repository) KnownIDs() []string {
	ids := make([]string, 0, len(r.cache))
	for id := range r.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List summarizes the patterns on disk, falling back to the in-memory
// defaults only when the library directory holds none.
func (r *Repository) List() (map[string]models.PatternSummary, error) {
	summaries := map[string]models.PatternSummary{}

	ids, err := r.docs.List(patternsDir)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		var p models.Pattern
		if err := r.docs.Read(path.Join(patternsDir, id+".json"), &p); err != nil {
			return nil, err
		}
		summaries[id] = summarize(id, p)
	}

	if len(summaries) == 0 {
		for id, p := range r.defaults {
			summaries[id] = summarize(id, p)
		}
	}
	return summaries, nil
}

func summarize(id string, p models.Pattern) models.PatternSummary {
	name := p.Name
	if name == "" {
		name = id
	}
	desc := p.Description
	if desc == "" {
		desc = "No description available"
	}
	return models.PatternSummary{Name: name, Description: desc, Stages: len(p.Stages)}
}

// Get resolves a pattern by name, case-insensitively: library disk first,
// then the in-memory defaults. A miss returns NotFound carrying the known
// pattern ids.
func (r *Repository) Get(name string) (*models.Pattern, error) {
	id := strings.ToLower(name)

	rel := path.Join(patternsDir, id+".json")
	if r.docs.Exists(rel) {
		var p models.Pattern
		if err := r.docs.Read(rel, &p); err != nil {
			return nil, err
		}
		p.ID = id
		return &p, nil
	}

	if p, ok := r.cache[id]; ok {
		p.ID = id
		return &p, nil
	}

	return nil, &models.NotFoundError{Kind: "pattern", Name: name, Available: r.KnownIDs()}
}

// CreateInput carries the fields for a new custom pattern.
type CreateInput struct {
	Name                   string
	Description            string
	Stages                 []string
	PsychologicalFunctions []string
	Examples               []string
	BasedOn                string
}

// Create persists a custom pattern. With BasedOn set, the base pattern is
// cloned and overridden: name, description and stages always, functions
// and examples only when non-empty. The new pattern is registered in the
// in-memory cache under the slug of its name.
func (r *Repository) Create(in CreateInput) (*models.Pattern, error) {
	if in.Name == "" {
		return nil, &models.ValidationError{Reason: "pattern name is required"}
	}
	if len(in.Stages) == 0 {
		return nil, &models.ValidationError{Reason: "pattern must have at least one stage"}
	}

	var p models.Pattern
	if in.BasedOn != "" {
		base, err := r.Get(in.BasedOn)
		if err != nil {
			return nil, err
		}
		p = *base
		p.Name = in.Name
		p.Description = in.Description
		p.Stages = in.Stages
		if len(in.PsychologicalFunctions) > 0 {
			p.PsychologicalFunctions = in.PsychologicalFunctions
		}
		if len(in.Examples) > 0 {
			p.Examples = in.Examples
		}
	} else {
		p = models.Pattern{
			Name:                   in.Name,
			Description:            in.Description,
			Stages:                 in.Stages,
			PsychologicalFunctions: orEmpty(in.PsychologicalFunctions),
			Examples:               orEmpty(in.Examples),
		}
	}
	p.CreatedAt = nowISO()

	return r.persist(p)
}

// persist writes a pattern under the slug of its name and registers it in
// the in-memory cache.
func (r *Repository) persist(p models.Pattern) (*models.Pattern, error) {
	id := storage.Slug(p.Name)
	p.ID = id
	if _, err := r.docs.Write(path.Join(patternsDir, id+".json"), p); err != nil {
		return nil, err
	}
	r.cache[id] = p
	r.log.Info("pattern saved", "pattern_id", id, "stages", len(p.Stages), "hybrid", p.Hybrid)
	return &p, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nowISO() string {
	return time.Now().Format("2006-01-02T15:04:05.000000")
}
