package storage

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/models"
)

// legacyTypes are the element types that predate the project model. Every
// project-scoped write of one of these is mirrored into a flat directory
// at the store root for backward-compatible access.
var legacyTypes = map[string]bool{
	"characters": true,
	"scenes":     true,
	"outlines":   true,
	"analyses":   true,
	"symbols":    true,
}

// projectSubdirs is the directory skeleton created for each new project.
var projectSubdirs = []string{"characters", "scenes", "outlines", "analyses", "symbols", "drafts"}

// Store is the project-scoped element store: a thin hierarchy over the
// DocStore that assigns element ids, maintains each project's reference
// index, and mirrors legacy types. The index is a derived cache; element
// files are authoritative. Single writer per base directory assumed.
type Store struct {
	docs  *DocStore
	index *SearchIndex // nil when the search index is disabled
	log   *logger.Logger
}

// NewStore wires an element store over docs. index may be nil.
func NewStore(docs *DocStore, index *SearchIndex, log *logger.Logger) *Store {
	return &Store{docs: docs, index: index, log: log}
}

// Docs exposes the underlying document store.
func (s *Store) Docs() *DocStore {
	return s.docs
}

// Slug converts a display name into a safe file/directory id.
func Slug(name string) string {
	r := strings.NewReplacer(" ", "_", "-", "_", "'", "", `"`, "")
	return r.Replace(strings.ToLower(name))
}

func nowISO() string {
	return time.Now().Format("2006-01-02T15:04:05.000000")
}

// CreateProject creates the project directory skeleton and metadata record.
// The project id is the slug of its name.
func (s *Store) CreateProject(name, description, projectType string) (*models.Project, error) {
	if name == "" {
		return nil, &models.ValidationError{Reason: "project name is required"}
	}
	if projectType == "" {
		projectType = "story"
	}
	id := Slug(name)
	now := nowISO()

	elements := map[string][]models.ElementRef{}
	for _, sub := range projectSubdirs {
		elements[sub] = []models.ElementRef{}
	}
	proj := &models.Project{
		ID:                  id,
		Name:                name,
		Description:         description,
		Type:                projectType,
		CreatedAt:           now,
		ModifiedAt:          now,
		Themes:              []string{},
		MainCharacters:      []string{},
		SecondaryCharacters: []string{},
		Status:              "in_progress",
		Elements:            elements,
	}

	if _, err := s.docs.Write(metaPath(id), proj); err != nil {
		return nil, err
	}
	notes := fmt.Sprintf("# %s\n\n%s\n\n## Notes\n\n", name, description)
	if err := s.docs.WriteText(path.Join("projects", id, "notes.md"), notes); err != nil {
		return nil, err
	}
	s.log.Info("project created", "project_id", id, "type", projectType)
	return proj, nil
}

func metaPath(projectID string) string {
	return path.Join("projects", projectID, "metadata.json")
}

// GetProject loads a project's metadata. A miss returns NotFound carrying
// the known project ids.
func (s *Store) GetProject(projectID string) (*models.Project, error) {
	var proj models.Project
	err := s.docs.Read(metaPath(projectID), &proj)
	if err != nil {
		if NotExist(err) {
			ids, _ := s.docs.ListDirs("projects")
			return nil, &models.NotFoundError{Kind: "project", Name: projectID, Available: ids}
		}
		return nil, err
	}
	proj.ID = projectID
	return &proj, nil
}

// ListProjects returns summaries of every project with readable metadata.
func (s *Store) ListProjects() ([]models.ProjectSummary, error) {
	ids, err := s.docs.ListDirs("projects")
	if err != nil {
		return nil, err
	}
	summaries := []models.ProjectSummary{}
	for _, id := range ids {
		var proj models.Project
		if err := s.docs.Read(metaPath(id), &proj); err != nil {
			continue
		}
		summaries = append(summaries, models.ProjectSummary{
			ID:          id,
			Name:        proj.Name,
			Description: proj.Description,
			Type:        proj.Type,
			Status:      proj.Status,
			ModifiedAt:  proj.ModifiedAt,
		})
	}
	return summaries, nil
}

// UpdateProject shallow-merges patch into the project metadata, touching
// only keys already present in the schema, and refreshes modified_at.
func (s *Store) UpdateProject(projectID string, patch map[string]any) (*models.Project, error) {
	meta, err := s.readMetaMap(projectID)
	if err != nil {
		return nil, err
	}
	for key, value := range patch {
		if _, ok := meta[key]; ok {
			meta[key] = value
		}
	}
	meta["modified_at"] = nowISO()
	if _, err := s.docs.Write(metaPath(projectID), meta); err != nil {
		return nil, err
	}
	return s.GetProject(projectID)
}

// SaveElement writes an element file, updates the project's reference
// index (insert-or-overwrite by id), and mirrors legacy types into the
// flat store root. The element file write happens first; a crash before
// the index update leaves the index stale but discoverable.
func (s *Store) SaveElement(projectID, elementType string, data map[string]any, elementID string) (map[string]any, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}

	if elementID == "" {
		name := stringField(data, "name")
		if name == "" {
			name = stringField(data, "title")
		}
		if name != "" {
			elementID = Slug(name)
		} else {
			elementID = fmt.Sprintf("%s_%s", elementType, time.Now().Format("20060102150405"))
		}
	}
	if _, ok := data["created_at"]; !ok {
		data["created_at"] = nowISO()
	}

	rel := path.Join("projects", projectID, elementType, elementID+".json")
	if _, err := s.docs.Write(rel, data); err != nil {
		return nil, err
	}

	if err := s.addElementRef(projectID, elementType, elementID, data); err != nil {
		return nil, err
	}

	if legacyTypes[elementType] {
		if _, err := s.docs.Write(path.Join(elementType, elementID+".json"), data); err != nil {
			return nil, err
		}
	}

	if s.index != nil {
		if err := s.index.Put(projectID, elementType, elementID, refName(data, elementID), flattenText(data)); err != nil {
			s.log.Warn("search index update failed", "project_id", projectID, "element", elementID, "err", err)
		}
	}

	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	out["id"] = elementID
	out["output_path"] = rel
	return out, nil
}

// GetElement reads an element file; the file is authoritative even when
// the reference index disagrees. A miss lists the ids that do exist.
func (s *Store) GetElement(projectID, elementType, elementID string) (map[string]any, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}
	rel := path.Join("projects", projectID, elementType, elementID+".json")
	var data map[string]any
	if err := s.docs.Read(rel, &data); err != nil {
		if NotExist(err) {
			ids, _ := s.docs.List(path.Join("projects", projectID, elementType))
			return nil, &models.NotFoundError{Kind: "element", Name: elementID, Available: ids}
		}
		return nil, err
	}
	data["id"] = elementID
	data["output_path"] = rel
	return data, nil
}

// ListElements returns the reference index entries for one element type.
func (s *Store) ListElements(projectID, elementType string) ([]models.ElementRef, error) {
	proj, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	refs, ok := proj.Elements[elementType]
	if !ok {
		types, _ := s.docs.ListDirs(path.Join("projects", projectID))
		return nil, &models.NotFoundError{Kind: "element type", Name: elementType, Available: types}
	}
	return refs, nil
}

// ListElementTypes enumerates every element subdirectory of a project from
// disk, reading each file for its display name.
func (s *Store) ListElementTypes(projectID string) (map[string][]models.ElementRef, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}
	return s.scanProject(projectID)
}

// RebuildIndex regenerates the project's reference index by directory
// scan, reconciling any drift between index and element files, and
// reloads the search index for the project when one is configured.
func (s *Store) RebuildIndex(projectID string) (*models.Project, error) {
	scanned, err := s.ListElementTypes(projectID)
	if err != nil {
		return nil, err
	}
	meta, err := s.readMetaMap(projectID)
	if err != nil {
		return nil, err
	}
	meta["elements"] = scanned
	meta["modified_at"] = nowISO()
	if _, err := s.docs.Write(metaPath(projectID), meta); err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.DeleteProject(projectID); err != nil {
			return nil, err
		}
		for elementType, refs := range scanned {
			for _, ref := range refs {
				var data map[string]any
				if err := s.docs.Read(ref.Path, &data); err != nil {
					continue
				}
				if err := s.index.Put(projectID, elementType, ref.ID, ref.Name, flattenText(data)); err != nil {
					return nil, err
				}
			}
		}
	}
	s.log.Info("reference index rebuilt", "project_id", projectID)
	return s.GetProject(projectID)
}

// SearchElements finds elements whose name or text content matches the
// query. With a search index configured this is an FTS5 query; without
// one, or when the query does not parse as FTS5 syntax, it degrades to a
// case-insensitive substring scan over the files.
func (s *Store) SearchElements(projectID, query string) ([]SearchHit, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}
	if s.index != nil {
		hits, err := s.index.Search(projectID, query)
		if err == nil {
			return hits, nil
		}
		s.log.Warn("search index query failed, scanning instead", "project_id", projectID, "err", err)
	}

	scanned, err := s.scanProject(projectID)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(scanned))
	for t := range scanned {
		types = append(types, t)
	}
	sort.Strings(types)

	needle := strings.ToLower(query)
	var hits []SearchHit
	for _, elementType := range types {
		for _, ref := range scanned[elementType] {
			var data map[string]any
			if err := s.docs.Read(ref.Path, &data); err != nil {
				continue
			}
			if strings.Contains(strings.ToLower(ref.Name), needle) ||
				strings.Contains(strings.ToLower(flattenText(data)), needle) {
				hits = append(hits, SearchHit{
					ProjectID:   projectID,
					ElementType: elementType,
					ElementID:   ref.ID,
					Name:        ref.Name,
				})
			}
		}
	}
	return hits, nil
}

// SaveLegacy writes a record directly into a flat legacy directory,
// bypassing the project hierarchy. Used when no project id is supplied.
func (s *Store) SaveLegacy(elementType, id string, data any) (string, error) {
	return s.docs.Write(path.Join(elementType, id+".json"), data)
}

// ListOutputs lists projects plus the record stems of each legacy
// directory.
func (s *Store) ListOutputs() (map[string]any, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}
	legacy := map[string][]string{}
	for t := range legacyTypes {
		stems, err := s.docs.List(t)
		if err != nil {
			return nil, err
		}
		if stems == nil {
			stems = []string{}
		}
		legacy[t] = stems
	}
	return map[string]any{"projects": projects, "legacy": legacy}, nil
}

// --- internal helpers ---

func (s *Store) readMetaMap(projectID string) (map[string]any, error) {
	var meta map[string]any
	if err := s.docs.Read(metaPath(projectID), &meta); err != nil {
		if NotExist(err) {
			ids, _ := s.docs.ListDirs("projects")
			return nil, &models.NotFoundError{Kind: "project", Name: projectID, Available: ids}
		}
		return nil, err
	}
	return meta, nil
}

// addElementRef inserts or overwrites the reference entry for an element
// in the project metadata, keeping exactly one entry per id per type.
func (s *Store) addElementRef(projectID, elementType, elementID string, data map[string]any) error {
	meta, err := s.readMetaMap(projectID)
	if err != nil {
		return err
	}

	createdAt := stringField(data, "created_at")
	if createdAt == "" {
		createdAt = nowISO()
	}
	ref := map[string]any{
		"id":         elementID,
		"name":       refName(data, elementID),
		"path":       path.Join("projects", projectID, elementType, elementID+".json"),
		"created_at": createdAt,
	}

	elements, _ := meta["elements"].(map[string]any)
	if elements == nil {
		elements = map[string]any{}
		meta["elements"] = elements
	}
	list, _ := elements[elementType].([]any)

	replaced := false
	for i, entry := range list {
		if m, ok := entry.(map[string]any); ok && stringField(m, "id") == elementID {
			list[i] = ref
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, ref)
	}
	elements[elementType] = list
	meta["modified_at"] = nowISO()

	_, err = s.docs.Write(metaPath(projectID), meta)
	return err
}

// scanProject derives the reference map from the files actually on disk.
func (s *Store) scanProject(projectID string) (map[string][]models.ElementRef, error) {
	types, err := s.docs.ListDirs(path.Join("projects", projectID))
	if err != nil {
		return nil, err
	}
	out := map[string][]models.ElementRef{}
	for _, elementType := range types {
		ids, err := s.docs.List(path.Join("projects", projectID, elementType))
		if err != nil {
			return nil, err
		}
		refs := []models.ElementRef{}
		for _, id := range ids {
			rel := path.Join("projects", projectID, elementType, id+".json")
			var data map[string]any
			if err := s.docs.Read(rel, &data); err != nil {
				continue
			}
			refs = append(refs, models.ElementRef{
				ID:        id,
				Name:      refName(data, id),
				Path:      rel,
				CreatedAt: stringField(data, "created_at"),
			})
		}
		out[elementType] = refs
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func refName(data map[string]any, fallback string) string {
	if name := stringField(data, "name"); name != "" {
		return name
	}
	if title := stringField(data, "title"); title != "" {
		return title
	}
	return fallback
}

// flattenText concatenates every string value in a record (recursing into
// nested maps and lists) for full-text indexing.
func flattenText(v any) string {
	var parts []string
	var walk func(any)
	walk = func(node any) {
		switch t := node.(type) {
		case string:
			parts = append(parts, t)
		case map[string]any:
			for _, child := range t {
				walk(child)
			}
		case []any:
			for _, child := range t {
				walk(child)
			}
		}
	}
	walk(v)
	return strings.Join(parts, " ")
}
