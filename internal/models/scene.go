package models

import (
	"encoding/json"
	"strings"
)

// Scene is a caller-supplied draft scene. All fields are optional. Unknown
// string-valued fields are collected into Extra during decoding; they take
// no part in matching and are dropped on re-encoding. Matching reads the
// named text fields in a fixed order rather than whatever happens to be
// present.
type Scene struct {
	Title        string   `json:"title,omitempty"`
	SceneTitle   string   `json:"scene_title,omitempty"`
	Description  string   `json:"description,omitempty"`
	PatternStage string   `json:"pattern_stage,omitempty"`
	Conflict     string   `json:"conflict,omitempty"`
	Goal         string   `json:"goal,omitempty"`
	Outcome      string   `json:"outcome,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Characters   []string `json:"characters,omitempty"`

	// Extra holds any other string fields the caller sent. Decode only;
	// marshalling a Scene does not write it back.
	Extra map[string]string `json:"-"`
}

var sceneKnownFields = map[string]bool{
	"title": true, "scene_title": true, "description": true,
	"pattern_stage": true, "conflict": true, "goal": true,
	"outcome": true, "notes": true, "characters": true,
}

// UnmarshalJSON accepts any mapping of named fields, keeping unrecognized
// string values in Extra instead of dropping them.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(key string) string {
		var v string
		if msg, ok := raw[key]; ok {
			json.Unmarshal(msg, &v)
		}
		return v
	}

	s.Title = str("title")
	s.SceneTitle = str("scene_title")
	s.Description = str("description")
	s.PatternStage = str("pattern_stage")
	s.Conflict = str("conflict")
	s.Goal = str("goal")
	s.Outcome = str("outcome")
	s.Notes = str("notes")
	if msg, ok := raw["characters"]; ok {
		json.Unmarshal(msg, &s.Characters)
	}

	for key, msg := range raw {
		if sceneKnownFields[key] {
			continue
		}
		var v string
		if err := json.Unmarshal(msg, &v); err == nil {
			if s.Extra == nil {
				s.Extra = map[string]string{}
			}
			s.Extra[key] = v
		}
	}
	return nil
}

// DisplayTitle returns the scene title, preferring "title" over "scene_title".
func (s *Scene) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.SceneTitle
}

// TextFields returns the scene's matchable text in a fixed accessor order:
// title (or scene_title), description, pattern_stage, conflict, goal,
// outcome, notes. Absent trailing fields are omitted.
func (s *Scene) TextFields() []string {
	fields := []string{s.DisplayTitle(), s.Description, s.PatternStage}
	for _, f := range []string{s.Conflict, s.Goal, s.Outcome, s.Notes} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Text returns the lowercased concatenation of all matchable text fields.
func (s *Scene) Text() string {
	return strings.ToLower(strings.Join(s.TextFields(), " "))
}
