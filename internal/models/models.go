package models

// Pattern is an ordered sequence of named narrative stages plus metadata.
// The id is the on-disk file stem and is not serialized into the record.
type Pattern struct {
	ID                     string             `json:"-"`
	Name                   string             `json:"name"`
	Description            string             `json:"description"`
	Stages                 []string           `json:"stages"`
	PsychologicalFunctions []string           `json:"psychological_functions"`
	Examples               []string           `json:"examples"`
	Hybrid                 bool               `json:"hybrid,omitempty"`
	ComponentPatterns      map[string]float64 `json:"component_patterns,omitempty"`
	CreatedAt              string             `json:"created_at,omitempty"`
}

// PatternSummary is the short form returned by list operations.
type PatternSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Stages      int    `json:"stages"`
}

// StageMatch records how a single pattern stage was matched against a scene.
// Quality is "exact" (substring or explicit stage field) or "semantic"
// (keyword-scored fallback, with the score attached).
type StageMatch struct {
	Stage        string `json:"stage"`
	Scene        string `json:"scene"`
	MatchQuality string `json:"match_quality"`
	Score        int    `json:"score,omitempty"`
}

// AnalysisResult is the outcome of matching a scene set against a pattern.
// Every stage appears in exactly one of MatchedStages or MissingStages.
type AnalysisResult struct {
	Pattern        string       `json:"pattern"`
	AdherenceLevel float64      `json:"adherence_level"`
	RequiredStages int          `json:"required_stages"`
	MatchedStages  []StageMatch `json:"matched_stages"`
	MissingStages  []string     `json:"missing_stages"`
	MatchScore     float64      `json:"match_score"`
	Analysis       string       `json:"analysis"`
	CreatedAt      string       `json:"created_at"`
	OutputPath     string       `json:"output_path,omitempty"`
}

// ElementRef is one entry in a project's reference index. The index is a
// derived cache; the element file itself is authoritative.
type ElementRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	CreatedAt string `json:"created_at"`
}

// Project is the metadata record stored at projects/{id}/metadata.json.
type Project struct {
	ID                  string                  `json:"-"`
	Name                string                  `json:"name"`
	Description         string                  `json:"description"`
	Type                string                  `json:"type"`
	CreatedAt           string                  `json:"created_at"`
	ModifiedAt          string                  `json:"modified_at"`
	PrimaryPattern      *string                 `json:"primary_pattern"`
	Themes              []string                `json:"themes"`
	MainCharacters      []string                `json:"main_characters"`
	SecondaryCharacters []string                `json:"secondary_characters"`
	WordCount           int                     `json:"word_count"`
	Status              string                  `json:"status"`
	Notes               string                  `json:"notes"`
	Elements            map[string][]ElementRef `json:"elements"`
}

// ProjectSummary is the short form returned by project listings.
type ProjectSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	ModifiedAt  string `json:"modified_at"`
}

// Symbol is one symbolic association within a theme system.
type Symbol struct {
	Symbol  string `json:"symbol"`
	Meaning string `json:"meaning"`
}

// SymbolSystem groups symbols under a theme.
type SymbolSystem struct {
	Theme     string   `json:"theme"`
	Symbols   []Symbol `json:"symbols"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// Archetype is a character archetype record.
type Archetype struct {
	ID            string   `json:"-"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Traits        []string `json:"traits"`
	ShadowAspects []string `json:"shadow_aspects"`
	Examples      []string `json:"examples"`
}

// Character is a character record built from an archetype.
type Character struct {
	Name                 string   `json:"name"`
	Archetype            string   `json:"archetype"`
	Description          string   `json:"description"`
	Traits               []string `json:"traits"`
	ShadowAspect         string   `json:"shadow_aspect,omitempty"`
	DevelopmentPotential string   `json:"development_potential"`
	CreatedAt            string   `json:"created_at"`
	OutputPath           string   `json:"output_path,omitempty"`
}

// ArcStage is one step of a character arc mapped onto a pattern stage.
type ArcStage struct {
	PatternStage          string `json:"pattern_stage"`
	CharacterDevelopment  string `json:"character_development"`
	InternalChange        string `json:"internal_change"`
	ExternalManifestation string `json:"external_manifestation"`
}

// CharacterArc maps a character's development across a narrative pattern.
type CharacterArc struct {
	CharacterName string     `json:"character_name"`
	Archetype     string     `json:"archetype"`
	Pattern       string     `json:"pattern"`
	ArcStages     []ArcStage `json:"arc_stages"`
	CreatedAt     string     `json:"created_at"`
	OutputPath    string     `json:"output_path,omitempty"`
}
