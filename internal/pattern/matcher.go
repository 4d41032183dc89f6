package pattern

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

// Matcher analyzes a set of draft scenes against a narrative pattern.
// Matching is tiered: an exact substring/field pass, then a scored
// keyword-and-synonym fallback. Each stage lands in exactly one terminal
// state: exact match, semantic match, or missing.
type Matcher struct {
	repo  *Repository
	store *storage.Store
	log   *logger.Logger
}

// NewMatcher wires a matcher over the repository and element store.
func NewMatcher(repo *Repository, store *storage.Store, log *logger.Logger) *Matcher {
	return &Matcher{repo: repo, store: store, log: log}
}

// Analyze matches scenes against the named pattern and persists the
// result: under the project's analyses when projectID is set, else to the
// flat legacy analyses directory.
//
// adherence scales only how many matched stages count as full coverage
// (the score denominator); every stage is always searched. Values <= 0
// mean the default of 1.0. The score is not clamped, so it can exceed 1
// when adherence is below 1 and matches outnumber the requirement.
func (m *Matcher) Analyze(scenes []models.Scene, patternName, projectID string, adherence float64) (*models.AnalysisResult, error) {
	if adherence <= 0 {
		adherence = 1.0
	}

	p, err := m.repo.Get(patternName)
	if err != nil {
		return nil, err
	}
	stages := p.Stages

	required := int(math.RoundToEven(float64(len(stages)) * adherence))
	if required < 1 {
		required = 1
	}

	matched := []models.StageMatch{}
	missing := []string{}

	for _, stage := range stages {
		if sm, ok := exactMatch(stage, scenes); ok {
			matched = append(matched, sm)
			continue
		}
		if sm, ok := semanticMatch(stage, scenes); ok {
			matched = append(matched, sm)
			continue
		}
		missing = append(missing, stage)
	}

	score := float64(len(matched)) / float64(required)

	result := &models.AnalysisResult{
		Pattern:        patternName,
		AdherenceLevel: adherence,
		RequiredStages: required,
		MatchedStages:  matched,
		MissingStages:  missing,
		MatchScore:     score,
		Analysis:       summaryText(patternName, adherence, len(stages), required, matched, score),
		CreatedAt:      nowISO(),
	}

	if err := m.persistAnalysis(result, scenes, patternName, projectID); err != nil {
		return nil, err
	}
	m.log.Info("narrative analyzed",
		"pattern", patternName,
		"scenes", len(scenes),
		"matched", len(matched),
		"missing", len(missing),
		"score", score,
	)
	return result, nil
}

// exactMatch scans scenes in order and returns the first whose combined
// text contains the stage name, or whose explicit pattern_stage field
// equals it case-insensitively. First match wins; no scoring.
func exactMatch(stage string, scenes []models.Scene) (models.StageMatch, bool) {
	stageLower := strings.ToLower(stage)
	for i := range scenes {
		scene := &scenes[i]
		if strings.Contains(scene.Text(), stageLower) ||
			strings.EqualFold(scene.PatternStage, stage) {
			return models.StageMatch{
				Stage:        stage,
				Scene:        scene.DisplayTitle(),
				MatchQuality: "exact",
			}, true
		}
	}
	return models.StageMatch{}, false
}

// semanticMatch scores every scene against the stage and returns the best
// one when it clears the minimum score of 1. Earlier scenes win ties
// (only a strictly better score replaces the best).
func semanticMatch(stage string, scenes []models.Scene) (models.StageMatch, bool) {
	var best *models.Scene
	bestScore := 0
	for i := range scenes {
		scene := &scenes[i]
		score := semanticScore(stage, scene.Text())
		if score > bestScore {
			bestScore = score
			best = scene
		}
	}
	if bestScore >= 1 && best != nil {
		return models.StageMatch{
			Stage:        stage,
			Scene:        best.DisplayTitle(),
			MatchQuality: "semantic",
			Score:        bestScore,
		}, true
	}
	return models.StageMatch{}, false
}

// semanticScore implements the keyword heuristic: +2 per significant
// stage word (length > 3) present in the scene text, else +1 when a scene
// word of at least the same length shares its first four characters (a
// crude stem check), plus +1 per theme-bucket synonym present when the
// bucket's theme word occurs in the stage name.
func semanticScore(stage, sceneText string) int {
	stageLower := strings.ToLower(stage)
	score := 0

	for _, word := range strings.Fields(stageLower) {
		if len(word) <= 3 {
			continue
		}
		if strings.Contains(sceneText, word) {
			score += 2
			continue
		}
		prefix := word[:4]
		for _, contentWord := range strings.Fields(sceneText) {
			if strings.HasPrefix(contentWord, prefix) && len(contentWord) >= len(word) {
				score++
				break
			}
		}
	}

	for _, bucket := range themeBuckets {
		if !strings.Contains(stageLower, bucket.theme) {
			continue
		}
		for _, syn := range bucket.synonyms {
			if strings.Contains(sceneText, syn) {
				score++
			}
		}
	}
	return score
}

// summaryText renders the human-readable analysis line, with the quality
// breakdown in first-appearance order ("3 exact, 2 semantic").
func summaryText(patternName string, adherence float64, stageCount, required int, matched []models.StageMatch, score float64) string {
	var order []string
	counts := map[string]int{}
	for _, m := range matched {
		if counts[m.MatchQuality] == 0 {
			order = append(order, m.MatchQuality)
		}
		counts[m.MatchQuality]++
	}
	parts := make([]string, 0, len(order))
	for _, quality := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[quality], quality))
	}
	breakdown := strings.Join(parts, ", ")
	if breakdown == "" {
		breakdown = "no matches"
	}

	if adherence < 1.0 {
		return fmt.Sprintf(
			"The narrative matches %d%% of the required stages with %d of %d required stages matched (%s).",
			int(score*100), len(matched), required, breakdown,
		)
	}
	return fmt.Sprintf(
		"The narrative matches %d%% of the %s pattern stages with %d of %d stages matched (%s).",
		int(score*100), patternName, len(matched), stageCount, breakdown,
	)
}

// persistAnalysis saves the result, setting OutputPath. The element id is
// derived from the first scene's title ("unnamed" when no scenes).
func (m *Matcher) persistAnalysis(result *models.AnalysisResult, scenes []models.Scene, patternName, projectID string) error {
	firstTitle := "unnamed"
	if len(scenes) > 0 {
		if t := scenes[0].DisplayTitle(); t != "" {
			firstTitle = t
		}
	}
	id := fmt.Sprintf("analysis-%s-%s", strings.ReplaceAll(strings.ToLower(firstTitle), " ", "_"), patternName)

	if projectID != "" {
		data, err := toMap(result)
		if err != nil {
			return err
		}
		saved, err := m.store.SaveElement(projectID, "analyses", data, id)
		if err != nil {
			return err
		}
		if p, ok := saved["output_path"].(string); ok {
			result.OutputPath = p
		}
		return nil
	}

	rel, err := m.store.SaveLegacy("analyses", id, result)
	if err != nil {
		return err
	}
	result.OutputPath = rel
	return nil
}

// toMap round-trips a value through JSON so SaveElement sees the same
// shape the element file will hold.
func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return data, nil
}
