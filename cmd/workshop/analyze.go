package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/storyloom/workshop-mcp/internal/models"
)

var (
	analyzePattern   string
	analyzeAdherence float64
	analyzeProject   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <scenes-file>",
	Short: "Match a scene file against a narrative pattern",
	Long: `Read scenes from a YAML or JSON file and match them against a
narrative pattern. The file holds a list of scene objects; the title,
description, pattern_stage, conflict, goal, outcome and notes fields
are matched.

Examples:
  workshop analyze scenes.yaml --pattern heroes_journey
  workshop analyze draft.json --pattern transformation --adherence 0.7 --project my_novel`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzePattern, "pattern", "heroes_journey", "Pattern id to analyze against")
	analyzeCmd.Flags().Float64Var(&analyzeAdherence, "adherence", 1.0, "Fraction of stages required for full coverage (0-1)")
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", "", "Project to store the analysis in (omit for the flat analyses directory)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	scenes, err := loadScenes(args[0])
	if err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()
	defer app.Log.Sync()

	result, err := app.Matcher.Analyze(scenes, analyzePattern, analyzeProject, analyzeAdherence)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// loadScenes reads a YAML or JSON scene list. YAML is a superset of JSON,
// so a single decoder handles both; the maps are re-encoded as JSON so
// scenes keep their unknown text fields.
func loadScenes(path string) ([]models.Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenes: %w", err)
	}

	var items []map[string]any
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode scenes: %w", err)
	}

	scenes := make([]models.Scene, 0, len(items))
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
		var scene models.Scene
		if err := json.Unmarshal(data, &scene); err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}
