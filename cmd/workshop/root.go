package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/storyloom/workshop-mcp/internal/config"
	"github.com/storyloom/workshop-mcp/internal/logger"
	"github.com/storyloom/workshop-mcp/internal/server"
)

var (
	// Global flags
	baseDir string
	logMode string
	noIndex bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "workshop",
	Short: "Narrative pattern matching and story element store",
	Long: `workshop manages writing projects, narrative patterns and story
elements, and serves them to MCP clients.

Core Commands:
  serve      Run the MCP server (stdio or http)
  analyze    Match a scene file against a narrative pattern
  patterns   List and inspect narrative patterns
  projects   List and create writing projects

All data lives as JSON files under the base directory (default: output).`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "Base directory for all data (default: output, or WORKSHOP_BASE_DIR)")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "Log preset: dev or prod (default: dev, or WORKSHOP_LOG_MODE)")
	rootCmd.PersistentFlags().BoolVar(&noIndex, "no-index", false, "Disable the SQLite search index")
}

// newApp builds the service graph from the environment plus CLI flag
// overrides. Each invocation gets a run id so log lines from concurrent
// processes sharing a base dir can be told apart.
func newApp() (*server.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if baseDir != "" {
		cfg.BaseDir = baseDir
	}
	if logMode != "" {
		cfg.LogMode = logMode
	}
	if noIndex {
		cfg.SearchIndex = false
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.With("run_id", uuid.NewString())

	return server.NewApp(cfg, log)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
