package main

import (
	"github.com/spf13/cobra"
)

var (
	projectDescription string
	projectType        string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List and create writing projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all writing projects",
	RunE: func(_ *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		defer app.Log.Sync()

		projects, err := app.Store.ListProjects()
		if err != nil {
			return err
		}
		return printJSON(projects)
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new writing project",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		defer app.Log.Sync()

		proj, err := app.Store.CreateProject(args[0], projectDescription, projectType)
		if err != nil {
			return err
		}
		return printJSON(proj)
	},
}

func init() {
	projectsCreateCmd.Flags().StringVar(&projectDescription, "description", "", "Project description")
	projectsCreateCmd.Flags().StringVar(&projectType, "type", "", "Project type (default story)")
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	rootCmd.AddCommand(projectsCmd)
}
