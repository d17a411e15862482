package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"prsync/pkg/config"
	"prsync/pkg/fuzzy"
	"prsync/pkg/github"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project board commands",
	Long: `Commands for discovering the organization's Projects v2 boards.

Available commands:
  list - List the organization's project boards
  pick - Interactively select a board and print its number`,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the organization's project boards",
	RunE:  runProjectsList,
}

var projectsPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactively select a project board",
	Long: `Interactively select a project board using fuzzy search and print its
number, ready for use as the --project-number flag or the action's
project-number input.`,
	RunE: runProjectsPick,
}

func init() {
	projectsCmd.PersistentFlags().StringVar(&syncOrg, "org", "", "GitHub organization owning the project boards")
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsPickCmd)
}

func fetchProjects() ([]github.Project, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load prsync config: %w", err)
	}

	org, err := resolveOrg(cfg)
	if err != nil {
		return nil, err
	}

	authManager := github.NewAuthManager()
	if _, err := authManager.AuthenticateFromConfig(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "%s\n", github.GetAuthInstructions())
		return nil, err
	}

	token, err := authManager.GetToken(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get GitHub token: %w", err)
	}

	projects, err := github.NewProjectsClient(token).ListProjects(org)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no project boards found in organization %s", org)
	}

	return projects, nil
}

func runProjectsList(_ *cobra.Command, _ []string) error {
	projects, err := fetchProjects()
	if err != nil {
		return err
	}

	fmt.Printf("📋 Project boards:\n")
	for _, project := range projects {
		fmt.Printf("  #%-4d %s\n", project.Number, project.Title)
	}

	return nil
}

func runProjectsPick(_ *cobra.Command, _ []string) error {
	projects, err := fetchProjects()
	if err != nil {
		return err
	}

	finder := fuzzy.New("Select project board:")
	for _, project := range projects {
		finder.AddOption(strconv.Itoa(project.Number), project.Title)
	}

	selected, err := finder.Select()
	if err != nil {
		return fmt.Errorf("project selection failed: %w", err)
	}

	fmt.Println(selected)
	return nil
}
