package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prsync/pkg/config"
	"prsync/pkg/github"
	"prsync/pkg/sync"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, token and project board",
	Long: `Validate the prsync setup before wiring it into a workflow.

VALIDATION CHECKS:

Offline (always performed):
• Organization resolvable from --org flag or config
• Configuration file parses and passes basic checks

Online (requires a token):
• Token authenticates against the GitHub API
• Token carries the required scopes (repo, project)
• Project board exists and is reachable
• The board's Status field carries every configured status option

Examples:
  prsync validate --org myorg
  prsync validate --org myorg --project-number 7`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&syncOrg, "org", "", "GitHub organization owning the project board")
	validateCmd.Flags().IntVar(&syncProjectNumber, "project-number", 3, "Project board number")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load prsync config: %w", err)
	}

	org, err := resolveOrg(cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return err
	}
	fmt.Printf("✓ Organization: %s\n", org)

	projectNumber := syncProjectNumber
	if !cmd.Flags().Changed("project-number") && cfg.GitHub.ProjectNumber != 0 {
		projectNumber = cfg.GitHub.ProjectNumber
	}

	authManager := github.NewAuthManager()
	tokenInfo, err := authManager.AuthenticateFromConfig(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Authentication failed: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "%s\n", github.GetAuthInstructions())
		return err
	}
	fmt.Printf("✓ Authenticated as %s\n", tokenInfo.User)

	token, err := authManager.GetToken(cfg)
	if err != nil {
		return fmt.Errorf("failed to get GitHub token: %w", err)
	}

	projects := github.NewProjectsClient(token)

	project, err := projects.GetProject(org, projectNumber)
	if err != nil {
		fmt.Printf("❌ Project %d not reachable: %v\n", projectNumber, err)
		return err
	}
	fmt.Printf("✓ Project board: %q (#%d)\n", project.Title, project.Number)

	syncer := sync.New(github.NewClient(token), projects, org, "",
		sync.WithStatusNames(sync.FromConfig(cfg.Statuses)))

	if err := syncer.Validate(projectNumber); err != nil {
		fmt.Printf("❌ Board validation failed: %v\n", err)
		return err
	}
	fmt.Printf("✓ Status field carries all configured options\n")

	fmt.Printf("\n✅ Validation passed\n")
	return nil
}
