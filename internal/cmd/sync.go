package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"prsync/pkg/config"
	"prsync/pkg/github"
	"prsync/pkg/sync"
)

var (
	syncOrg           string
	syncRepo          string
	syncPRNumber      int
	syncProjectNumber int
	syncDryRun        bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync a pull request's state into the project board",
	Long: `Sync the project board with a pull request's current state.

For every issue the pull request closes (via "Closes #N" references), the
command ensures the issue sits on the board and moves its Status field:

  merged PR               -> Done (and closes the issue)
  closed without merging  -> Selected for Development (and clears assignees)
  open draft              -> In Development
  open, ready for review  -> Ready For Review

Open PRs also mirror their assignees onto the linked issues, falling back
to the PR author when the PR has none. The command reads the PR's current
state rather than the triggering event, so re-running it is always safe.

Examples:
  # Sync PR 42 into the org's default board
  prsync sync --org myorg --repo widgets --pr-number 42

  # Sync into a specific board
  prsync sync --org myorg --repo widgets --pr-number 42 --project-number 7

  # Preview changes without applying them
  prsync sync --org myorg --repo widgets --pr-number 42 --dry-run`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncOrg, "org", "", "GitHub organization owning the repository and the project board")
	syncCmd.Flags().StringVar(&syncRepo, "repo", "", "Repository name (without the organization prefix)")
	syncCmd.Flags().IntVar(&syncPRNumber, "pr-number", 0, "Pull request number to sync")
	syncCmd.Flags().IntVar(&syncProjectNumber, "project-number", 3, "Project board number")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Preview changes without applying them")
	_ = syncCmd.MarkFlagRequired("repo")
	_ = syncCmd.MarkFlagRequired("pr-number")
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load prsync config: %w", err)
	}

	org, err := resolveOrg(cfg)
	if err != nil {
		return err
	}

	projectNumber := syncProjectNumber
	if !cmd.Flags().Changed("project-number") && cfg.GitHub.ProjectNumber != 0 {
		projectNumber = cfg.GitHub.ProjectNumber
	}

	// Set up GitHub authentication
	authManager := github.NewAuthManager()
	tokenInfo, err := authManager.AuthenticateFromConfig(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "%s\n", github.GetAuthInstructions())
		return err
	}

	fmt.Printf("✓ Authenticated as %s\n", tokenInfo.User)

	token, err := authManager.GetToken(cfg)
	if err != nil {
		return fmt.Errorf("failed to get GitHub token: %w", err)
	}

	syncer := sync.New(
		github.NewClient(token),
		github.NewProjectsClient(token),
		org, syncRepo,
		sync.WithStatusNames(sync.FromConfig(cfg.Statuses)),
	)

	plan, err := syncer.Plan(projectNumber, syncPRNumber)
	if err != nil {
		return fmt.Errorf("failed to plan sync: %w", err)
	}

	displaySyncPlan(plan, org, syncDryRun)

	// If dry-run, stop here
	if syncDryRun {
		fmt.Printf("\n✓ Dry-run completed. No changes were applied.\n")
		return nil
	}

	if plan.Empty() {
		fmt.Printf("\n✓ Project board is already up to date. No changes needed.\n")
		return nil
	}

	fmt.Printf("\nApplying changes...\n")
	result, err := syncer.Apply(plan)
	if err != nil {
		return fmt.Errorf("failed to apply changes: %w", err)
	}

	displaySyncSummary(plan, result)

	return nil
}

// resolveOrg determines the organization from the flag or config
func resolveOrg(cfg *config.Config) (string, error) {
	if syncOrg != "" {
		return syncOrg, nil
	}
	if cfg.GitHub.Organization != "" {
		return cfg.GitHub.Organization, nil
	}
	return "", fmt.Errorf("organization not specified: use --org flag or set github.organization in config")
}

// displaySyncPlan shows the planned changes in a human-readable format
func displaySyncPlan(plan *sync.Plan, org string, isDryRun bool) {
	pr := plan.PullRequest
	if isDryRun {
		fmt.Printf("\n🔍 Dry-run mode: Showing planned changes for %s/%s#%d\n", org, syncRepo, pr.Number)
	} else {
		fmt.Printf("\n📋 Planned changes for %s/%s#%d:\n", org, syncRepo, pr.Number)
	}

	fmt.Printf("  PR state: %s", describePRState(pr))
	if plan.TargetStatus != "" {
		fmt.Printf(" → board status %q", plan.TargetStatus)
	}
	fmt.Println()

	if plan.Project == nil {
		fmt.Printf("  No linked issues - nothing to sync\n")
		return
	}

	for _, add := range plan.Items {
		fmt.Printf("  + Board item: ADD issue #%d (%s) to %q\n", add.IssueNumber, add.IssueTitle, plan.Project.Title)
	}

	for _, change := range plan.Statuses {
		switch change.Type() {
		case sync.ChangeTypeCreate:
			fmt.Printf("  + Status: SET issue #%d to %q\n", change.IssueNumber, change.After)
		case sync.ChangeTypeUpdate:
			fmt.Printf("  ~ Status: UPDATE issue #%d %q → %q\n", change.IssueNumber, change.Before, change.After)
		}
	}

	for _, c := range plan.Closes {
		fmt.Printf("  ~ Issue: CLOSE #%d\n", c.IssueNumber)
	}

	for _, change := range plan.Assignees {
		if len(change.After) == 0 {
			fmt.Printf("  ~ Assignees: CLEAR issue #%d [%s]\n", change.IssueNumber, strings.Join(change.Before, ", "))
		} else {
			fmt.Printf("  ~ Assignees: UPDATE issue #%d [%s] → [%s]\n",
				change.IssueNumber, strings.Join(change.Before, ", "), strings.Join(change.After, ", "))
		}
	}

	if plan.Empty() {
		fmt.Printf("  No changes needed - project board is up to date\n")
	} else {
		fmt.Printf("\nTotal changes: %d\n", plan.TotalChanges())
	}
}

// displaySyncSummary shows a summary after successful application
func displaySyncSummary(plan *sync.Plan, result *sync.Result) {
	fmt.Printf("\n✅ Successfully synced %s board with PR #%d\n", plan.Project.Title, plan.PullRequest.Number)
	fmt.Printf("📊 Applied %d change(s)\n", result.Applied)

	for _, warning := range result.Warnings {
		fmt.Printf("⚠️  Warning: %s\n", warning)
	}
}

// describePRState renders the PR state the way the mapping sees it
func describePRState(pr *github.PullRequest) string {
	switch {
	case pr.Merged:
		return "merged"
	case pr.State == "closed":
		return "closed without merging"
	case pr.Draft:
		return "open (draft)"
	default:
		return "open (ready for review)"
	}
}
