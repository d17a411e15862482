package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prsync",
	Short: "A CLI tool to sync pull requests into GitHub Projects boards",
	Long: `Prsync keeps a GitHub Projects board in step with pull request activity.
For every issue a pull request closes, it moves the issue's Status on the
board to match the PR's current state, mirrors PR assignees onto the issues,
and closes linked issues when the PR merges. It is designed to run as a
GitHub Action on pull request events, but works the same from a terminal.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(initCmd)
}
