package main

import (
	"fmt"

	"jirarest/internal/cmdutils"
	"jirarest/internal/config"
	"jirarest/internal/ui"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects visible to the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutils.GetJiraClient(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize Jira client: %w", err)
		}

		projects, err := client.ListProjects(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if outputFormat() == config.OutputJSON {
			return ui.WriteJSON(cmd.OutOrStdout(), projects)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.ProjectsTable(projects))
		return nil
	},
}

var issueTypesCmd = &cobra.Command{
	Use:     "issuetypes",
	Aliases: []string{"issue-types"},
	Short:   "List the issue types available to the account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutils.GetJiraClient(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize Jira client: %w", err)
		}

		issueTypes, err := client.ListIssueTypesForCurrentUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list issue types: %w", err)
		}

		if outputFormat() == config.OutputJSON {
			return ui.WriteJSON(cmd.OutOrStdout(), issueTypes)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.IssueTypesTable(issueTypes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(issueTypesCmd)
}
