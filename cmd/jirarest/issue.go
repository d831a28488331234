package main

import (
	"fmt"

	"jirarest/internal/cmdutils"
	"jirarest/internal/config"
	"jirarest/internal/jira"
	"jirarest/internal/ui"

	"github.com/spf13/cobra"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Fetch or create issues",
}

var issueGetCmd = &cobra.Command{
	Use:   "get [issue-key]",
	Short: "Fetch an issue by id or key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, _ := cmd.Flags().GetStringSlice("fields")

		client, err := cmdutils.GetJiraClient(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize Jira client: %w", err)
		}

		issue, err := client.GetIssue(cmd.Context(), args[0], fields...)
		if err != nil {
			return fmt.Errorf("failed to get issue %s: %w", args[0], err)
		}

		if outputFormat() == config.OutputJSON {
			return ui.WriteJSON(cmd.OutOrStdout(), issue)
		}
		out, err := ui.IssueView(issue, 80)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue",
	Long: `Create an issue in a project. The description is always set to a fixed
placeholder. Labels are only sent when jira.forward_labels is enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		project, _ := flags.GetString("project")
		issueType, _ := flags.GetString("type")
		priority, _ := flags.GetString("priority")
		reporter, _ := flags.GetString("reporter")
		summary, _ := flags.GetString("summary")
		labels, _ := flags.GetStringSlice("labels")

		client, err := cmdutils.GetJiraClient(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize Jira client: %w", err)
		}

		created, err := client.CreateIssue(cmd.Context(), jira.IssueCreationPayload{
			ProjectID: project,
			IssueType: issueType,
			Priority:  priority,
			Reporter:  reporter,
			Summary:   summary,
			Labels:    labels,
		})
		if err != nil {
			return fmt.Errorf("failed to create issue: %w", err)
		}

		if outputFormat() == config.OutputJSON {
			return ui.WriteJSON(cmd.OutOrStdout(), created)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.CreatedIssue(created))
		return nil
	},
}

func init() {
	issueGetCmd.Flags().StringSlice("fields", nil, "Fields to return (sent only when jira.forward_fields is enabled)")

	issueCreateCmd.Flags().String("project", "", "Project id")
	issueCreateCmd.Flags().String("type", "", "Issue type id")
	issueCreateCmd.Flags().String("priority", "", "Priority id")
	issueCreateCmd.Flags().String("reporter", "", "Reporter account id")
	issueCreateCmd.Flags().String("summary", "", "Issue summary")
	issueCreateCmd.Flags().StringSlice("labels", nil, "Labels to attach")

	issueCmd.AddCommand(issueGetCmd)
	issueCmd.AddCommand(issueCreateCmd)
	rootCmd.AddCommand(issueCmd)
}
