package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/curlhub/internal/models"
	"github.com/good-yellow-bee/curlhub/internal/storage"
)

var (
	projectSearch string
	projectID     int64
)

// projectCmd represents the project command group
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project inspection commands",
	Long: `Commands for inspecting curlhub projects regardless of visibility.

Examples:
  # List every project
  curlctl project list

  # List projects whose name contains "api"
  curlctl project list --search api

  # Show the admins and collaborators of a project
  curlctl project members --id 3`,
}

type projectRow struct {
	*models.Project
	Groups int `json:"groups"`
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		projects, err := store.Projects().List(ctx, storage.ProjectFilter{All: true, Search: projectSearch})
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}

		rows := make([]projectRow, len(projects))
		for i, p := range projects {
			groups, err := store.Groups().ListByProject(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("list groups of project %d: %w", p.ID, err)
			}
			rows[i] = projectRow{Project: p, Groups: len(groups)}
		}

		if done, err := printJSON(cmd.OutOrStdout(), rows); done || err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		fmt.Printf("\n%-8s  %-32s  %-10s  %-6s  %s\n", "ID", "NAME", "VISIBILITY", "GROUPS", "UPDATED")
		fmt.Println(strings.Repeat("-", 88))
		for _, r := range rows {
			fmt.Printf("%-8d  %-32s  %-10s  %-6d  %s\n",
				r.ID, truncate(r.Name, 32), r.Visibility, r.Groups, r.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("\nTotal: %d project(s)\n", len(rows))
		return nil
	},
}

var projectMembersCmd = &cobra.Command{
	Use:   "members",
	Short: "Show project admins and collaborators",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		project, err := store.Projects().GetByID(ctx, projectID)
		if err != nil {
			return fmt.Errorf("get project: %w", err)
		}
		if project == nil {
			return fmt.Errorf("project %d not found", projectID)
		}

		admins, err := store.Members().ListMembers(ctx, project.ID, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("list admins: %w", err)
		}
		collaborators, err := store.Members().ListMembers(ctx, project.ID, models.RoleCollaborator)
		if err != nil {
			return fmt.Errorf("list collaborators: %w", err)
		}

		result := map[string][]*models.Member{
			models.RoleAdmin.String():        admins,
			models.RoleCollaborator.String(): collaborators,
		}
		if done, err := printJSON(cmd.OutOrStdout(), result); done || err != nil {
			return err
		}

		fmt.Printf("\nProject %d: %s (%s)\n\n", project.ID, project.Name, project.Visibility)
		printMembers("Admins", admins)
		printMembers("Collaborators", collaborators)
		if len(admins) == 0 {
			fmt.Println("\nWarning: project has no admins and cannot be modified through the API.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectMembersCmd)

	projectListCmd.Flags().StringVar(&projectSearch, "search", "", "only list projects whose name contains this text")

	projectMembersCmd.Flags().Int64Var(&projectID, "id", 0, "project ID (required)")
	projectMembersCmd.MarkFlagRequired("id")
}

func printMembers(title string, members []*models.Member) {
	fmt.Printf("%s (%d):\n", title, len(members))
	if len(members) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, m := range members {
		fmt.Printf("  %-8d  %s\n", m.UserID, m.Name)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
