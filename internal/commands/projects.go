package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/models"
	"github.com/balkashynov/worktrack/internal/parser"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects and choose which ones sync",
	Long: `List the projects mirrored from Jira. Target projects have their issues
synced and count as target in reports.

Examples:
  worktrack projects
  worktrack projects --target PLT=false --target 10001=true
  worktrack projects --remote`,
	Args: cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *db.Store) error {
		ctx := cmd.Context()

		if remote, _ := cmd.Flags().GetBool("remote"); remote {
			client, err := newJiraClient()
			if err != nil {
				return err
			}
			projects, err := client.ListProjects(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %-10s %s\n", "ID", "KEY", "NAME")
			for _, p := range projects {
				fmt.Printf("%-10d %-10s %s\n", p.ID, p.Key, p.Name)
			}
			return nil
		}

		assignments, _ := cmd.Flags().GetStringArray("target")
		green := color.New(color.FgGreen).SprintFunc()
		for _, raw := range assignments {
			ref, target, err := parser.ParseTargetAssignment(raw)
			if err != nil {
				return err
			}
			id := ref.ID
			if id == 0 {
				p, err := store.GetProjectByKey(ctx, ref.Key)
				if err != nil {
					return err
				}
				id = p.ID
			}
			project, err := store.SetProjectTarget(ctx, id, target)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s is_target=%t\n", green("✓"), project.JiraKey, project.IsTarget)
		}
		if len(assignments) > 0 {
			return nil
		}

		projects, err := store.ListProjects(ctx)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(projects)
		}
		printProjects(projects)
		return nil
	}),
}

func printProjects(projects []models.Project) {
	if len(projects) == 0 {
		fmt.Println("No projects synced yet. Run 'worktrack sync' first.")
		return
	}
	green := color.New(color.FgGreen).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Printf("%-10s %-10s %-8s %s\n", "ID", "KEY", "TARGET", "NAME")
	for _, p := range projects {
		target := faint(fmt.Sprintf("%-8s", "no"))
		if p.IsTarget {
			target = green(fmt.Sprintf("%-8s", "yes"))
		}
		fmt.Printf("%-10d %-10s %s %s\n", p.ID, p.JiraKey, target, truncate(p.Name, 60))
	}
}

func init() {
	projectsCmd.Flags().StringArray("target", nil, "set is_target, as <id|KEY>=true|false (repeatable)")
	projectsCmd.Flags().Bool("remote", false, "list projects straight from Jira")
	projectsCmd.Flags().Bool("json", false, "output JSON")
}
