package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the derived subtask hierarchy",
	Long: `Show every subtask with its derived path "/<project>/<ancestor>>...>subtask.".

--triples prints the two reporting ancestors per subtask instead.
--verify cross-checks the database view against the in-process deriver
and fails when they disagree.`,
	Args: cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *db.Store) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")

		if verify, _ := cmd.Flags().GetBool("verify"); verify {
			mismatches, err := store.VerifyPaths(ctx)
			if err != nil {
				return err
			}
			if len(mismatches) == 0 {
				green := color.New(color.FgGreen).SprintFunc()
				fmt.Printf("%s view and deriver agree\n", green("✓"))
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			for _, m := range mismatches {
				fmt.Printf("%s %s\n", red("✗"), m)
			}
			return fmt.Errorf("%d subtask paths disagree", len(mismatches))
		}

		if triples, _ := cmd.Flags().GetBool("triples"); triples {
			rows, err := store.IssueTriples(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(rows)
			}
			fmt.Printf("%-12s %-12s %-12s\n", "ANCESTOR_1", "ANCESTOR_2", "SUBTASK")
			for _, t := range rows {
				fmt.Printf("%-12d %-12d %-12d\n", t.Ancestor1, t.Ancestor2, t.SubtaskID)
			}
			return nil
		}

		rows, err := store.SubtasksWithPath(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(rows)
		}
		if len(rows) == 0 {
			fmt.Println("No subtasks synced yet. Run 'worktrack sync' first.")
			return nil
		}
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%-10s %-32s %s\n", "ID", "PATH", "NAME")
		for _, r := range rows {
			path := strOr(r.Path, "")
			if path == "" {
				path = yellow(fmt.Sprintf("%-32s", "(no parent)"))
			} else {
				path = fmt.Sprintf("%-32s", path)
			}
			fmt.Printf("%-10d %s %s\n", r.ID, path, truncate(r.Name, 60))
		}
		return nil
	}),
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	pathsCmd.Flags().Bool("verify", false, "compare the view with the in-process deriver")
	pathsCmd.Flags().Bool("triples", false, "print (ancestor_1, ancestor_2, subtask) triples")
	pathsCmd.Flags().Bool("json", false, "output JSON")
}
