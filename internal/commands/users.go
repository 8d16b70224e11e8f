package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List active users and manage accounts",
	Long: `List active users. Accounts are created through the API signup.

  --activate <name>     re-enable a deactivated account
  --deactivate <name>   disable an account
  --grant <name>        make an account a superuser`,
	Args: cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *db.Store) error {
		ctx := cmd.Context()
		green := color.New(color.FgGreen).SprintFunc()

		type action struct {
			flag string
			run  func(id int64) error
			done string
		}
		actions := []action{
			{"activate", func(id int64) error { return store.SetUserActive(ctx, id, true) }, "activated"},
			{"deactivate", func(id int64) error { return store.SetUserActive(ctx, id, false) }, "deactivated"},
			{"grant", func(id int64) error { return store.GrantSuperuser(ctx, id) }, "is now a superuser"},
		}
		acted := false
		for _, a := range actions {
			name, _ := cmd.Flags().GetString(a.flag)
			if name == "" {
				continue
			}
			user, err := store.GetUserByName(ctx, name)
			if err != nil {
				return err
			}
			if err := a.run(user.ID); err != nil {
				return err
			}
			fmt.Printf("%s %s %s\n", green("✓"), user.Name, a.done)
			acted = true
		}
		if acted {
			return nil
		}

		users, err := store.ListActiveUsers(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No active users. Sign up through the API first.")
			return nil
		}
		fmt.Printf("%-6s %s\n", "ID", "NAME")
		for _, u := range users {
			fmt.Printf("%-6d %s\n", u.ID, u.Name)
		}
		return nil
	}),
}

func init() {
	usersCmd.Flags().String("activate", "", "activate the named user")
	usersCmd.Flags().String("deactivate", "", "deactivate the named user")
	usersCmd.Flags().String("grant", "", "grant superuser to the named user")
}
