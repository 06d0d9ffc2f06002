package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listUsersCommand = cobra.Command{
	Use:   "ls",
	Short: "Lists all users",
	Long:  `This will list all users`,
	Run: func(cmd *cobra.Command, args []string) {
		store := mustResolveUsableStore(cmd.Context())
		defer store.close()
		lst, err := store.users.Users(cmd.Context())
		if err != nil {
			fmt.Printf("Unable to load users: %s", err)
			os.Exit(1)
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 1, 1, 1, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\r\n", "ID", "Email", "Username")
		for _, v := range lst {
			fmt.Fprintf(w, "%s\t%s\t%s\r\n", v.ID, v.Email, v.Username)
		}
		fmt.Fprintf(w, "------------------------------------------------- \r\n")
		fmt.Fprintf(w, "%d entries loaded", len(lst))
		w.Flush()
	},
}
