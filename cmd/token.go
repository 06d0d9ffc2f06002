package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/eisenwinter/extrxx/db"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenListQuery string
var tokenListSort string

var tokenCommand = cobra.Command{
	Use:   "token",
	Short: "token record actions",
	Long:  `token record actions`,
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

var tokenListCommand = cobra.Command{
	Use:   "ls",
	Short: "Lists token records",
	Long: `Lists the token records of a user, token values are never shown.
With --query (fiql, sql stores only) all token records matching the query are listed instead.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if tokenListQuery != "" {
			return nil
		}
		if len(args) < 1 || args[0] == "" {
			return errors.New("token ls (user-id) - requires a user id or --query")
		}
		if _, err := uuid.Parse(args[0]); err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		store := mustResolveUsableStore(cmd.Context())
		defer store.close()

		w := tabwriter.NewWriter(os.Stdout, 1, 1, 1, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\r\n",
			"ID", "User", "Created", "AccessExpires", "RefreshExpires", "Revoked")

		if tokenListQuery != "" {
			if store.sql == nil {
				fmt.Println("--query is only supported by sql stores")
				os.Exit(1)
				return
			}
			lst, total, err := store.sql.TokenRecords(cmd.Context(), db.ListOptions{
				Query:    tokenListQuery,
				Sort:     tokenListSort,
				PageSize: 500,
			})
			if err != nil {
				fmt.Printf("Unable to load token records: %s\r\n", err)
				os.Exit(1)
				return
			}
			for _, v := range lst {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\r\n",
					v.ID,
					v.UserID,
					v.CreatedAt.Format(time.RFC3339),
					v.AccessTokenExpiresAt.Format(time.RFC3339),
					v.RefreshTokenExpiresAt.Format(time.RFC3339),
					formatOptionalTime(v.RevokedAt))
			}
			fmt.Fprintf(w, "------------------------------------------------- \r\n")
			fmt.Fprintf(w, "%d of %d entries loaded\r\n", len(lst), total)
			w.Flush()
			return
		}

		userID := uuid.MustParse(args[0])
		service := resolveService(store, bootstrapDispatcher(store, nil))
		sessions, err := service.Sessions(cmd.Context(), userID)
		if err != nil {
			fmt.Printf("Unable to load token records: %s\r\n", err)
			os.Exit(1)
			return
		}
		for _, v := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\r\n",
				v.ID,
				userID,
				v.CreatedAt.Format(time.RFC3339),
				v.AccessTokenExpiresAt.Format(time.RFC3339),
				v.RefreshTokenExpiresAt.Format(time.RFC3339),
				formatOptionalTime(v.RevokedAt))
		}
		fmt.Fprintf(w, "------------------------------------------------- \r\n")
		fmt.Fprintf(w, "%d entries loaded\r\n", len(sessions))
		w.Flush()
	},
}

var tokenRevokeCommand = cobra.Command{
	Use:   "revoke",
	Short: "Revokes a single token record",
	Long:  `Revokes the token record holding the supplied refresh token.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 || args[0] == "" {
			return errors.New("token revoke (refresh-token) - requires a refresh token")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		store := mustResolveUsableStore(cmd.Context())
		defer store.close()
		service := resolveService(store, bootstrapDispatcher(store, nil))
		if err := service.RevokeOne(cmd.Context(), args[0]); err != nil {
			fmt.Printf("Unable to revoke token record: %s\r\n", err)
			os.Exit(1)
			return
		}
		fmt.Println("Token record revoked")
	},
}

var tokenRevokeAllCommand = cobra.Command{
	Use:   "revoke-all",
	Short: "Revokes all token records of a user",
	Long:  `Signs a user out of every extension on every device.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 || args[0] == "" {
			return errors.New("token revoke-all (user-id) - requires a user id")
		}
		if _, err := uuid.Parse(args[0]); err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		store := mustResolveUsableStore(cmd.Context())
		defer store.close()
		service := resolveService(store, bootstrapDispatcher(store, nil))
		n, err := service.RevokeAll(cmd.Context(), uuid.MustParse(args[0]))
		if err != nil {
			fmt.Printf("Unable to revoke token records: %s\r\n", err)
			os.Exit(1)
			return
		}
		fmt.Printf("%d token records revoked\r\n", n)
	},
}

func init() {
	tokenListCommand.Flags().StringVarP(&tokenListQuery, "query", "q", "", "fiql query, e.g. created_at=gt=2022-11-12T00:00:00Z")
	tokenListCommand.Flags().StringVarP(&tokenListSort, "sort", "s", "", "fiql sort, e.g. -created_at")
}
