package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var codeCommand = cobra.Command{
	Use:   "code",
	Short: "authorization code actions",
	Long:  `authorization code actions`,
}

var codeIssueCommand = cobra.Command{
	Use:   "issue",
	Short: "issues a authorization code for a user",
	Long: `Issues a one time authorization code as the web application would.
Mostly useful to test an extension against a running instance.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 || args[0] == "" {
			return errors.New("code issue (user-id) (callback-url) - requires a user id and callback url")
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

		code, err := service.IssueCode(cmd.Context(), uuid.MustParse(args[0]), args[1])
		if err != nil {
			fmt.Printf("Unable to issue code: %s\r\n", err)
			os.Exit(1)
			return
		}
		fmt.Printf("%s (valid until %s)\r\n", code.Code, code.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	},
}
