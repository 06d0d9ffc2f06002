package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var argumentValidator = validator.New()

var userCreateCommand = cobra.Command{
	Use:   "create",
	Short: "creates a user",
	Long:  `this command may be used to create a user in the user directory of the configured store`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 || args[0] == "" || args[1] == "" {
			return errors.New("user create (email) (username) [avatar-url] - requires email and username")
		}
		if err := argumentValidator.Var(args[0], "required,email"); err != nil {
			return fmt.Errorf("invalid email: %w", err)
		}
		if len(args) > 2 {
			if err := argumentValidator.Var(args[2], "omitempty,url,max=2048"); err != nil {
				return fmt.Errorf("invalid avatar url: %w", err)
			}
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		store := mustResolveUsableStore(cmd.Context())
		defer store.close()
		profile := &tokens.Profile{
			ID:       uuid.New(),
			Email:    args[0],
			Username: args[1],
		}
		if len(args) > 2 {
			profile.AvatarURL = args[2]
		}
		if err := store.users.CreateUser(cmd.Context(), profile); err != nil {
			fmt.Printf("Unable to create user: %s \r\n", err)
			os.Exit(1)
			return
		}
		fmt.Printf("Created user for email %s with id: %v\r\n", profile.Email, profile.ID)
	},
}
