package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCommand = cobra.Command{
	Use:   "migrate",
	Short: "migrates the configured store",
	Long: `Applies all pending sql migrations, or creates the indexes for mongo.
Stores are migrated on every start as well, this is for deployments that migrate ahead of time.`,
	Run: func(cmd *cobra.Command, args []string) {
		store := mustResolveUsableStore(cmd.Context())
		defer store.close()
		fmt.Printf("Store of type %s is up to date\r\n", LoadedConfig.Database.Type)
	},
}
