package cmd

import (
	"fmt"
	"os"

	"github.com/eisenwinter/extrxx/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ConfigFileLocation is of the config to load
var ConfigFileLocation string

// TopLevelLogger is the logger all loggers come from
var TopLevelLogger *zap.Logger

// LoadedConfig is the currently loaded configuration after initial bootstrapping
var LoadedConfig *config.Configuration

var rootCommand = cobra.Command{
	Use:   "extrxx",
	Short: "extrxx hands browser extensions tokens for signed in users",
	Long: `extrxx issues one time authorization codes for users signed in to a web application
	and exchanges them for opaque access and refresh tokens used by browser extensions.`,
	Run: func(cmd *cobra.Command, args []string) {
		serveCommand.Run(cmd, args)
	},
}

func Execute() {
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {

	rootCommand.PersistentFlags().
		StringVar(&ConfigFileLocation, "config", "", "config file to be used")

	codeCommand.AddCommand(&codeIssueCommand)

	tokenCommand.AddCommand(&tokenListCommand)
	tokenCommand.AddCommand(&tokenRevokeCommand)
	tokenCommand.AddCommand(&tokenRevokeAllCommand)

	userCommand.AddCommand(&userCreateCommand)
	userCommand.AddCommand(&listUsersCommand)

	rootCommand.AddCommand(&serveCommand)
	rootCommand.AddCommand(&migrateCommand)
	rootCommand.AddCommand(&codeCommand)
	rootCommand.AddCommand(&tokenCommand)
	rootCommand.AddCommand(&userCommand)
	rootCommand.AddCommand(&sweepCommand)
	rootCommand.AddCommand(&keyCommand)
}
