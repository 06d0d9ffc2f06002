package cmd

import (
	"github.com/spf13/cobra"
)

var userCommand = cobra.Command{
	Use:   "user",
	Short: "user actions",
	Long:  `user actions, only for stores that keep their own users`,
}
