package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var sweepRetention time.Duration

var sweepCommand = cobra.Command{
	Use:   "sweep",
	Short: "purges long dead codes and token records",
	Long: `Deletes authorization codes and token records that expired or were revoked
longer than the retention ago. Live records are never touched.`,
	Run: func(cmd *cobra.Command, args []string) {
		store := mustResolveUsableStore(cmd.Context())
		defer store.close()
		service := resolveService(store, bootstrapDispatcher(store, nil))
		keep := sweepRetention
		if !cmd.Flags().Changed("retention") {
			keep = retention()
		}
		codes, records, err := service.Sweep(cmd.Context(), keep)
		if err != nil {
			fmt.Printf("Unable to sweep: %s\r\n", err)
			os.Exit(1)
			return
		}
		fmt.Printf("Purged %d authorization codes and %d token records\r\n", codes, records)
	},
}

func init() {
	sweepCommand.Flags().DurationVarP(&sweepRetention, "retention", "r", 0,
		"keep dead entries this long, defaults to housekeeping.retention")
}
