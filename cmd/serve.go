package cmd

import (
	"context"

	"github.com/eisenwinter/extrxx/api"
	"github.com/eisenwinter/extrxx/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCommand = cobra.Command{
	Use:   "serve",
	Short: "starts the http server",
	Long:  `Starts a http server and serves the extension endpoints`,
	Run: func(cmd *cobra.Command, args []string) {
		//this is our composite root
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		//setup datastore
		store := mustResolveUsableStore(ctx)
		defer store.close()

		//metrics
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector := metrics.New(TopLevelLogger.Named("metrics"), registry)

		//events dispatcher
		dispatcher := bootstrapDispatcher(store, collector)

		service := resolveService(store, dispatcher)
		service.Start()
		defer service.Stop()

		if hk := LoadedConfig.Housekeeping; hk != nil && hk.Interval > 0 {
			TopLevelLogger.Info("Starting housekeeping",
				zap.Duration("interval", hk.Interval),
				zap.Duration("retention", hk.Retention))
			go service.RunHousekeeping(ctx, hk.Interval, hk.Retention)
		}

		server, err := api.NewServer(LoadedConfig, TopLevelLogger.Named("server"),
			service,
			store,
			collector.Handler(),
		)
		if err != nil {
			TopLevelLogger.Fatal("Failed to create server", zap.Error(err))
		}
		if err := server.Start(); err != nil {
			TopLevelLogger.Error("Server stopped with error", zap.Error(err))
		}
		TopLevelLogger.Info("Shutdown complete")
	},
}
