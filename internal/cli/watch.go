package cli

import (
	"github.com/spf13/cobra"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/app"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/config"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/logging"
)

// NewWatchCmd runs monitoring passes on the configured interval until
// interrupted.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run passes on a fixed interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			logger.Info("watch mode", "interval", cfg.Scheduler.Every())
			return application.Watch(cmd.Context(), logger.With("component", "scheduler"))
		},
	}
}
