package cli

import (
	"github.com/spf13/cobra"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/app"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/config"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/logging"
)

// NewRunCmd executes a single monitoring pass.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one collect-score-notify pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.RunOnce(cmd.Context())
		},
	}
}
