// Command fuelplan serves the fuel planning API and builds scenarios from
// the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/fuelplan/internal/config"
	"github.com/okian/fuelplan/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cliState carries what the root command prepares for its subcommands.
type cliState struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	root := &cobra.Command{
		Use:           "fuelplan",
		Short:         "Plan per-hour race fueling and assemble product kits",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if st.configPath != "" {
				if err := os.Setenv(config.EnvConfig, st.configPath); err != nil {
					return fmt.Errorf("set %s: %w", config.EnvConfig, err)
				}
			}
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if st.logLevel != "" {
				cfg.LogLevel = st.logLevel
			}
			if err := logger.Init(
				logger.WithWriter(cmd.ErrOrStderr()),
				logger.WithJSON(cfg.LogJSON),
				logger.WithLevel(cfg.LogLevel),
			); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			st.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", "", "YAML config file (overrides "+config.EnvConfig+")")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(st), newBuildCmd(st))
	return root
}
