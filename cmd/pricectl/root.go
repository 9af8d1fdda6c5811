package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/backend-drycleaning/internal/app"
	"github.com/noah-isme/backend-drycleaning/internal/config"
	"github.com/noah-isme/backend-drycleaning/internal/obs"
)

type rootOptions struct {
	memory     bool
	logLevel   string
	loadConfig func() (*config.Config, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(config.Load)
}

func newRootCmdWith(load func() (*config.Config, error)) *cobra.Command {
	opts := &rootOptions{loadConfig: load}
	cmd := &cobra.Command{
		Use:           "pricectl",
		Short:         "Dry-cleaning pricing catalog and calculation tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.memory, "memory", false, "use the built-in price list instead of DATABASE_URL and REDIS_URL")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(migrateCmd(opts))
	cmd.AddCommand(seedCmd(opts))
	cmd.AddCommand(calcCmd(opts))
	cmd.AddCommand(modifiersCmd(opts))
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return obs.NewLogger("console", o.logLevel).Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
}

func (o *rootOptions) deps(cmd *cobra.Command) (*app.Dependencies, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Build(cmd.Context(), cfg, o.logger(cmd), app.Options{
		ForceMemory:     o.memory,
		ApplicationName: "pricectl",
	})
}
