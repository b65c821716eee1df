// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command avalon runs the Avalon session service and inspects its game history.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuGH/avalon/internal/config"
	xglog "github.com/ManuGH/avalon/internal/log"
	"github.com/ManuGH/avalon/internal/version"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "avalon",
		Short:         "Avalon game session service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c",
		config.ParseString(config.ConfigPathEnv, ""), "path to a YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newHistoryCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newVerifyDBCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads and validates configuration, then applies the log level.
func (o *rootOptions) loadConfig() (*config.Loader, config.AppConfig, error) {
	loader := config.NewLoader(o.configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return loader, cfg, err
	}
	if err := xglog.SetLevel(cfg.Log.Level); err != nil {
		return loader, cfg, err
	}
	return loader, cfg, nil
}

func main() {
	xglog.Configure(xglog.Config{Level: "info", Service: "avalon", Version: version.Version})

	if err := newRootCmd().Execute(); err != nil {
		logger := xglog.WithComponent("cli")
		logger.Error().Err(err).Str(xglog.FieldEvent, "cli.failed").Msg("command failed")
		os.Exit(1)
	}
}
