// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/history"
	xglog "github.com/ManuGH/avalon/internal/log"
	"github.com/ManuGH/avalon/internal/persistence/sqlite"
)

// withStore opens the configured history backend for the duration of fn.
func withStore(ctx context.Context, opts *rootOptions, fn func(history.Store) error) (err error) {
	_, cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := history.Open(ctx, cfg.History.StoreConfig())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(store)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		guild string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent finished games for a guild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), opts, func(store history.Store) error {
				games, err := store.History(cmd.Context(), guild, limit)
				if err != nil {
					return err
				}
				if games == nil {
					games = []history.GameRecord{}
				}
				return printJSON(cmd.OutOrStdout(), games)
			})
		},
	}
	cmd.Flags().StringVar(&guild, "guild", "", "guild identifier")
	cmd.Flags().IntVar(&limit, "limit", history.DefaultHistoryLimit, "maximum number of games")
	_ = cmd.MarkFlagRequired("guild")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var guild, player string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate statistics for a player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), opts, func(store history.Store) error {
				stats, err := store.PlayerStats(cmd.Context(), model.PlayerID(player), guild)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().StringVar(&guild, "guild", "", "guild identifier")
	cmd.Flags().StringVar(&player, "player", "", "player identifier")
	_ = cmd.MarkFlagRequired("guild")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		guild string
		limit int
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a guild's game history to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), opts, func(store history.Store) error {
				n, err := history.ExportGuild(cmd.Context(), store, guild, limit, out)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d games to %s\n", n, out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&guild, "guild", "", "guild identifier")
	cmd.Flags().IntVar(&limit, "limit", history.MaxHistoryLimit, "maximum number of games")
	cmd.Flags().StringVarP(&out, "out", "o", "", "destination file")
	_ = cmd.MarkFlagRequired("guild")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newVerifyDBCmd(opts *rootOptions) *cobra.Command {
	var path, mode string
	cmd := &cobra.Command{
		Use:   "verify-db",
		Short: "Run an integrity check on a sqlite history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				_, cfg, err := opts.loadConfig()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if cfg.History.Backend != history.BackendSqlite {
					return fmt.Errorf("history backend is %q, pass --path to check a sqlite file", cfg.History.Backend)
				}
				path = cfg.History.Path
			}
			if mode != "quick" && mode != "full" {
				return fmt.Errorf("invalid mode %q (want quick or full)", mode)
			}

			problems, err := sqlite.VerifyIntegrity(cmd.Context(), path, mode)
			if err != nil {
				return err
			}
			if len(problems) > 0 {
				for _, p := range problems {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return fmt.Errorf("integrity check failed with %d problems", len(problems))
			}
			logger := xglog.WithComponent("verify-db")
			logger.Info().Str(xglog.FieldEvent, "db.verified").Str(xglog.FieldPath, path).Str("mode", mode).Msg("integrity ok")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "sqlite file (defaults to the configured history path)")
	cmd.Flags().StringVar(&mode, "mode", "quick", "check mode: quick or full")
	return cmd
}
