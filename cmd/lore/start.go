// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lore-dev/lore/internal/config"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the lore server",
		Long:  "Load configuration, wire the storage and provider subsystems, and start the HTTP server.",
		RunE:  runStart,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	cmd.Flags().String("data-dir", "", "directory for the database and stored uploads")

	return cmd
}

func runStart(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Storage.Path = filepath.Join(dataDir, filepath.Base(cfg.Storage.Path))
		cfg.Storage.UploadsDir = filepath.Join(dataDir, filepath.Base(cfg.Storage.UploadsDir))
	}

	app, err := WireApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "lore listening on %s\n", cfg.Server.Listen)

	return app.Server.Start(ctx)
}
