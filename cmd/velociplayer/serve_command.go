package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"velociplayer/internal/daemon"
	"velociplayer/internal/library"
	"velociplayer/internal/logging"
	"velociplayer/internal/playback"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var noLibrary bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the caption daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd, ctx, noLibrary)
		},
	}
	cmd.Flags().BoolVar(&noLibrary, "no-library", false, "Do not open the subtitle library")
	return cmd
}

func runServe(cmdCtx context.Context, cmd *cobra.Command, ctx *commandContext, noLibrary bool) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	var store *library.Store
	if !noLibrary {
		store, err = library.Open(cfg, logger)
		if err != nil {
			logger.Error("open subtitle library", logging.Error(err))
			return err
		}
	}

	adapter := playback.NewAdapter(playback.Options{Build: cfg.BuildOptions(), Logger: logger})
	d, err := daemon.New(cfg, adapter, store, logger)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "velociplayer daemon listening on %s\n", d.Addr())

	<-signalCtx.Done()
	logger.Info("velociplayer daemon shutting down")
	return nil
}
