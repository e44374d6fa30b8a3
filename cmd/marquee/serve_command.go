package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			// One server per data directory. The lock also keeps a second
			// serve process from racing batch writes against this one.
			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another marquee server is already running for this data directory")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			searcher, err := ctx.newSearcher()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				srv, err := server.New(cfg, store, searcher, ctx.newNotifier(), logger)
				if err != nil {
					return err
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if err := srv.Start(runCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "marquee API listening on %s\n", srv.Addr())

				<-runCtx.Done()
				srv.Stop()
				logger.Info("server stopped", logging.String("address", srv.Addr()))
				return nil
			})
		},
	}
}
