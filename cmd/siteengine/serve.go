package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/siteengine"
	"github.com/eringen/siteengine/seed"
)

func newServeCmd(c *cli) *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, withSeed)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "load the default content into empty collections before serving")
	return cmd
}

func (c *cli) serve(ctx context.Context, withSeed bool) error {
	db, err := siteengine.OpenDocStore(ctx, c.cfg)
	if err != nil {
		return err
	}
	// An in-memory store starts empty on every run.
	if withSeed || c.cfg.Persistence == siteengine.PersistenceMemory {
		content, err := seed.Parse(seed.Defaults)
		if err != nil {
			_ = db.Close()
			return err
		}
		if _, err := seed.Load(ctx, db, content, c.logger); err != nil {
			_ = db.Close()
			return fmt.Errorf("seed: %w", err)
		}
	}

	app := siteengine.New(c.cfg, siteengine.ViewFuncs{},
		siteengine.WithLogger(c.logger),
		siteengine.WithDocStore(db),
	)
	defer func() {
		if err := app.Close(); err != nil {
			c.logger.Warn("close failed", zap.Error(err))
		}
	}()
	return app.Start(ctx)
}
