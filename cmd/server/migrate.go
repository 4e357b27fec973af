package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const migrateTimeout = 30 * time.Second

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create indexes or tables in the durable store",
	Long: `Create the MongoDB indexes or PostgreSQL tables the API relies on.

The store is chosen by STORE_DRIVER. With the memory driver there is nothing
to do. serve runs the same step on startup, so this is only needed when
provisioning ahead of a deploy.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	durable, closeFn, err := openDurable(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	if durable == nil {
		log.Info("memory store selected, nothing to migrate")
		return nil
	}
	if err := durable.Ping(ctx); err != nil {
		return fmt.Errorf("durable store unreachable: %w", err)
	}
	if err := migrate(ctx, durable, migrateTimeout); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migration complete", zap.String("driver", cfg.StoreDriver))
	return nil
}
