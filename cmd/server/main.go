package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/config"
	"github.com/AnshRaj112/nutrameter-backend/pkg/logger"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "nutrameter",
	Short: "Nutrameter nutrition tracking API",
	Long: `Nutrameter serves the meal ledger, progress tracking, profile, photo
analysis and insights API.

Running without a subcommand starts the HTTP server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// setup loads .env and configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		log.Debug("no .env file found")
	}
	return cfg, log, nil
}
