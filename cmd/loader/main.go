package main

import (
	"context"
	"os"
	"time"

	"reviewhub/proj/internal/config"
	"reviewhub/proj/internal/lib/logger"
	"reviewhub/proj/internal/storage/postgres"

	"github.com/spf13/cobra"
)

func main() {
	var (
		cfgPath string
		dataDir string
	)
	rootCmd := &cobra.Command{
		Use:   "loader",
		Short: "One-shot bulk loader seeding the store from delimited-text files",
		Long: `Reads the per-entity CSV files from the data directory and inserts
every row that is not already present. Safe to run repeatedly: existing
rows are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad(cfgPath)
			log := logger.SetupLogger(cfg.Debug)
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			storage, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
			cancel()
			if err != nil {
				return err
			}
			defer storage.Conn.Close()
			return NewLoader(log, storage.Conn, dataDir).Run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&cfgPath, "config", "config/local.yml", "path to config file")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "static/data", "directory with the csv files")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
