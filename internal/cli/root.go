// Package cli provides the command-line interface for the speaker site backend.
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"speakersite/internal/config"
	"speakersite/internal/logger"
	"speakersite/internal/storage"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	configPath string

	cfg *config.Config
	log *logrus.Logger
	db  *sqlx.DB
)

var rootCmd = &cobra.Command{
	Use:   "speakersite",
	Short: "Speaker site backend with an AI chat concierge",
	Long: `Serves the speaker site API: talks, events, testimonials, booking
inquiries, and a chat assistant that answers questions about the site owner
from the portfolio records.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log = logger.New(cfg.Log)

		db, err = storage.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := storage.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("close database")
			}
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $"+config.ConfigEnv+" or config.json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
