package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ruizhu/shopapi/database/seeders"
	"github.com/ruizhu/shopapi/pkg/database"
	"github.com/ruizhu/shopapi/pkg/migration"
)

// withDB loads config, opens the database and runs fn against it.
func withDB(fn func(db *gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck
	return fn(db)
}

// shop migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			n, err := migration.New(db, cmd.OutOrStdout()).Run()
			if err == nil && n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", n)
			}
			return err
		})
	},
}

// shop migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			_, err := migration.New(db, cmd.OutOrStdout()).Rollback()
			return err
		})
	},
}

// shop migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show which migrations have run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			return migration.New(db, cmd.OutOrStdout()).PrintStatus()
		})
	},
}

// shop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			return seeders.RunAll(db, cmd.OutOrStdout())
		})
	},
}
