// Command shop runs the ruizhu shop API and its maintenance tasks.
//
//	shop serve             # migrate, then serve HTTP and gRPC
//	shop migrate           # apply pending migrations
//	shop migrate:rollback  # undo the last batch
//	shop migrate:status
//	shop seed              # insert the demo catalogue
//	shop route:list
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ruizhu/shopapi/config"

	_ "github.com/ruizhu/shopapi/database/migrations"
)

var (
	configPath string
	envPath    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "shop",
	Short:         "ruizhu shop API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultJSONPath, "JSON config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", config.DefaultEnvPath, "dotenv file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath, envPath)
}
