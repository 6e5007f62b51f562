package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ruizhu/shopapi/app/controllers"
	"github.com/ruizhu/shopapi/app/routes"
	"github.com/ruizhu/shopapi/internal/kernel"
	"github.com/ruizhu/shopapi/internal/server"
	"github.com/ruizhu/shopapi/pkg/logger"
	"github.com/ruizhu/shopapi/pkg/middleware"
	"github.com/ruizhu/shopapi/pkg/migration"
)

// shop serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run pending migrations and start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		flush := kernel.SetupLogging(ctx, cfg)
		defer flush()

		app, err := kernel.Open(ctx, cfg)
		if err != nil {
			logger.Error("boot failed", "error", err)
			return err
		}
		defer app.Close() //nolint:errcheck

		if _, err := migration.New(app.DB, os.Stdout).Run(); err != nil {
			return err
		}
		return server.Run(ctx, app)
	},
}

// shop route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		r := kernel.NewRouter(cfg, routes.Controllers{
			Home:     controllers.NewHomeController(nil),
			Users:    controllers.NewUserController(nil),
			Products: controllers.NewProductController(nil),
			Orders:   controllers.NewOrderController(nil),
			Payments: controllers.NewPaymentController(nil),
		}, middleware.Auth(nil), middleware.NewMemoryStore())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range r.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
