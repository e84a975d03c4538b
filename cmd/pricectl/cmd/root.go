// Package cmd provides the pricectl commands.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trykkeri-admin/app"
	"trykkeri-admin/config"
	"trykkeri-admin/db"
	"trykkeri-admin/logging"
)

var verbose bool

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pricectl",
	Short: "Operate the print shop price matrices from the command line",
	Long: `pricectl runs the admin operations without the HTTP server.

Examples:
  pricectl migrate
  pricectl import <product-id> prices.csv
  pricectl export <product-id> --mode final > prices.csv
  pricectl quote --anchors 100=45,500=40 --at 300
  pricectl invoice <invoice-id> -o faktura.pdf`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func initLogging() {
	cfg := logging.DefaultConfig()
	if verbose {
		cfg.Level = "debug"
	}
	if err := logging.Initialize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// openDB loads the configuration and opens the database
func openDB(ctx context.Context) (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, err
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, conn, cfg.DBDriver); err != nil {
			conn.Close()
			return config.Config{}, nil, err
		}
	}
	return cfg, conn, nil
}

// session is an open database with the services built on it
type session struct {
	*app.Services
	cfg  config.Config
	conn *sql.DB
}

func (s *session) Close() {
	s.conn.Close()
}

// openServices is openDB plus the application services
func openServices(ctx context.Context) (*session, error) {
	cfg, conn, err := openDB(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := app.NewServices(ctx, cfg, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &session{Services: svc, cfg: cfg, conn: conn}, nil
}
