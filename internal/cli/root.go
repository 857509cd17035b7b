package cli

import (
	"fmt"
	"os"

	"shop-service/internal/config"
	"shop-service/internal/infra/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "shop",
	Short: "Shop backend: catalog, orders, payments",
	Long: `Shop backend serving the storefront and admin API.

Configuration is read from config.yaml (./, ./deploy/ or /etc/shop/),
.env and SHOP_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DB.DSN == "" {
		return nil, nil, fmt.Errorf("missing required config: db.dsn")
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}
