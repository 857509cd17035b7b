package cli

import (
	"fmt"
	"log"

	"shop-service/internal/infra/database"
	mysqlrepo "shop-service/internal/repository/mysql"
	"shop-service/internal/services"

	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a staff account for the admin console",
	RunE:  createAdmin,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Login name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Contact address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password (at least 8 characters)")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func createAdmin(cmd *cobra.Command, args []string) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	auth := services.NewAuthService(mysqlrepo.NewUserRepository(db), cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	u, err := auth.CreateAdmin(cmd.Context(), adminUsername, adminEmail, adminPassword)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("Admin user %q created with ID: %d", u.Username, u.ID)
	return nil
}
