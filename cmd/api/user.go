package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"task-tracker/internal/database"
	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
	"task-tracker/internal/services"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		email, _ := cmd.Flags().GetString("email")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.InitDB(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db, cfg.Database.Driver); err != nil {
			return err
		}

		userService := services.NewUserService(repositories.NewUserRepository(db), cfg.Auth.BcryptCost)
		created, err := userService.RegisterUser(cmd.Context(), models.UserRegisterRequest{
			Username:             username,
			Email:                email,
			Password:             password,
			PasswordConfirmation: password,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d)\n", created.Username, created.ID)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().String("username", "", "login name")
	userCreateCmd.Flags().String("password", "", "password (at least 8 characters)")
	userCreateCmd.Flags().String("email", "", "email address (optional)")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
