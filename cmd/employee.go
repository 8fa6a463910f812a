/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ttbackend/apiserver/config"
	"github.com/ttbackend/apiserver/internal/db"
	"github.com/ttbackend/apiserver/internal/security"
	"github.com/ttbackend/apiserver/internal/services"
	"github.com/ttbackend/apiserver/internal/store"
)

var (
	setPasswordEmployeeID int
	setPasswordValue      string
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage employee credentials",
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Salt, hash and store a new password for an employee",
	RunE: func(cmd *cobra.Command, args []string) error {
		if setPasswordEmployeeID < 1 {
			return errors.New("--id must be a positive employee id")
		}
		if setPasswordValue == "" {
			return errors.New("--password is required")
		}

		cfg := config.LoadConfig()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger := newLogger(cfg)
		defer logger.Close()

		hasher, err := security.NewHasher(cfg.Security)
		if err != nil {
			return err
		}
		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		credentials := services.NewCredentialService(
			store.NewCredentialRepository(conn),
			hasher,
			cfg.Security.SaltLength,
			nil,
			logger,
		)
		if err := credentials.ChangePassword(cmd.Context(), setPasswordEmployeeID, setPasswordValue); err != nil {
			return fmt.Errorf("set password for employee %d: %w", setPasswordEmployeeID, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(employeeCmd)
	employeeCmd.AddCommand(setPasswordCmd)

	setPasswordCmd.Flags().IntVar(&setPasswordEmployeeID, "id", 0, "employee id")
	setPasswordCmd.Flags().StringVar(&setPasswordValue, "password", "", "new password")
	_ = setPasswordCmd.MarkFlagRequired("id")
	_ = setPasswordCmd.MarkFlagRequired("password")
}
