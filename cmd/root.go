/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/ttbackend/apiserver/config"
	"github.com/ttbackend/apiserver/internal/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ttbackend",
	Short: "Time-tracking backend",
	Long: `Backend of the employee time-tracking application: authentication,
employee profiles and tasks over HTTP, plus maintenance commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the configured logger, falling back to the default one
// when the log file cannot be opened.
func newLogger(cfg config.Config) *logging.Logger {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fallback := logging.Default()
		fallback.Warn("falling back to stdout logging", "error", err)
		return fallback
	}
	return logger
}
