/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ttbackend/apiserver/config"
	"github.com/ttbackend/apiserver/internal/mq"
)

// auditCmd tails the security events channel and logs every event.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Log security events published by the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.MQ.Backend == "" {
			return errors.New("MQ_BACKEND is not set")
		}
		base := newLogger(cfg)
		defer base.Close()
		logger := base.With("component", "audit")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("connect mq: %w", err)
		}
		defer broker.Close()

		logger.Info("consuming security events", "channel", cfg.MQ.SecurityEventsChannel)
		events := mq.NewEventPublisher(broker, cfg.MQ.SecurityEventsChannel)
		err = events.Consume(ctx, func(ctx context.Context, event mq.SecurityEvent) error {
			logger.InfoContext(ctx, "security event",
				"type", event.Type,
				"employee_id", event.EmployeeID,
				"at", event.At,
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
