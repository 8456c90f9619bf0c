/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/messagely/apiserver/config"
	"github.com/messagely/apiserver/internal/logging"
	"github.com/messagely/apiserver/internal/mq"
	"github.com/messagely/apiserver/internal/server"
	"github.com/messagely/apiserver/internal/services"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// notifyCmd runs a notification worker that consumes message events from
// the configured broker. Delivery (push, e-mail, ...) hangs off the handler;
// for now it logs each event.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Runs the notification worker",
	Long: `Consumes message.sent and message.read events from the configured
broker. Requires MQ_BACKEND to be set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.MQBackend == "" {
			return fmt.Errorf("MQ_BACKEND is required for the notify worker")
		}

		broker, err := server.OpenBroker(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open broker: %w", err)
		}
		defer func() {
			_ = broker.Close()
		}()

		log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

		group, ctx := errgroup.WithContext(cmd.Context())
		group.Go(func() error {
			return broker.Subscribe(ctx, services.ChannelMessageSent, logSentEvent(log))
		})
		group.Go(func() error {
			return broker.Subscribe(ctx, services.ChannelMessageRead, logReadEvent(log))
		})
		return group.Wait()
	},
}

func logSentEvent(log logging.Logger) mq.Handler {
	return func(ctx context.Context, event mq.Event) error {
		var sent services.MessageSentEvent
		if err := json.Unmarshal(event.Data, &sent); err != nil {
			log.Warn(ctx, "discarding malformed message.sent event", "event_id", event.ID)
			return nil
		}
		log.Info(ctx, "message sent", "id", sent.ID, "from", sent.FromUsername, "to", sent.ToUsername)
		return nil
	}
}

func logReadEvent(log logging.Logger) mq.Handler {
	return func(ctx context.Context, event mq.Event) error {
		var read services.MessageReadEvent
		if err := json.Unmarshal(event.Data, &read); err != nil {
			log.Warn(ctx, "discarding malformed message.read event", "event_id", event.ID)
			return nil
		}
		log.Info(ctx, "message read", "id", read.ID, "by", read.ToUsername)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
