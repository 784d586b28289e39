// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zld-agent/internal/knowledge"
	"github.com/pdiddy/zld-agent/internal/relay"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Telegram relay utilities",
}

var telegramTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test message to the configured chat",
	RunE:  runTelegramTest,
}

func init() {
	telegramTestCmd.Flags().String("chat-id", "", "send to this chat instead of the stored one")

	telegramCmd.AddCommand(telegramTestCmd)
	rootCmd.AddCommand(telegramCmd)
}

func runTelegramTest(cmd *cobra.Command, args []string) error {
	chatID, _ := cmd.Flags().GetString("chat-id")
	cfg := loadConfig()
	ctx := context.Background()

	if chatID == "" {
		store, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		chatID, err = store.Setting(ctx, knowledge.ChatIDKey)
		store.Close()
		if err != nil {
			return err
		}
	}
	if chatID == "" {
		return fmt.Errorf("no chat id: pass --chat-id or run \"zld-agent settings chat-id <id>\"")
	}

	clock, err := newClock()
	if err != nil {
		return err
	}

	client := relay.New(cfg.Relay, clock, logger)
	if err := client.TestConnection(ctx, chatID); err != nil {
		var de *relay.DeliveryError
		if errors.As(err, &de) {
			return fmt.Errorf("%s (code %d)", de.Error(), de.Code)
		}
		return err
	}
	fmt.Fprintf(os.Stdout, "Test message sent to %s\n", chatID)
	return nil
}
