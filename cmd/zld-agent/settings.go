// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/zld-agent/internal/knowledge"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read or change persistent settings",
}

var chatIDCmd = &cobra.Command{
	Use:   "chat-id [value]",
	Short: "Show, set or clear the Telegram chat that receives reports",
	Long: `Chat-id manages the Telegram chat id (or @channel name) that the
monitor relays successful reports to. Without arguments it prints the
current value. An unset chat id disables relaying.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChatID,
}

func init() {
	chatIDCmd.Flags().Bool("clear", false, "remove the stored chat id")

	settingsCmd.AddCommand(chatIDCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runChatID(cmd *cobra.Command, args []string) error {
	clearID, _ := cmd.Flags().GetBool("clear")
	if clearID && len(args) > 0 {
		return fmt.Errorf("--clear takes no value")
	}

	store, err := openStore(loadConfig().Store)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case clearID:
		if err := store.DeleteSetting(ctx, knowledge.ChatIDKey); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Chat id cleared; relaying is off.")
	case len(args) == 1:
		if err := store.SetSetting(ctx, knowledge.ChatIDKey, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Chat id set to %s\n", args[0])
	default:
		v, err := store.Setting(ctx, knowledge.ChatIDKey)
		if err != nil {
			return err
		}
		if v == "" {
			fmt.Fprintln(os.Stdout, "Chat id not set; relaying is off.")
			return nil
		}
		fmt.Fprintln(os.Stdout, v)
	}
	return nil
}
