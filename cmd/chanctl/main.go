package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/manamana32321/chanctl/internal/config"
)

type rootOptions struct {
	configPath string
	timeout    time.Duration
}

func NewChanctlCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "chanctl",
		Short:        "Operate on Discord channels from the command line",
		Example:      "chanctl send 1234567890 \"deploy finished\"",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", envOr("CONFIG_PATH", config.DefaultPath), "Path to the YAML config file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "How long to wait for Discord to answer")

	cmd.AddCommand(
		newSendCommand(opts),
		newGetCommand(opts),
		newHistoryCommand(opts),
		newPinsCommand(opts),
		newPinCommand(opts),
		newUnpinCommand(opts),
		newReactCommand(opts),
		newUnreactCommand(opts),
		newReactionsCommand(opts),
		newEditCommand(opts),
		newDeleteMessageCommand(opts),
		newPurgeCommand(opts),
		newDeleteChannelCommand(opts),
		newTypingCommand(opts),
		newRelayCommand(opts),
	)

	return cmd
}

func main() {
	cmd := NewChanctlCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
