package main

import (
	"os"

	"github.com/aretw0/parley/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Hold a conversation in the terminal",
	Long: `Reads one message per line and prints each reply. Type "exit" or "quit" to leave.
With --json, reads {"input": "..."} lines and writes one JSON reply per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ChatOptions{Options: readOptions(cmd)}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		return cli.RunChat(opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "", "Resume this session (needs --redis-addr or --session-dir)")
	chatCmd.Flags().Bool("json", false, "JSON-Lines input and output")
	chatCmd.Flags().Bool("plain", false, "Disable banner and markdown rendering")

	// Chatting is the default when no subcommand is given.
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
