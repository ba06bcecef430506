package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/aretw0/parley/pkg/rules/villagegp"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions in a shared store",
	Long:  `List, inspect, and remove sessions kept in Redis (--redis-addr) or a session directory (--session-dir).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("redis-addr")
		dir, _ := cmd.Flags().GetString("session-dir")
		if addr == "" && dir == "" {
			return fmt.Errorf("session commands need a shared store: set --redis-addr ($%s) or --session-dir ($%s)", cli.EnvRedisAddr, cli.EnvSessionDir)
		}
		return nil
	},
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		sessions, err := backend.Store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No active sessions found.")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Active Sessions:")
		for _, s := range sessions {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}

		sess, err := backend.Store.Load(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", sessionID, err)
		}

		if withGraph, _ := cmd.Flags().GetBool("graph"); withGraph {
			table, err := loadTable(cmd)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(table.Describe(), &graph.GraphOverlay{CurrentState: sess.State}))
			return nil
		}

		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		failed := 0

		for _, sessionID := range args {
			if err := backend.Store.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", sessionID, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", sessionID)
		}

		if failed > 0 {
			return fmt.Errorf("%d session(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().Bool("graph", false, "Print a Mermaid diagram highlighting the session's state")
}

func openBackend(cmd *cobra.Command) (*cli.Backend, error) {
	opts := readOptions(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return cli.CreateBackend(ctx, opts, cli.CreateLogger(opts))
}

func loadTable(cmd *cobra.Command) (*rules.Table, error) {
	if path, _ := cmd.Flags().GetString("rules"); path != "" {
		return rules.Load(path)
	}
	return villagegp.Table(), nil
}
