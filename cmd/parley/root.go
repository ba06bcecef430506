package main

import (
	"fmt"
	"os"

	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley is a session-scoped, rule-matching dialogue engine",
	Long: `Parley answers each message by matching it against the ordered patterns of the
conversation's current state. Without --rules it plays the Old English Village GP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("rules", cli.EnvString(cli.EnvRules, ""), "YAML or JSON rule file (default: built-in Village GP) [$"+cli.EnvRules+"]")
	flags.String("fallback", "", "Override the reply to unmatched input")
	flags.Bool("debug", false, "Enable debug logging to stderr")
	flags.Bool("json-logs", false, "Write logs as JSON")
	flags.String("redis-addr", cli.EnvString(cli.EnvRedisAddr, ""), "Redis address for shared sessions, e.g. localhost:6379 [$"+cli.EnvRedisAddr+"]")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database number")
	flags.String("session-dir", cli.EnvString(cli.EnvSessionDir, ""), "Keep sessions as JSON files in this directory [$"+cli.EnvSessionDir+"]")
	flags.Duration("session-ttl", 0, "Forget sessions idle for this long (0 keeps them)")
	flags.Int("max-input-size", runner.MaxInputSizeFromEnv(), "Largest accepted message in bytes [$"+runner.EnvMaxInputSize+"]")
}

// readOptions collects the persistent flags.
func readOptions(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.RulesPath, _ = flags.GetString("rules")
	opts.Fallback, _ = flags.GetString("fallback")
	opts.Debug, _ = flags.GetBool("debug")
	opts.JSONLogs, _ = flags.GetBool("json-logs")
	opts.RedisAddr, _ = flags.GetString("redis-addr")
	opts.RedisPassword, _ = flags.GetString("redis-password")
	opts.RedisDB, _ = flags.GetInt("redis-db")
	opts.SessionTTL, _ = flags.GetDuration("session-ttl")
	opts.SessionDir, _ = flags.GetString("session-dir")
	opts.MaxInputSize, _ = flags.GetInt("max-input-size")
	if opts.SessionTTL < 0 {
		opts.SessionTTL = 0
	}
	return opts
}
