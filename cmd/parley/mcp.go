package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP Server, so AI agents can hold a consultation
through the "consult" tool and read the rules from the parley://rules resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := readOptions(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs always go to stderr, which keeps JSON-RPC on stdout clean.
		logger := cli.CreateLogger(opts)
		log.SetOutput(os.Stderr)

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		backend, err := cli.CreateBackend(sigCtx, opts, logger)
		if err != nil {
			return err
		}
		engine, err := cli.CreateEngine(opts, backend, logger)
		if err != nil {
			return err
		}
		defer engine.Close()

		srv := mcp.NewServer(engine, mcp.WithLogger(logger), mcp.WithMaxInputSize(opts.MaxInputSize))

		switch transport {
		case "stdio":
			logger.Info("Starting Parley MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting Parley MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(sigCtx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
