// Package mcp exposes a Parley engine as a Model Context Protocol server, so an
// assistant can hold a consultation as a tool call per turn.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RulesURI is the resource holding the rule table.
const RulesURI = "parley://rules"

// ConsultResponse is the structured output of the consult tool.
type ConsultResponse struct {
	Response  string       `json:"response" jsonschema_description:"The reply to show to the user"`
	SessionID string       `json:"session_id" jsonschema_description:"Pass this back as session_id on the next call"`
	State     domain.State `json:"state" jsonschema_description:"Conversation state after the turn"`
	Matched   bool         `json:"matched" jsonschema_description:"False when the input was not understood"`
}

// Engine defines the interface required by the MCP server to interact with Parley.
type Engine interface {
	Turn(ctx context.Context, sessionID string, input string) (*domain.Reply, error)
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	EndSession(ctx context.Context, sessionID string) error
	Rules() *rules.Table
}

// Server wraps the Parley Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	sanitizer runner.Sanitizer
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize bounds the consult input in bytes. Zero keeps runner.DefaultMaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.sanitizer = runner.NewSanitizer(n)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: consult
	consultTool := mcp.NewTool("consult",
		mcp.WithDescription("Say something to the village physician and get the reply. "+
			"Omit session_id to start a consultation; pass the returned session_id to continue it."),
		mcp.WithString("input", mcp.Required(), mcp.Description("What the patient says")),
		mcp.WithString("session_id", mcp.Description("Identifier returned by a previous call (optional)")),
		mcp.WithOutputSchema[ConsultResponse](),
	)
	s.mcpServer.AddTool(consultTool, mcp.NewStructuredToolHandler(s.handleConsult))

	// TOOL: end_consultation
	s.mcpServer.AddTool(mcp.NewTool("end_consultation",
		mcp.WithDescription("Forget a consultation. A later consult with its session_id starts afresh."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Identifier of the consultation")),
	), s.handleEnd)
}

func (s *Server) handleConsult(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ConsultResponse, error) {
	input, _ := args["input"].(string)
	sessionID, _ := args["session_id"].(string)

	clean, err := s.sanitizer.Clean(input)
	if err != nil {
		s.logger.Warn("MCP Consult: Input rejected", "err", err, "size", len(input))
		return ConsultResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	reply, err := s.engine.Turn(ctx, sessionID, clean)
	if err != nil {
		return ConsultResponse{}, fmt.Errorf("consult failed: %w", err)
	}

	return ConsultResponse{
		Response:  reply.Response,
		SessionID: reply.SessionID,
		State:     reply.State,
		Matched:   reply.Matched,
	}, nil
}

func (s *Server) handleEnd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.engine.Session(ctx, sessionID); errors.Is(err, domain.ErrSessionNotFound) {
		return mcp.NewToolResultText("no such consultation"), nil
	}
	if err := s.engine.EndSession(ctx, sessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("end failed: %v", err)), nil
	}
	return mcp.NewToolResultText("consultation ended"), nil
}

func (s *Server) registerResources() {
	// EXPOSE: parley://rules
	s.mcpServer.AddResource(mcp.NewResource(RulesURI, "Dialogue Rules",
		mcp.WithResourceDescription("States and patterns the engine understands, in match order"),
		mcp.WithMIMEType("application/json"),
	), s.handleRules)
}

func (s *Server) handleRules(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	table := s.engine.Rules()
	jsonBytes, err := json.Marshal(map[string]any{
		"fallback": table.Fallback(),
		"states":   table.Describe(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rules: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RulesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
