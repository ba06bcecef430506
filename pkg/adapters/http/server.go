// Package http exposes a Parley engine as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine defines the interface for the Parley dialogue core.
type Engine interface {
	Turn(ctx context.Context, sessionID string, input string) (*domain.Reply, error)
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	EndSession(ctx context.Context, sessionID string) error
	Rules() *rules.Table
}

// Server holds the handlers of the API.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Metrics http.Handler
	Logger  *slog.Logger

	// Sanitizer is applied to every chat input.
	Sanitizer runner.Sanitizer
}

// Option configures the Server.
type Option func(*Server)

// WithStreams enables GET /api/sessions/{id}/events. The same manager's Hooks must be
// registered on the engine for events to flow.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMaxInputSize bounds the chat input in bytes. Zero keeps runner.DefaultMaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.Sanitizer = runner.NewSanitizer(n)
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{Engine: engine, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/api/chatbot", server.Chat)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", server.GetSession)
		r.Delete("/", server.DeleteSession)
		if server.Streams != nil {
			r.Get("/events", server.SubscribeEvents)
		}
	})
	r.Get("/api/rules", server.GetRules)
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ChatRequest is the body of POST /api/chatbot.
type ChatRequest struct {
	Input     string `json:"input"`
	SessionID string `json:"session_id,omitempty"`
}

// UnmarshalJSON accepts any JSON value as input. A string is used as is, null
// as empty input, and anything else as its JSON text, so {"input": 5} asks about "5".
func (c *ChatRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Input     json.RawMessage `json:"input"`
		SessionID string          `json:"session_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.SessionID = raw.SessionID
	c.Input = inputText(raw.Input)
	return nil
}

func inputText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return text
}

// Chat handles the POST /api/chatbot request.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	// Leave room for JSON quoting around the largest acceptable input.
	limit := int64(s.Sanitizer.Limit())*6 + 1024
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if int64(len(data)) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, runner.ErrInputTooLarge.Error())
		return
	}

	var body ChatRequest
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			s.Logger.Warn("Chat: Invalid request body", "err", err)
			return
		}
	}

	input, err := s.Sanitizer.Clean(body.Input)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, runner.ErrInputTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, fmt.Sprintf("Invalid input: %v", err))
		s.Logger.Warn("Chat: Input rejected", "err", err, "size", len(body.Input))
		return
	}

	reply, err := s.Engine.Turn(r.Context(), body.SessionID, input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not process the turn")
		s.Logger.Error("Turn failed", "session_id", body.SessionID, "err", err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// GetSession handles GET /api/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.Engine.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load session")
		s.Logger.Error("Session load failed", "session_id", id, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /api/sessions/{id}. Deleting an unknown session succeeds.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Engine.EndSession(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete session")
		s.Logger.Error("Session delete failed", "session_id", id, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRules handles GET /api/rules.
func (s *Server) GetRules(w http.ResponseWriter, r *http.Request) {
	table := s.Engine.Rules()
	writeJSON(w, http.StatusOK, map[string]any{
		"fallback": table.Fallback(),
		"states":   table.Describe(),
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "parley-http",
		"version": strings.TrimSpace(parley.Version),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
