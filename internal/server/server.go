// Package server exposes the translation pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/alexanderramin/ganttagent/internal/llm"
)

const (
	ServiceName = "Gantt Graph AI Agent Service"

	defaultMaxBodyBytes = 1 << 20
	shutdownTimeout     = 10 * time.Second

	badRequestMessage = "请求格式错误，请检查请求内容"
)

// Translator runs one request through the pipeline.
type Translator interface {
	Process(ctx context.Context, req agent.Request) agent.Result
}

// Options configures a Server.
type Options struct {
	Version      string
	LLM          llm.Config
	CORSOrigins  []string
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Server routes HTTP requests to the translation pipeline.
type Server struct {
	translator Translator
	opts       Options
	logger     *slog.Logger
	handler    http.Handler
}

// New creates a Server around translator.
func New(translator Translator, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		translator: translator,
		opts:       opts,
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/schema", s.handleSchema)
	s.handler = withCORS(opts.CORSOrigins, withRecover(logger, mux))
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server_started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logger.Info("server_stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

type llmStatus struct {
	Provider   string `json:"provider"`
	BaseURL    string `json:"base_url"`
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
}

type rootResponse struct {
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Status    string    `json:"status"`
	LLMConfig llmStatus `json:"llm_config"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Service: ServiceName,
		Version: s.opts.Version,
		Status:  "running",
		LLMConfig: llmStatus{
			Provider:   s.opts.LLM.Provider,
			BaseURL:    s.opts.LLM.EffectiveBaseURL(),
			Model:      s.opts.LLM.Model,
			Configured: s.opts.LLM.Configured(),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)

	var req agent.Request
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.logger.WarnContext(r.Context(), "chat_bad_request", "error", err.Error())
		writeJSON(w, status, agent.Result{
			Success: false,
			Message: badRequestMessage,
		})
		return
	}

	writeJSON(w, http.StatusOK, s.translator.Process(r.Context(), req))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(r.URL.Query().Get("type")) {
	case "", "result":
		data, err = agent.ResultSchema()
	case "request":
		data, err = agent.RequestSchema()
	default:
		http.Error(w, "type must be 'result' or 'request'", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
