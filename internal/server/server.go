// Package server provides the HTTP handlers and routing for the figma-mcp
// server.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"figma-mcp/internal/figma"
)

const (
	serverName    = "figma-mcp"
	serverVersion = "1.0.0"
)

// Backend is the design-file API surface the tool handlers call into.
type Backend interface {
	File(ctx context.Context, fileKey string) (json.RawMessage, error)
	ImageURLs(ctx context.Context, fileKey, nodeID, format string, scale float64) (map[string]string, error)
}

// Config contains server configuration values such as port, auth token, and
// the Figma credential.
type Config struct {
	Port         string
	Token        string // optional bearer token guarding /mcp
	FigmaToken   string
	FigmaBaseURL string        // empty selects the public Figma API
	PingInterval time.Duration // SSE keep-alive period; defaults to 30s
}

// Server contains the configured router, backend client, and tool registry.
type Server struct {
	cfg        Config
	router     *chi.Mux
	httpClient *http.Client
	backend    Backend
	tools      map[string]tool
	toolOrder  []string
}

// New constructs a Server with middleware, routes, and the tool registry
// configured.
func New(cfg Config) *Server {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	s := &Server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	s.backend = figma.New(cfg.FigmaBaseURL, cfg.FigmaToken, s.httpClient)
	s.registerTools()

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLog)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.cors)

	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/mcp", s.handleStream)
		// The SSE route stays outside the timeout: streams are long-lived.
		r.With(middleware.Timeout(60 * time.Second)).Post("/mcp", s.handleRPC)
	})

	s.router.NotFound(s.handleStatus)
	s.router.MethodNotAllowed(s.handleStatus)

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// cors stamps the permissive cross-origin headers on every response and
// answers preflight requests directly.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		want := "Bearer " + s.cfg.Token
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLog records one structured line per request and feeds the request
// counter.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports server identity, credential presence, and the
// supported methods for any request outside the MCP surface.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		OK:      true,
		Server:  serverName,
		Env:     s.cfg.FigmaToken != "",
		Methods: []string{"GET", "POST", "OPTIONS"},
	})
}
