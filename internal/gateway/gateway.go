// Package gateway serves the local HTTP entry point of talentmatch: the match
// forwarding route and a passthrough to the API backend.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/talentmatch/internal/backend"
	"github.com/spigell/talentmatch/internal/logger"
)

const (
	DefaultListen          = "127.0.0.1:3000"
	DefaultShutdownTimeout = 5 * time.Second
)

type Config struct {
	Listen string `mapstructure:"listen"`
	// MatcherURL is the base URL of the service behind /api/match.
	MatcherURL string `mapstructure:"matcher-url"`
	// APIURL is the base URL every other /api/* request is proxied to.
	APIURL          string        `mapstructure:"api-url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

type Server struct {
	cfg     Config
	logger  *zap.Logger
	matcher *backend.Client
	router  chi.Router
}

// New builds the gateway. Empty URLs fall back to the backend default.
func New(cfg *Config, log *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	s := &Server{cfg: *cfg, logger: logger.WithFields(log)}
	if s.cfg.Listen == "" {
		s.cfg.Listen = DefaultListen
	}
	if s.cfg.ShutdownTimeout <= 0 {
		s.cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	s.matcher = backend.New(s.logger, s.cfg.MatcherURL, 0)
	if s.cfg.APIURL == "" {
		s.cfg.APIURL = s.matcher.APIURL
	}

	target, err := url.Parse(s.cfg.APIURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", s.cfg.APIURL)
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Post("/api/match", s.handleMatch)
	r.Handle("/api/*", s.newProxy(target))

	s.router = r

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	return s.cfg.Listen
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}

	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts the server down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("gateway listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("matcher", s.matcher.APIURL),
			zap.String("api", s.cfg.APIURL),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down gateway")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
