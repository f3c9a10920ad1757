package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-upi-lookup/internal/config"
)

// AliveText is the body of GET /, polled by uptime checks and the keep-alive worker.
const AliveText = "Bot running"

// Mounter attaches extra routes, e.g. the admin API.
type Mounter interface {
	Mount(r chi.Router)
}

// Server is the bot's public HTTP surface.
type Server struct {
	cfg     *config.Config
	webhook http.Handler
	admin   Mounter
	log     *zerolog.Logger
	server  *http.Server
}

// NewServer accepts a nil webhook (polling mode) and a nil admin (admin API disabled).
func NewServer(cfg *config.Config, webhook http.Handler, admin Mounter, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	return &Server{cfg: cfg, webhook: webhook, admin: admin, log: &l}
}

// Router builds the chi router with the middleware chain applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(AliveText))
	})
	r.Head("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// a full update queue must answer 503 before Telegram gives up on the delivery
	if s.webhook != nil {
		r.Method(http.MethodPost, s.cfg.Bot.WebhookPath, Chain(s.webhook, Timeout(s.cfg.HTTP.RequestTimeout)))
	}

	if s.admin != nil {
		r.Group(func(r chi.Router) {
			r.Use(Timeout(s.cfg.HTTP.RequestTimeout))
			s.admin.Mount(r)
		})
	}
	return r
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.HTTP.Port).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
