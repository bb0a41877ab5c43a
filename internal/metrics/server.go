package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"uptime-reporter/internal/config"
	"uptime-reporter/internal/interfaces"
)

// Server exposes the process's own metrics. It is disabled when no listen
// address is configured.
type Server struct {
	addr   string
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(cfg *config.Config, gatherer prometheus.Gatherer, health interfaces.HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		addr: cfg.Metrics.Listen,
		srv: &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           NewRouter(gatherer, health),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With(zap.String("component", "metrics-server")),
	}
}

func NewRouter(gatherer prometheus.Gatherer, health interfaces.HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if health != nil && !health.IsHealthy() {
			http.Error(w, "scheduler stopped", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) Enabled() bool {
	return s.addr != ""
}

func (s *Server) Start(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.logger.Info("metrics server listening", zap.String("addr", l.Addr().String()))

	go func() {
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func registerServerHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}
