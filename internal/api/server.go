package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/emotionflow/internal/labels"
	"github.com/spacesedan/emotionflow/internal/monitoring"
)

// Predictor is the single operation the transport needs from the core.
type Predictor interface {
	Predict(ctx context.Context, text string) (labels.Prediction, error)
}

type Options struct {
	Lifecycle *monitoring.Lifecycle
	// Healthy reflects the classifier health probe. Nil means always healthy.
	Healthy  *atomic.Bool
	Metrics  *monitoring.Metrics
	Gatherer prometheus.Gatherer
	Labels   labels.Set
	Polarity bool
}

type Server struct {
	engine    *gin.Engine
	predictor Predictor
	opts      Options

	mu   sync.Mutex
	http *http.Server
}

func NewServer(predictor Predictor, opts Options) *Server {
	if opts.Lifecycle == nil {
		opts.Lifecycle = &monitoring.Lifecycle{}
	}

	engine := gin.New()
	engine.Use(requestID(), accessLog("/healthz", "/readyz", "/metrics"), observe(opts.Metrics), recovery())

	s := &Server{
		engine:    engine,
		predictor: predictor,
		opts:      opts,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.home)
	s.engine.POST("/predict", s.predict)
	s.engine.GET("/healthz", s.healthz)
	s.engine.GET("/readyz", s.readyz)

	if s.opts.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine.Handler()
}

// Start blocks serving addr until Shutdown is called.
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	slog.Info("[Server] Listening", slog.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	slog.Info("[Server] Shutting down HTTP server...")
	return srv.Shutdown(ctx)
}
