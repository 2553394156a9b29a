// Package httpapi expone el recomendador por HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/ports"
	"github.com/alejandrodnm/fuelpricer/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 30 * time.Second
)

// Config agrupa las dependencias del servidor. Storage es opcional.
type Config struct {
	Addr           string
	AllowedOrigins []string
	ModelName      string
	Service        *pricing.Service
	Storage        ports.HistoryStorage
}

// Server es el servidor HTTP del recomendador.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	service   *pricing.Service
	storage   ports.HistoryStorage
	modelName string
	started   time.Time
}

// New construye el servidor con middleware y rutas.
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		service:   cfg.Service,
		storage:   cfg.Storage,
		modelName: cfg.ModelName,
		started:   time.Now(),
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(loggingMiddleware)
	s.router.Use(middleware.Timeout(requestTimeout))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/recommendations", s.handleRecommend)
		r.Get("/history", s.handleHistory)
		r.Get("/history.csv", s.handleHistoryCSV)
	})
}

// Handler devuelve el router; lo usan los tests con httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start bloquea sirviendo peticiones hasta Shutdown.
func (s *Server) Start() error {
	slog.Info("http server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown espera a que terminen las peticiones en curso.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
