package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/api/handlers"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(a *App) *Server {
	searchHandler := handlers.NewSearchHandler(a.Search, a.Logger)
	bookHandler := handlers.NewBookHandler(a.Search, a.Queue, a.Logger)

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + a.Config.Port,
			Handler:           newRouter(a.Config.CorsOrigins, searchHandler, bookHandler),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: a.Logger,
	}
}

func newRouter(origins []string, searchHandler *handlers.SearchHandler, bookHandler *handlers.BookHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handlers.Health)

	r.Route("/api", func(api chi.Router) {
		api.Get("/search", searchHandler.Search)
		api.Post("/search", searchHandler.Search)
		api.Get("/books", bookHandler.ListBooks)
		api.Get("/books/lookup", bookHandler.GetBook)
		api.Post("/ingest", bookHandler.Ingest)
	})
	return r
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
