package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"smartexpense/internal/config"
	"smartexpense/internal/database"
	"smartexpense/internal/middlewares"
	"smartexpense/internal/repositories"
	"smartexpense/internal/services"
)

type Server struct {
	port           int
	frontendOrigin string
	httpServer     *http.Server
	db             database.Service
	expenseService services.ExpenseService
	limiter        *middlewares.RateLimiter
}

// NewServer wires the API on top of an already prepared store connection.
func NewServer(cfg *config.Config, db database.Service) *Server {
	expenseRepo := repositories.NewExpenseRepository(db)

	s := &Server{
		port:           cfg.Port,
		frontendOrigin: cfg.FrontendOrigin,
		db:             db,
		expenseService: services.NewExpenseService(expenseRepo),
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Str("frontend_origin", s.frontendOrigin).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.limiter != nil {
		go s.limiter.CleanupVisitors(ctx)
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close document store connection")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
