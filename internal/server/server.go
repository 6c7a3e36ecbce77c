// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rentflow/internal/common/config"
	"rentflow/internal/common/logger"
	"rentflow/internal/facade"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the workflow facade as a JSON API, plus health and
// metrics endpoints. Handlers stay thin; all rules live behind the facade.
type Server struct {
	httpServer *http.Server
	facade     *facade.Facade
	logger     logger.Logger
}

func New(cfg config.ServerConfig, f *facade.Facade, log logger.Logger) *Server {
	s := &Server{
		facade: f,
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/applications", s.handleSubmit)
		r.Route("/applications/{id}", func(r chi.Router) {
			r.Post("/accept", s.handleAccept)
			r.Post("/reject", s.handleReject)
			r.Post("/reset", s.handleReset)
		})
		r.Route("/properties/{propertyID}", func(r chi.Router) {
			r.Get("/applications", s.handleListByProperty)
			r.Post("/send-to-landlord", s.handleSendToLandlord)
			r.Post("/send-to-background-check", s.handleSendToBackgroundCheck)
			r.Post("/send-to-final-review", s.handleSendToFinalReview)
			r.Post("/finalize", s.handleFinalize)
		})
		r.Get("/landlords/{landlordID}/applications", s.handleListByLandlord)
		r.Get("/agents/{agentID}/applications", s.handleListByAgent)
		r.Get("/tenants/{tenantUserID}/applications", s.handleListByTenant)
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s
}

// Handler returns the underlying router, used by handler tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
