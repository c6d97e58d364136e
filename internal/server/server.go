// Package server exposes scan results, fair-value tools and the bet ledger
// over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/ledger"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/oddsapi"
	"github.com/yourusername/edge-finder/internal/scanner"
)

// SportsProvider lists the sports the odds provider covers.
type SportsProvider interface {
	Sports(ctx context.Context) ([]oddsapi.Sport, error)
}

// Server is the HTTP API. The ledger is optional; ledger routes answer 503
// when no database is configured.
type Server struct {
	cfg     *config.Config
	scanner *scanner.Service
	ledger  *ledger.Service
	sports  SportsProvider
	log     *logrus.Logger

	httpServer *http.Server

	mu       sync.RWMutex
	snapshot []*scanner.Result
}

// New creates the API server. ledgerSvc may be nil.
func New(cfg *config.Config, scanSvc *scanner.Service, ledgerSvc *ledger.Service,
	sports SportsProvider, log *logrus.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		scanner: scanSvc,
		ledger:  ledgerSvc,
		sports:  sports,
		log:     log,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	return s
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if len(s.cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Server.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/bets", s.handleGetBets)
		r.Get("/props", s.handleGetProps)
		r.Get("/arbitrage", s.handleGetArbitrage)
		r.Get("/middles", s.handleGetMiddles)
		r.Get("/devig", s.handleDevig)
		r.Get("/sports", s.handleGetSports)
		r.Post("/kelly", s.handleKelly)

		r.Route("/ledger", func(r chi.Router) {
			r.Use(s.requireLedger)
			r.Post("/bets", s.handleCreateLedgerBet)
			r.Get("/bets", s.handleListLedgerBets)
			r.Post("/bets/{id}/settle", s.handleSettleLedgerBet)
			r.Delete("/bets/{id}", s.handleDeleteLedgerBet)
			r.Get("/stats", s.handleLedgerStats)
		})
	})

	return r
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// SetSnapshot stores the latest scheduled scan so read endpoints can serve
// without spending provider quota. Wired as the scheduler's results callback.
func (s *Server) SetSnapshot(results []*scanner.Result) {
	s.mu.Lock()
	s.snapshot = results
	s.mu.Unlock()
}

// results returns the stored snapshot, or runs a live scan when either no
// snapshot exists or the caller names specific sports.
func (s *Server) results(ctx context.Context, requested []string) ([]*scanner.Result, error) {
	if len(requested) == 0 {
		s.mu.RLock()
		snapshot := s.snapshot
		s.mu.RUnlock()
		if snapshot != nil {
			return snapshot, nil
		}
		requested = s.configuredSports()
	}
	return s.scanner.Scan(ctx, requested, nil)
}

func (s *Server) configuredSports() []string {
	sports := make([]string, 0, len(s.cfg.Sports.Keys))
	for name := range s.cfg.Sports.Keys {
		sports = append(sports, name)
	}
	sort.Strings(sports)
	return sports
}
