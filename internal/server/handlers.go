package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yourusername/edge-finder/internal/devig"
	"github.com/yourusername/edge-finder/internal/kelly"
	"github.com/yourusername/edge-finder/internal/ledger"
	"github.com/yourusername/edge-finder/internal/models"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   s.cfg.App.Name,
		"ledger":    s.ledger != nil,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleGetBets(w http.ResponseWriter, r *http.Request) {
	results, err := s.results(r.Context(), sportsParam(r))
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "scan failed", err)
		return
	}

	var bets []*models.BetRecommendation
	for _, res := range results {
		bets = append(bets, res.EVBets...)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bets":  bets,
		"count": len(bets),
	})
}

// handleGetProps serves only the player-prop subset of +EV recommendations.
func (s *Server) handleGetProps(w http.ResponseWriter, r *http.Request) {
	results, err := s.results(r.Context(), sportsParam(r))
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "scan failed", err)
		return
	}

	var props []*models.BetRecommendation
	for _, res := range results {
		for _, bet := range res.EVBets {
			if bet.Market != nil && bet.Market.MarketType == models.MarketTypePlayerProp {
				props = append(props, bet)
			}
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"props": props,
		"count": len(props),
	})
}

func (s *Server) handleGetArbitrage(w http.ResponseWriter, r *http.Request) {
	results, err := s.results(r.Context(), sportsParam(r))
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "scan failed", err)
		return
	}

	var arbs []*models.ArbitrageOpportunity
	for _, res := range results {
		arbs = append(arbs, res.Arbs...)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"arbitrage": arbs,
		"count":     len(arbs),
	})
}

func (s *Server) handleGetMiddles(w http.ResponseWriter, r *http.Request) {
	results, err := s.results(r.Context(), sportsParam(r))
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "scan failed", err)
		return
	}

	var middles []*models.Middle
	for _, res := range results {
		middles = append(middles, res.Middles...)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"middles": middles,
		"count":   len(middles),
	})
}

// handleDevig strips the vig from a comma-separated list of American prices.
// GET /api/v1/devig?odds=-110,-110&method=shin
func (s *Server) handleDevig(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("odds")
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, "odds query parameter is required", nil)
		return
	}

	var implied []float64
	var american []int
	for _, part := range strings.Split(raw, ",") {
		price, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || price == 0 {
			s.respondError(w, http.StatusBadRequest, "odds must be non-zero American prices", err)
			return
		}
		american = append(american, price)
		implied = append(implied, 1.0/models.AmericanToDecimal(price))
	}

	method := devig.Method(r.URL.Query().Get("method"))
	if method == "" {
		method = devig.DefaultMethod
	}

	result, err := devig.Devig(implied, method)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "de-vig failed", err)
		return
	}

	legs := make([]map[string]interface{}, len(result.FairProbs))
	for i, p := range result.FairProbs {
		legs[i] = map[string]interface{}{
			"american":      american[i],
			"implied_prob":  implied[i],
			"fair_prob":     p,
			"fair_american": models.ProbToAmerican(p),
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"method":      result.Method,
		"vig_removed": result.VigRemoved,
		"legs":        legs,
	})
}

func (s *Server) handleGetSports(w http.ResponseWriter, r *http.Request) {
	sports, err := s.sports.Sports(r.Context())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "failed to list sports", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sports": sports,
		"count":  len(sports),
	})
}

type kellyRequest struct {
	WinProb       float64 `json:"win_prob"`
	AmericanOdds  int     `json:"american_odds"`
	Bankroll      float64 `json:"bankroll,omitempty"`
	Fraction      float64 `json:"fraction,omitempty"`
	MaxBetPercent float64 `json:"max_bet_percent,omitempty"`
}

func (s *Server) handleKelly(w http.ResponseWriter, r *http.Request) {
	var req kellyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.WinProb <= 0 || req.WinProb >= 1 {
		s.respondError(w, http.StatusBadRequest, "win_prob must be between 0 and 1 exclusive", nil)
		return
	}
	if req.AmericanOdds == 0 {
		s.respondError(w, http.StatusBadRequest, "american_odds must be non-zero", nil)
		return
	}

	if req.Bankroll <= 0 {
		req.Bankroll = s.cfg.Betting.Bankroll
	}
	if req.Fraction <= 0 {
		req.Fraction = s.cfg.Betting.KellyFraction
	}
	if req.MaxBetPercent <= 0 {
		req.MaxBetPercent = s.cfg.Betting.MaxBetPercent
	}

	result := kelly.Criterion(req.WinProb, models.AmericanToDecimal(req.AmericanOdds),
		req.Bankroll, req.Fraction, req.MaxBetPercent)
	respondJSON(w, http.StatusOK, result)
}

type createBetRequest struct {
	Event        string  `json:"event"`
	Selection    string  `json:"selection"`
	AmericanOdds int     `json:"american_odds"`
	WinProb      float64 `json:"win_prob"`
	Stake        float64 `json:"stake,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

func (s *Server) handleCreateLedgerBet(w http.ResponseWriter, r *http.Request) {
	var req createBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Event == "" || req.Selection == "" {
		s.respondError(w, http.StatusBadRequest, "event and selection are required", nil)
		return
	}

	bet, err := s.ledger.CreateBet(r.Context(), ledger.CreateParams{
		Event:        req.Event,
		Selection:    req.Selection,
		AmericanOdds: req.AmericanOdds,
		WinProb:      req.WinProb,
		Stake:        req.Stake,
		Notes:        req.Notes,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ledger.ErrInvalidWinProb) || errors.Is(err, models.ErrZeroAmericanOdds) {
			status = http.StatusBadRequest
		}
		s.respondError(w, status, "failed to record bet", err)
		return
	}

	respondJSON(w, http.StatusCreated, bet)
}

func (s *Server) handleListLedgerBets(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	bets, err := s.ledger.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list bets", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bets":  bets,
		"count": len(bets),
	})
}

type settleRequest struct {
	Status models.BetStatus `json:"status"`
}

func (s *Server) handleSettleLedgerBet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid bet id", err)
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	bet, err := s.ledger.Settle(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "bet not found", err)
		case errors.Is(err, ledger.ErrAlreadySettled), errors.Is(err, ledger.ErrInvalidSettle):
			s.respondError(w, http.StatusConflict, "cannot settle bet", err)
		default:
			s.respondError(w, http.StatusInternalServerError, "failed to settle bet", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, bet)
}

func (s *Server) handleDeleteLedgerBet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid bet id", err)
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "bet not found", err)
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to delete bet", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLedgerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.Stats(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to compute stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// requireLedger rejects ledger routes when no database is configured.
func (s *Server) requireLedger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.ledger == nil {
			s.respondError(w, http.StatusServiceUnavailable, "ledger is not configured", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sportsParam(r *http.Request) []string {
	raw := r.URL.Query().Get("sports")
	if raw == "" {
		return nil
	}
	var sports []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			sports = append(sports, part)
		}
	}
	return sports
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		s.log.WithError(err).Warn(message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
