package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/a2sim/internal/a2s"
	"github.com/woozymasta/a2sim/internal/models"
	"github.com/woozymasta/a2sim/internal/vars"
)

// handleInfo returns the static A2S_INFO data.
func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

// handleRules returns the rule set in wire order.
func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	rules := s.rules
	if rules == nil {
		rules = a2s.Rules{}
	}

	writeJSON(w, http.StatusOK, rules)
}

// handlePlayers returns the roster exactly as the next A2S_PLAYER response would.
func (s *Server) handlePlayers(w http.ResponseWriter, _ *http.Request) {
	players := s.roster.Players()
	if players == nil {
		players = []a2s.Player{}
	}

	writeJSON(w, http.StatusOK, players)
}

// handleStats returns per client query counters.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.stats == nil {
		http.Error(w, "Statistics disabled", http.StatusNotFound)
		return
	}

	stats, err := s.stats.Stats()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch statistics")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if stats == nil {
		stats = []models.ClientStat{}
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleVersion returns build information, no auth required.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vars.Info())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
