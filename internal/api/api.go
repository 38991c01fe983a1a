// Package api serves a small read-only HTTP view of what the responder reports.
package api

import (
	"net/http"

	"github.com/woozymasta/a2sim/internal/a2s"
	"github.com/woozymasta/a2sim/internal/models"
)

// RosterSource provides the current simulated players.
type RosterSource interface {
	Players() []a2s.Player
}

// StatsSource provides collected query statistics.
type StatsSource interface {
	Stats() ([]models.ClientStat, error)
}

// Server holds the data exposed over HTTP.
type Server struct {
	// info and rules are the static data also served over A2S.
	info  *a2s.ServerInfo
	rules a2s.Rules

	// roster is read on every /api/players request.
	roster RosterSource

	// stats is nil when statistics are disabled.
	stats StatsSource

	// authToken is the bearer token required by every /api endpoint except version.
	authToken string
}

// New creates the status API server.
func New(info *a2s.ServerInfo, rules a2s.Rules, roster RosterSource, stats StatsSource, authToken string) *Server {
	return &Server{
		info:      info,
		rules:     rules,
		roster:    roster,
		stats:     stats,
		authToken: authToken,
	}
}

// Handler configures the HTTP routes and returns the main handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/info", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleInfo)))
	mux.Handle("GET /api/rules", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleRules)))
	mux.Handle("GET /api/players", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handlePlayers)))
	mux.Handle("GET /api/stats", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleStats)))
	mux.Handle("GET /api/version", http.HandlerFunc(s.handleVersion))

	return LoggingMiddleware(mux)
}
