// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
)

// GameStatus is the read shape returned by the game listing.
type GameStatus struct {
	GameID    string `json:"game_id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Status    string `json:"status"`
	Messages  int    `json:"messages"`
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// History returns the stored record for a game.
	History(ctx context.Context, gameID string) (*model.History, error)

	// ActiveGames lists the games currently being tracked.
	ActiveGames(ctx context.Context) []GameStatus
}

// Streamer upgrades a request to a WebSocket and streams a game's feed.
type Streamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, gameID string)
}

// Server wires HTTP routes for the commentary API.
type Server struct {
	healthHandler  *HealthHandler
	gamesHandler   *GamesHandler
	historyHandler *HistoryHandler
	streamHandler  *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, streamer Streamer) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		gamesHandler:   NewGamesHandler(deps),
		historyHandler: NewHistoryHandler(deps),
		streamHandler:  NewStreamHandler(streamer),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /games", MetricsMiddleware(s.gamesHandler.HandleListGames, "games"))
	mux.HandleFunc("GET /games/{id}/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("GET /games/{id}/live", s.streamHandler.HandleStream)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
