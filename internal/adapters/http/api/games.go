// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// GamesHandler serves the list of tracked games.
type GamesHandler struct {
	deps Dependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps Dependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleListGames handles GET /games requests.
func (h *GamesHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	games := h.deps.ActiveGames(r.Context())
	if games == nil {
		games = []GameStatus{}
	}
	writeJSON(w, http.StatusOK, games)
}
