// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// StreamHandler upgrades WebSocket subscriptions to a game's live feed.
type StreamHandler struct {
	streamer Streamer
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(streamer Streamer) *StreamHandler {
	return &StreamHandler{streamer: streamer}
}

// HandleStream handles GET /games/{id}/live requests.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	h.streamer.ServeWS(w, r, gameID)
}
