package handlers

import (
	"errors"
	"net/http"

	"playlist-browser/internal/player"
)

// PlayResponse reports how a player launch ended.
type PlayResponse struct {
	Player  string         `json:"player"`
	URL     string         `json:"url"`
	Outcome player.Outcome `json:"outcome"`
	Error   string         `json:"error,omitempty"`
}

// Play launches the requested player with the decoded stream URL and
// blocks until the player exits.
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	playerID, ok := pathVar(r, "player")
	if !ok {
		writeJSONError(w, "Invalid player", http.StatusBadRequest)
		return
	}
	streamURL, ok := pathVar(r, "url")
	if !ok || streamURL == "" {
		writeJSONError(w, "Invalid stream URL", http.StatusBadRequest)
		return
	}

	outcome, err := h.launcher.Launch(playerID, streamURL)

	resp := PlayResponse{Player: playerID, URL: streamURL, Outcome: outcome}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = http.StatusInternalServerError
		if errors.Is(err, player.ErrUnknownPlayer) {
			status = http.StatusBadRequest
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, resp)
}
