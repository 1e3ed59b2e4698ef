// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/live-poll/middleware"
	"github.com/danielhkuo/live-poll/realtime"
)

type LeaderboardHandler struct {
	coord *realtime.Coordinator
}

func NewLeaderboardHandler(coord *realtime.Coordinator) *LeaderboardHandler {
	return &LeaderboardHandler{coord: coord}
}

// GetLeaderboard handles GET /leaderboard
// Recomputes tallies from every stored vote on each call
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	tallies, err := h.coord.Tallies(r.Context())
	if err != nil {
		slog.Error("failed to compute leaderboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tallies)
}
