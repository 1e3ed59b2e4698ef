// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/live-poll/catalog"
	"github.com/danielhkuo/live-poll/middleware"
)

type PollHandler struct {
	catalog *catalog.Catalog
}

func NewPollHandler(c *catalog.Catalog) *PollHandler {
	return &PollHandler{catalog: c}
}

// GetPoll handles GET /poll
// Returns the static question catalog
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.catalog.Questions())
}
