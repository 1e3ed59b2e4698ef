// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/danielhkuo/live-poll/catalog"
	"github.com/danielhkuo/live-poll/cliparse"
	"github.com/danielhkuo/live-poll/middleware"
	"github.com/danielhkuo/live-poll/models"
	"github.com/danielhkuo/live-poll/realtime"
)

// Inbound frames are tiny; anything bigger is rejected
const maxFrameBytes = 4096

// Client-visible messages
const (
	msgVoteNotRecorded    = "vote not recorded"
	msgLeaderboardOffline = "leaderboard unavailable"
	msgFrameTooLarge      = "frame too large"
)

type SocketHandler struct {
	coord   *realtime.Coordinator
	catalog *catalog.Catalog
	cfg     cliparse.Config
	server  websocket.Server
}

func NewSocketHandler(coord *realtime.Coordinator, c *catalog.Catalog, cfg cliparse.Config) *SocketHandler {
	h := &SocketHandler{coord: coord, catalog: c, cfg: cfg}
	h.server = websocket.Server{
		Handshake: h.handshake,
		Handler:   h.serve,
	}
	return h
}

// Connect handles GET /ws
// Upgrades to a websocket and keeps the observer subscribed until it leaves
func (h *SocketHandler) Connect(w http.ResponseWriter, r *http.Request) {
	h.server.ServeHTTP(w, r)
}

// handshake applies the CORS origin rule to the upgrade request
func (h *SocketHandler) handshake(config *websocket.Config, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if !middleware.OriginAllowed(h.cfg.AllowedOrigin, origin) {
		slog.Warn("websocket origin rejected", "origin", origin, "remote", r.RemoteAddr)
		return fmt.Errorf("origin %q not allowed", origin)
	}
	return nil
}

func (h *SocketHandler) serve(ws *websocket.Conn) {
	ws.MaxPayloadBytes = maxFrameBytes

	r := ws.Request()
	ctx := r.Context()

	session, err := h.coord.Join(ctx, middleware.GetClientIP(r))
	if err != nil {
		slog.Error("failed to load leaderboard for new observer", "error", err)
		h.replyError(session, http.StatusInternalServerError, msgLeaderboardOffline)
	}
	defer h.coord.Leave(session)

	// Writer: the only goroutine that sends on ws
	go func() {
		err := session.Run(func(frame []byte) error {
			return websocket.Message.Send(ws, string(frame))
		})
		if err != nil {
			slog.Debug("observer write failed", "session_id", session.ID, "error", err)
		}
		// Unblocks the reader below
		ws.Close()
	}()

	// Reader
	for {
		var msg string
		err := websocket.Message.Receive(ws, &msg)
		if errors.Is(err, websocket.ErrFrameTooLarge) {
			h.replyError(session, http.StatusBadRequest, msgFrameTooLarge)
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("observer read ended", "session_id", session.ID, "error", err)
			}
			return
		}

		h.handleFrame(ctx, session, []byte(msg))
	}
}

func (h *SocketHandler) handleFrame(ctx context.Context, session *realtime.Session, raw []byte) {
	var in models.InboundEvent
	if err := json.Unmarshal(raw, &in); err != nil {
		h.replyError(session, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrMalformedPayload, err).Error())
		return
	}

	switch in.Event {
	case models.EventSubmitResponse:
		sub, err := DecodeSubmission(in.Data, h.catalog, h.cfg.StrictCatalog)
		if err != nil {
			slog.Warn("submission rejected", "session_id", session.ID, "error", err)
			h.replyError(session, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := h.coord.Submit(ctx, sub.QuestionID, sub.SelectedOption); err != nil {
			h.replyError(session, http.StatusInternalServerError, msgVoteNotRecorded)
		}

	default:
		h.replyError(session, http.StatusBadRequest, fmt.Errorf("%w: %q", ErrUnknownEvent, in.Event).Error())
	}
}

// replyError sends an error frame to one observer only
func (h *SocketHandler) replyError(session *realtime.Session, statusCode int, message string) {
	if session == nil {
		return
	}

	frame, err := realtime.EncodeEvent(models.EventError, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
	if err != nil {
		slog.Error("failed to encode error frame", "error", err)
		return
	}

	if err := session.Reply(frame); err != nil {
		slog.Debug("error reply dropped", "session_id", session.ID, "error", err)
	}
}
