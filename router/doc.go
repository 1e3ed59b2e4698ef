// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the live poll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(coord, cat, cfg)

# Endpoints

	GET /health      - Liveness probe
	GET /poll        - Question catalog
	GET /leaderboard - Current tallies
	GET /ws          - Websocket: submit votes, receive leaderboard updates
	GET /            - Banner

Everything except /health and / is wrapped with middleware.WithLogging.
CORS is applied around the whole mux by the caller:

	handler := middleware.CORS(cfg.AllowedOrigin)(mux)
*/
package router
