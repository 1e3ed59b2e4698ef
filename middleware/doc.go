// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /leaderboard", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). The wrapper supports hijacking, so the websocket endpoint can
be wrapped too.

# CORS Middleware

Enable cross-origin requests from the frontend:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin)(mux),
	}

Only the configured origin is echoed back; "*" allows any origin. Methods
GET, POST and OPTIONS are allowed with the Content-Type and Authorization
headers. The
websocket handshake applies the same rule through OriginAllowed.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "")

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used to label observer sessions in the logs.
*/
package middleware
