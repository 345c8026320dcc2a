// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request with method, path, status, remote and
duration_ms. Responses with a 5xx status are logged at error level.

# Sessions and Roles

Callers authenticate with "Authorization: Bearer <token>" where the token
comes from auth.GenerateSessionToken:

	sessions := middleware.NewSessions(store, salt, auditLog)
	mux.HandleFunc("POST /votes", sessions.RequireSession(h.CastVote))
	mux.HandleFunc("POST /elections", sessions.Authorize(h.Create, models.RoleAdmin))

RequireSession answers 401 for missing or invalid tokens and stores an
Identity in the request context (see IdentityFrom). RequireRole answers 403
and writes an AccessDenied audit entry.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-UTC-Offset.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Request Helpers

Pagination reads page/pageSize query parameters. ParseUTCOffset reads the
X-UTC-Offset header used to interpret naive timestamps.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Only ever stored hashed (auth.HashIP).
*/
package middleware
