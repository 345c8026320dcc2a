// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{Store: store, Ledger: l, ...})

# Endpoints

Public:

	GET /health
	GET /

Any session ("Authorization: Bearer <token>"):

	POST /votes                    - Cast a vote
	GET  /elections                - Paginated listing with computed status
	GET  /elections/{id}           - One election
	GET  /elections/{id}/candidates
	GET  /elections/{id}/results   - Closed elections only
	GET  /voters/me

Admin:

	POST   /elections
	PUT    /elections/{id}
	DELETE /elections/{id}
	POST   /elections/{id}/candidates
	POST   /voters                 - Returns the new voter's token

Admin or auditor:

	GET /audit-logs
	GET /audit-logs/user/{id}
	GET /audit-logs/by-action?action=

Every route except /health and / is wrapped in middleware.WithLogging.
*/
package router
