// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// Deps are the services the routes are built from.
type Deps struct {
	Store   *db.Store
	Ledger  handlers.VoteCaster
	Results handlers.ResultsReader
	Audit   audit.Logger
	Clock   election.Clock
	Salt    string
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessions := middleware.NewSessions(d.Store, d.Salt, d.Audit)
	votingHandler := handlers.NewVotingHandler(d.Ledger)
	resultsHandler := handlers.NewResultsHandler(d.Results, d.Audit)
	electionHandler := handlers.NewElectionHandler(d.Store, d.Clock, d.Audit)
	voterHandler := handlers.NewVoterHandler(d.Store, d.Clock, d.Audit, d.Salt)
	auditHandler := handlers.NewAuditHandler(d.Store)

	session := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.RequireSession(h))
	}
	role := func(h http.HandlerFunc, roles ...string) http.HandlerFunc {
		return middleware.WithLogging(sessions.Authorize(h, roles...))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.DB().PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voting
	mux.HandleFunc("POST /votes", session(votingHandler.CastVote))

	// Elections (any session)
	mux.HandleFunc("GET /elections", session(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", session(electionHandler.GetElection))
	mux.HandleFunc("GET /elections/{id}/candidates", session(electionHandler.ListCandidates))
	mux.HandleFunc("GET /elections/{id}/results", session(resultsHandler.GetResults))

	// Election management (admin)
	mux.HandleFunc("POST /elections", role(electionHandler.CreateElection, models.RoleAdmin))
	mux.HandleFunc("PUT /elections/{id}", role(electionHandler.UpdateElection, models.RoleAdmin))
	mux.HandleFunc("DELETE /elections/{id}", role(electionHandler.DeleteElection, models.RoleAdmin))
	mux.HandleFunc("POST /elections/{id}/candidates", role(electionHandler.CreateCandidate, models.RoleAdmin))

	// Voters
	mux.HandleFunc("POST /voters", role(voterHandler.RegisterVoter, models.RoleAdmin))
	mux.HandleFunc("GET /voters/me", session(voterHandler.Me))

	// Audit log (admin, auditor)
	mux.HandleFunc("GET /audit-logs", role(auditHandler.ListAll, models.RoleAdmin, models.RoleAuditor))
	mux.HandleFunc("GET /audit-logs/user/{id}", role(auditHandler.ListByUser, models.RoleAdmin, models.RoleAuditor))
	mux.HandleFunc("GET /audit-logs/by-action", role(auditHandler.ListByAction, models.RoleAdmin, models.RoleAuditor))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-vote API v1"))
	})

	return mux
}
