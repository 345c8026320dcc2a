// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote API server.

Quickly Vote runs timed elections. An election accepts votes only between
its start and end instants, each voter gets at most one vote per election,
and results stay sealed until the election has closed. Every vote attempt
and administrative action is written to an append-only audit log.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=votes.db SESSION_SALT=... go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -session-salt ...

Set ADMIN_EMAIL to bootstrap an administrator; its session token is logged
at startup. See package cliparse for every setting.

# Architecture

  - election: state resolution from the start/end window and a clock
  - ledger: vote casting with storage-enforced uniqueness
  - results: tallies for closed elections, optionally cached
  - audit: the audit recorder and its background queue
  - notify: vote confirmation mail
  - cache: Redis-backed results cache
  - db: schema and queries for SQLite and PostgreSQL
  - handlers, router, middleware: the HTTP surface
  - auth: session tokens
  - models: request/response and domain types
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
