// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store runs the application's queries against either engine. Queries are
// written with ? placeholders and rebound for the connected dialect.
type Store struct {
	db   *sql.DB
	bind int
}

func NewStore(conn *sql.DB, dialect string) *Store {
	bind := sqlx.QUESTION
	if dialect == DialectPostgres {
		bind = sqlx.DOLLAR
	}
	return &Store{db: conn, bind: bind}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) q(query string) string {
	return sqlx.Rebind(s.bind, query)
}

// utcPtr stores nil as NULL and everything else as a UTC instant.
func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func limitOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
