// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadDotEnv optionally seeds the environment from a .env file, then
ParseFlags returns a Config struct with all settings:

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type (sqlite or postgres)
	-read-d         Read replica URL used for results
	-redis          Redis URL for the results cache
	-session-salt   Session token salt
	-admin-email    Bootstrap admin email
	-log-level      debug, info, warn or error
	-log-format     text or json

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p (default 3318)
	DATABASE_URL      → -d (required)
	DATABASE_TYPE     → -t (default sqlite)
	READ_DATABASE_URL → -read-d
	REDIS_URL         → -redis
	SESSION_SALT      → -session-salt (required)
	ADMIN_EMAIL       → -admin-email
	LOG_LEVEL         → -log-level (default info)
	LOG_FORMAT        → -log-format (default text)

The following are environment only:

	RESULTS_CACHE_TTL   Go duration, 0 keeps cached results until evicted
	SMTP_HOST           Enables confirmation mail
	SMTP_PORT           Default 587
	SMTP_USERNAME
	SMTP_PASSWORD
	SMTP_FROM           Required when SMTP_HOST is set
	AUDIT_QUEUE_SIZE    Default 1024
	NOTIFY_QUEUE_SIZE   Default 256
	AUDIT_DETAIL_MAX    Default 1000 characters

CLI flags take precedence over environment variables, and variables already
in the environment take precedence over the .env file.
*/
package cliparse
