// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package results tallies closed elections. Results of a Scheduled or Active
// election are never disclosed.
package results
