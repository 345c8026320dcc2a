// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session token and hashing utilities.

# Session Tokens

Session tokens carry the voter id and an HMAC-SHA256 of it:

	token := auth.GenerateSessionToken(voterID, salt)
	voterID, err := auth.ParseSessionToken(token, salt)

The MAC is URL-safe base64 encoded without padding. Since it's deterministic,
the same voter ID and salt always produce the same token. This allows
validation without storing the token in the database. Rotating the salt
invalidates every issued token.

# IP Hashing

Client IPs are never written to the audit log in clear.

	hash := auth.HashIP(ip, salt)

Returns the first 16 hex chars of an HMAC-SHA256.
*/
package auth
