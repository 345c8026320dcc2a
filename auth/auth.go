// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid session token")

// sign returns the URL-safe HMAC of the voter id
func sign(voterID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(voterID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// GenerateSessionToken creates the bearer token for a voter.
// It is deterministic: "<voterID>.<mac>"
func GenerateSessionToken(voterID, salt string) string {
	return voterID + "." + sign(voterID, salt)
}

// ParseSessionToken verifies a bearer token and returns the voter id it names
func ParseSessionToken(token, salt string) (string, error) {
	i := strings.LastIndexByte(token, '.')
	if i <= 0 || i == len(token)-1 {
		return "", ErrInvalidToken
	}

	voterID, mac := token[:i], token[i+1:]
	if !hmac.Equal([]byte(mac), []byte(sign(voterID, salt))) {
		return "", ErrInvalidToken
	}
	return voterID, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits)
	return hex.EncodeToString(sum[:8])
}
