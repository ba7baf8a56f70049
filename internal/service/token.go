// Package service contains the business logic layer.
//
// This file holds the token helpers shared by the bot and invite services.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// ServiceTokenBytes is the entropy of raw bot and invite tokens.
const ServiceTokenBytes = 32

// TokenPrefixLength is how many leading hex characters are kept in clear
// for listings.
const TokenPrefixLength = 8

// generateToken creates a cryptographically secure random token.
//
// The token is generated using crypto/rand and returned as a hex-encoded
// string. This provides 256 bits of entropy (32 bytes * 8 bits/byte).
//
// Returns:
// - 64-character hex string representing 32 random bytes
// - Error if crypto/rand fails (extremely rare, indicates system issue)
func generateToken() (string, error) {
	bytes := make([]byte, ServiceTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// hashToken creates a SHA-256 hash of a raw token. Only hashes are stored;
// tokens are high-entropy random values, so a fast unsalted hash is
// adequate for lookup.
//
// Parameters:
// - token: The raw token (64-char hex string)
//
// Returns:
// - 64-character hex string representing the SHA-256 hash
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// tokenPrefix returns the identifying prefix of a raw token.
func tokenPrefix(token string) string {
	if len(token) < TokenPrefixLength {
		return token
	}
	return token[:TokenPrefixLength]
}
