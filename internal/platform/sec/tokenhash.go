// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// # Token Digests

// TokenHasher computes deterministic, peppered digests of raw refresh tokens.
//
// # Why a pepper and not a salt?
//
// Sessions are looked up BY the digest of the presented token, so the digest
// must be a pure function of the raw value. A per-record salt would make that
// lookup impossible; a process-wide secret pepper keeps the digest
// deterministic while still preventing an attacker with a database dump from
// reversing or forging entries.
type TokenHasher struct {
	pepper []byte
}

// NewTokenHasher constructs a [TokenHasher] from the configured pepper.
//
// # Fail Fast
//
// An empty pepper is a deployment mistake, not a per-call condition. The
// constructor rejects it so the process refuses to start instead of silently
// producing unkeyed digests.
func NewTokenHasher(pepper string) (*TokenHasher, error) {
	if strings.TrimSpace(pepper) == "" {
		return nil, errors.New("sec: token pepper must not be empty")
	}
	return &TokenHasher{pepper: []byte(pepper)}, nil
}

// Hash returns the lowercase hexadecimal HMAC-SHA256 digest of rawToken
// keyed with the pepper. The output is always 64 characters.
func (hasher *TokenHasher) Hash(rawToken string) string {
	mac := hmac.New(sha256.New, hasher.pepper)
	mac.Write([]byte(rawToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// # Random Tokens

// GenerateSecureToken returns a cryptographically random, URL-safe hex
// string of byteLength random bytes (the string is twice that length).
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}
