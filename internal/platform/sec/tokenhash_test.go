// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercata/mercata/internal/platform/sec"
)

/*
TestTokenHasher_Deterministic verifies that the same input always yields
the same digest (required for lookup-by-hash).
*/
func TestTokenHasher_Deterministic(t *testing.T) {
	hasher, err := sec.NewTokenHasher("unit-test-pepper")
	require.NoError(t, err)

	first := hasher.Hash("raw-refresh-token")
	second := hasher.Hash("raw-refresh-token")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "HMAC-SHA256 hex digest must be 64 characters")
}

/*
TestTokenHasher_DistinctInputs verifies that different tokens produce
different digests.
*/
func TestTokenHasher_DistinctInputs(t *testing.T) {
	hasher, err := sec.NewTokenHasher("unit-test-pepper")
	require.NoError(t, err)

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"different_tokens", "token-one", "token-two"},
		{"prefix_token", "token", "token-extended"},
		{"empty_vs_value", "", "token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, hasher.Hash(tt.a), hasher.Hash(tt.b))
		})
	}
}

/*
TestTokenHasher_PepperBindsDigest verifies that the digest depends on
the configured pepper, not just the raw token.
*/
func TestTokenHasher_PepperBindsDigest(t *testing.T) {
	first, err := sec.NewTokenHasher("pepper-one")
	require.NoError(t, err)

	second, err := sec.NewTokenHasher("pepper-two")
	require.NoError(t, err)

	assert.NotEqual(t, first.Hash("same-token"), second.Hash("same-token"))
}

/*
TestNewTokenHasher_RejectsEmptyPepper verifies the fail-fast contract:
a missing pepper must be caught at construction, never per call.
*/
func TestNewTokenHasher_RejectsEmptyPepper(t *testing.T) {
	tests := []struct {
		name   string
		pepper string
	}{
		{"empty", ""},
		{"whitespace_only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher, err := sec.NewTokenHasher(tt.pepper)
			require.Error(t, err)
			assert.Nil(t, hasher)
		})
	}
}

/*
TestGenerateSecureToken verifies the random token generator's length and
basic uniqueness properties.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.Len(t, first, 64, "32 random bytes hex-encode to 64 characters")
	assert.NotEqual(t, first, second)
}
