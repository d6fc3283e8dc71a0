package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRToken(t *testing.T) {
	tok, err := NewQRToken()
	require.NoError(t, err)

	// uuid plus an 8-char random suffix, hyphen separated
	idx := strings.LastIndex(tok, "-")
	require.Greater(t, idx, 0)
	_, err = uuid.Parse(tok[:idx])
	assert.NoError(t, err)
	assert.Len(t, tok[idx+1:], 8)
}

func TestNewQRTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := NewQRToken()
		require.NoError(t, err)
		assert.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
}
