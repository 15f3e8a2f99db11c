package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomToken(t *testing.T) {
	for _, length := range []int{1, 16, 32, 33, 64} {
		token := GenerateRandomToken(length)
		assert.Len(t, token, length)
		_, err := hex.DecodeString(token + token) // doubled so odd lengths decode
		assert.NoError(t, err)
	}
}

func TestGenerateRandomToken_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		token := GenerateRandomToken(32)
		require.False(t, seen[token], "token repeated")
		seen[token] = true
	}
}
