package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"tokens", []string{"abc"},
		"parent_user_id", "u-42",
		"news_id", "n1",
		"dangling",
	})

	require.Len(t, out, 7)
	assert.Equal(t, "[REDACTED]", out[1])

	hashed, ok := out[3].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(hashed, "hash:"))
	assert.NotContains(t, hashed, "u-42")

	assert.Equal(t, "n1", out[5])
	assert.Equal(t, "dangling", out[6])
}

func TestHashValueStable(t *testing.T) {
	assert.Equal(t, hashValue("u-1"), hashValue("u-1"))
	assert.NotEqual(t, hashValue("u-1"), hashValue("u-2"))
	assert.Equal(t, "", hashValue(""))
}
