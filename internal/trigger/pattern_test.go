package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"document", "news/{newsId}", false},
		{"nested", "courses/{courseId}/modules/{moduleId}/contentItems/{contentId}", false},
		{"collection", "news", true},
		{"odd nested", "news/{newsId}/comments", true},
		{"empty", "", true},
		{"duplicate wildcard", "a/{x}/b/{x}", true},
		{"empty wildcard", "a/{}", true},
		{"malformed", "a/{x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePattern(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPatternMatch(t *testing.T) {
	p := MustPattern("news/{newsId}/comments/{commentId}")

	params, ok := p.Match("news/n1/comments/c9")
	require.True(t, ok)
	assert.Equal(t, Params{"newsId": "n1", "commentId": "c9"}, params)

	_, ok = p.Match("news/n1")
	assert.False(t, ok)
	_, ok = p.Match("news/n1/replies/c9")
	assert.False(t, ok)
	_, ok = p.Match("news/n1/comments/c9/likes/l1")
	assert.False(t, ok)
}

func TestMustPatternPanics(t *testing.T) {
	assert.Panics(t, func() { MustPattern("news") })
}
