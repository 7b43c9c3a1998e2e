package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int
		want    string
	}{
		{
			name:    "short content unchanged",
			content: "Привіт!",
			limit:   80,
			want:    "Привіт!",
		},
		{
			name:    "content at limit unchanged",
			content: strings.Repeat("a", 80),
			limit:   80,
			want:    strings.Repeat("a", 80),
		},
		{
			name:    "long ascii content truncated with ellipsis",
			content: strings.Repeat("a", 100),
			limit:   80,
			want:    strings.Repeat("a", 80) + "...",
		},
		{
			name:    "cyrillic content truncated on rune boundary",
			content: strings.Repeat("буква", 30),
			limit:   80,
			want:    strings.Repeat("буква", 16) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncatePreview(tt.content, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncatePreviewNeverSplitsRune(t *testing.T) {
	// Кирилиця займає два байти на символ - байтовий зріз посеред руни
	// давав би некоректний UTF-8 у превʼю сповіщення
	content := strings.Repeat("повідомлення", 20)
	for limit := 1; limit <= 100; limit++ {
		got := truncatePreview(content, limit)
		assert.True(t, utf8.ValidString(got), "limit %d", limit)
	}
}
