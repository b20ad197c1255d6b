package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "<p>hello</p>", "<p>hello</p>"},
		{"fenced", "```html\n<p>hello</p>\n```", "<p>hello</p>"},
		{"fenced no language", "```\n[\"a\",\"b\"]\n```", "[\"a\",\"b\"]"},
		{"whitespace", "  \n<p>x</p>\n ", "<p>x</p>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripCodeFence(tc.in))
		})
	}
}

func TestTrimText(t *testing.T) {
	assert.Equal(t, "short", trimText("short", 100))
	assert.Equal(t, "abc", trimText("abcdef", 3))
	// Rune-aware, not byte-aware.
	assert.Equal(t, "日本", trimText("日本語テキスト", 2))
}
