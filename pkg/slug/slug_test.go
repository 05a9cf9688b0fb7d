package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Fiction", "fiction"},
		{"hyphenated category", "Non-Fiction", "non-fiction"},
		{"self help", "Self-Help", "self-help"},
		{"spaces", "Science Fiction Classics", "science-fiction-classics"},
		{"accented author", "Gabriel García Márquez", "gabriel-garcia-marquez"},
		{"punctuation", "Hello,   World!", "hello-world"},
		{"leading and trailing junk", "  --Tech & Code--  ", "tech-code"},
		{"already a slug", "non-fiction", "non-fiction"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.in))
		})
	}
}

func TestGenerate_NoConsecutiveHyphens(t *testing.T) {
	got := Generate("a  -  b  -  c")
	assert.NotContains(t, got, "--")
	assert.Equal(t, "a-b-c", got)
}
