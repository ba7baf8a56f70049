package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple name",
			in:   "Crystal Caverns",
			want: "crystal-caverns",
		},
		{
			name: "already a slug",
			in:   "crystal-caverns",
			want: "crystal-caverns",
		},
		{
			name: "diacritics are stripped",
			in:   "Café Über Lounge",
			want: "cafe-uber-lounge",
		},
		{
			name: "punctuation collapses to single hyphens",
			in:   "HQ -- West / Wing #3",
			want: "hq-west-wing-3",
		},
		{
			name: "leading and trailing separators trimmed",
			in:   "  ...Lobby!  ",
			want: "lobby",
		},
		{
			name: "nothing usable",
			in:   "!!!",
			want: "",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			if got != "" {
				assert.True(t, ValidSlug(got), "Slugify output should validate")
			}
		})
	}
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want bool
	}{
		{name: "plain", slug: "lobby", want: true},
		{name: "hyphenated", slug: "north-wing-2", want: true},
		{name: "empty", slug: "", want: false},
		{name: "uppercase", slug: "Lobby", want: false},
		{name: "leading hyphen", slug: "-lobby", want: false},
		{name: "trailing hyphen", slug: "lobby-", want: false},
		{name: "double hyphen", slug: "north--wing", want: false},
		{name: "spaces", slug: "north wing", want: false},
		{name: "unicode", slug: "café", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSlug(tt.slug))
		})
	}
}
