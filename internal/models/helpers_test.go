package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "walk", "walk"},
		{"title case", "Morning Walk", "morning-walk"},
		{"underscores", "lake_day_notes", "lake-day-notes"},
		{"punctuation stripped", "Coffee, Rain & Thoughts!", "coffee-rain-thoughts"},
		{"digits kept", "Run 5k v2.1", "run-5k-v21"},
		{"runs collapse", "hello   --  world", "hello-world"},
		{"edges trimmed", "  -Quiet Sunday- ", "quiet-sunday"},
		{"empty", "", ""},
		{"only symbols", "!@#$%", ""},
		{"accents dropped", "Café in Wien", "caf-in-wien"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyLimitsLength(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 40))
	assert.LessOrEqual(t, len(got), maxSlugLen)
	assert.False(t, strings.HasSuffix(got, "-"))
}
