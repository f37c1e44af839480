package atlas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "postal code and stop word", raw: "Kita-ku (123) Municipality", expected: "Kita-ku"},
		{name: "leading zip", raw: "75001 Paris", expected: "Paris"},
		{name: "prefecture", raw: "Osaka Prefecture", expected: "Osaka"},
		{name: "district", raw: "Lahore District", expected: "Lahore"},
		{name: "parenthesized word", raw: "Springfield (IL)", expected: "Springfield"},
		{name: "extra whitespace", raw: "  New   York ", expected: "New York"},
		{name: "only noise", raw: "12345 (x)", expected: ""},
		{name: "empty", raw: "", expected: ""},
		{name: "untouched", raw: "Plœuc-L'Hermitage", expected: "Plœuc-L'Hermitage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{"Kita-ku (123) Municipality", "10115 Berlin Mitte", "Gare du Nord"} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once))
	}
}
