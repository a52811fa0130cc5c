package screening_test

import (
	"testing"

	"cv-screening-backend/internal/screening"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"lowercases", "GC-MS Analyst", "gc-ms analyst"},
		{"collapses whitespace", "  Liquid\n\n  templating\t and\r\nHTML5  ", "liquid templating and html5"},
		{"non-breaking space", "shopify\u00a0theme", "shopify theme"},
		{"bytes", []byte("Mass  Spectrometry"), "mass spectrometry"},
		{"nil", nil, ""},
		{"number", 42, ""},
		{"blank", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, screening.Normalize(tt.in))
		})
	}

	t.Run("nil string pointer", func(t *testing.T) {
		var s *string
		assert.Equal(t, "", screening.Normalize(s))
	})
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"  Senior   Shopify Developer\n",
		"GC-MS\t\tHPLC   GMP",
		"ÄÖÜ  Straße",
		"already normalized text",
	}
	for _, in := range inputs {
		once := screening.NormalizeString(in)
		assert.Equal(t, once, screening.NormalizeString(once), "input %q", in)
	}
}
