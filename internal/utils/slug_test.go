package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Escursione al Monte Bianco", "escursione-al-monte-bianco"},
		{"Tramonto sulle Cinque Terre in barca", "tramonto-sulle-cinque-terre-in-barca"},
		{"Città di Perugia", "citta-di-perugia"},
		{"Caffè & Gelato Tour!", "caffe-gelato-tour"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"2024 Winter Edition", "2024-winter-edition"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestDisambiguateSlug(t *testing.T) {
	t.Run("free base wins", func(t *testing.T) {
		got := DisambiguateSlug("monte-bianco", func(string) bool { return false })
		assert.Equal(t, "monte-bianco", got)
	})
	t.Run("suffix counts up past collisions", func(t *testing.T) {
		taken := map[string]bool{"monte-bianco": true, "monte-bianco-2": true}
		got := DisambiguateSlug("monte-bianco", func(s string) bool { return taken[s] })
		assert.Equal(t, "monte-bianco-3", got)
	})
}
