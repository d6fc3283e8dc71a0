package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStringList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "json array", raw: `["guida alpina","pranzo al sacco"]`, want: []string{"guida alpina", "pranzo al sacco"}},
		{name: "json array with blanks", raw: `["a"," ","b",""]`, want: []string{"a", "b"}},
		{name: "comma separated legacy", raw: "guida, pranzo , assicurazione", want: []string{"guida", "pranzo", "assicurazione"}},
		{name: "single value", raw: "guida", want: []string{"guida"}},
		{name: "empty", raw: "", want: []string{}},
		{name: "whitespace only", raw: "   ", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStringList(tt.raw)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeStringList(t *testing.T) {
	assert.Equal(t, `["a","b"]`, EncodeStringList([]string{"a", "b"}))
	assert.Equal(t, `[]`, EncodeStringList(nil))
	assert.Equal(t, `[]`, EncodeStringList([]string{}))
}

func TestListRoundTrip(t *testing.T) {
	in := []string{"guida alpina", "pranzo al sacco", "assicurazione"}
	assert.Equal(t, in, ParseStringList(EncodeStringList(in)))
}
