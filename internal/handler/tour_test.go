package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "json array", body: `{"includes":["guida","pranzo"]}`, want: []string{"guida", "pranzo"}},
		{name: "comma string", body: `{"includes":"guida, pranzo, assicurazione"}`, want: []string{"guida", "pranzo", "assicurazione"}},
		{name: "single string", body: `{"includes":"guida"}`, want: []string{"guida"}},
		{name: "null", body: `{"includes":null}`, want: []string{}},
		{name: "empty array", body: `{"includes":[]}`, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req tourReq
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, []string(req.Includes))
		})
	}
}
