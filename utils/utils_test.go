package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Message int   `json:"message"`
	Seen    []int `json:"seen,omitempty"`
}

func TestAsJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    map[string]any
		wantErr bool
	}{
		{
			name: "struct fields",
			in:   sample{Message: 7},
			want: map[string]any{"message": json.Number("7")},
		},
		{
			name: "integers beyond float64 precision",
			in:   sample{Message: 9007199254740993, Seen: []int{1 << 62, 9007199254740995}},
			want: map[string]any{
				"message": json.Number("9007199254740993"),
				"seen":    []any{json.Number("4611686018427387904"), json.Number("9007199254740995")},
			},
		},
		{
			name: "empty struct",
			in:   struct{}{},
			want: map[string]any{},
		},
		{
			name:    "not an object",
			in:      []int{1, 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsJSON(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode(t *testing.T) {
	got, err := Decode[sample](json.RawMessage(`{"type":"gossip","seen":[1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, sample{Seen: []int{1, 2}}, got)

	_, err = Decode[sample](json.RawMessage(`{"message":"x"}`))
	assert.Error(t, err)
}
