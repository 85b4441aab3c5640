package vocab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `{"id": 12}`, "12"},
		{"string", `{"id": "3f2a"}`, "3f2a"},
		{"null", `{"id": null}`, ""},
		{"missing", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Category
			require.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, tt.want, c.ID)
		})
	}
}

func TestID_UnmarshalJSON_RejectsObjects(t *testing.T) {
	var c Category
	assert.Error(t, json.Unmarshal([]byte(`{"id": {"x": 1}}`), &c))
}

func TestID_MarshalJSON_PreservesKind(t *testing.T) {
	out, err := json.Marshal([]Category{{ID: "1", Name: "Animals"}, {ID: "a-b", Name: "Colors"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Animals"},{"id":"a-b","name":"Colors"}]`, string(out))
}

func TestID_MarshalJSON(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{"12", `12`},
		{"-3", `-3`},
		{"1.5e3", `1.5e3`},
		{"007", `"007"`},
		{"+5", `"+5"`},
		{" 5", `" 5"`},
		{"-", `"-"`},
		{"true", `"true"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			out, err := json.Marshal(Word{ID: tt.id})
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":`+tt.want+`,"name":"","published":false}`, string(out))
		})
	}
}

func TestID_RoundTrip(t *testing.T) {
	for _, in := range []string{
		`{"id":"007","name":"Bond"}`,
		`{"id":"+5","name":"Plus"}`,
		`{"id":42,"name":"Answer"}`,
		`{"id":"3f2a","name":"Hex"}`,
	} {
		t.Run(in, func(t *testing.T) {
			var c Category
			require.NoError(t, json.Unmarshal([]byte(in), &c))

			out, err := json.Marshal(c)
			require.NoError(t, err)
			assert.JSONEq(t, in, string(out))
		})
	}
}

func TestWord_DecodesBackendShape(t *testing.T) {
	var d CategoryDetail
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 7, "name": "Colors",
		"words": [
			{"id": 1, "name": "Red", "description": "warm", "published": true},
			{"id": 2, "name": "Blue", "published": false}
		]
	}`), &d))

	require.Len(t, d.Words, 2)
	assert.Equal(t, Word{ID: "1", Name: "Red", Description: "warm", Published: true}, d.Words[0])
	assert.Equal(t, Word{ID: "2", Name: "Blue"}, d.Words[1])
}
