package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"stream", StreamID{Device: 0, Stream: 2}, `{"device":0,"stream":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"y": 1, "x": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"x":2,"y":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 even though the UTF-8 bytes sort after.
	obj := map[string]any{
		"\uFF61":     1,
		"\U0001F600": 2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uFF61\":1}", string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	result, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))

	// A literal backslash followed by the text u2028 stays escaped.
	result, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(result))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.ErrorContains(t, err, "null")

	_, err = MarshalCanonical(1.5)
	assert.ErrorContains(t, err, "floats")

	_, err = MarshalCanonical(map[string]any{"x": []any{nil}})
	assert.ErrorContains(t, err, `value for key "x"`)

	_, err = MarshalCanonical(struct{}{})
	assert.ErrorContains(t, err, "unsupported type")
}

func TestMarshalCanonicalHazards(t *testing.T) {
	hazards := []Hazard{{
		Producer:       3,
		Consumer:       12,
		ProducerStream: StreamID{Device: 0, Stream: 0},
		ConsumerStream: StreamID{Device: 0, Stream: 2},
		ProducerName:   "x_3",
	}}

	result, err := MarshalCanonical(hazards)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"consumer":12,"consumer_stream":{"device":0,"stream":2},"producer":3,"producer_name":"x_3","producer_stream":{"device":0,"stream":0}}]`,
		string(result))
}
