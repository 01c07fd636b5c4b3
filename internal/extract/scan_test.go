package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "object surrounded by prose",
			input: `Sure, here is the result: {"a": 1} hope that helps!`,
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "braces inside string values",
			input: `{"desc": "payment {ref: 42}", "n": 1}`,
			want:  `{"desc": "payment {ref: 42}", "n": 1}`,
			found: true,
		},
		{
			name:  "escaped quote inside string",
			input: `{"desc": "he said \"}\"", "n": 1}`,
			want:  `{"desc": "he said \"}\"", "n": 1}`,
			found: true,
		},
		{
			name:  "nested objects",
			input: `{"outer": {"inner": {"deep": true}}}`,
			want:  `{"outer": {"inner": {"deep": true}}}`,
			found: true,
		},
		{
			name:  "two concatenated objects takes the first",
			input: `{"first": 1}{"second": 2}`,
			want:  `{"first": 1}`,
			found: true,
		},
		{
			name:  "no braces at all",
			input: "I could not read the statement, sorry.",
			found: false,
		},
		{
			name:  "unbalanced open brace",
			input: `{"a": 1`,
			found: false,
		},
		{
			name:  "closing brace before any open",
			input: `} {"a": 1}`,
			want:  `{"a": 1}`,
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := firstJSONObject(tt.input)
			require.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripCodeFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripCodeFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripCodeFences(`  {"a": 1}  `))
	assert.Equal(t, `{"a": 1}`, stripCodeFences(`{"a": 1}`))
}

func TestStripCodeFencesLeavesMidProseFencesAlone(t *testing.T) {
	// A fence pair inside leading prose must not cut the reply short.
	in := "I compared against the ```sample``` layout. Result: {\"a\": 1}"
	assert.Equal(t, in, stripCodeFences(in))

	// Same for a single stray fence after the object.
	in = `{"a": 1} see the earlier ` + "```" + ` snippet"
`
	assert.Equal(t, strings.TrimSpace(in), stripCodeFences(in))
}
