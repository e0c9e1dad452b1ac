package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Object(t *testing.T) {
	obj := Obj(
		O("type", IRString("coding.code_changed")),
		O("seq", IRInt(3)),
		O("data", Obj(O("code", IRString("a<b && c>d")))),
	)
	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"code":"a<b && c>d"},"seq":3,"type":"coding.code_changed"}`, string(got))
}

func TestMarshalCanonical_Escapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline and tab", "a\n\tb", `"a\n\tb"`},
		{"control", "\x01", `"\u0001"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"html not escaped", "<script>&", `"<script>&"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(IRString(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "e\u0301" // e + combining acute
	got, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(Obj(O("x", IRNull{})))
	assert.Error(t, err)

	_, err = MarshalCanonical(struct{}{})
	assert.Error(t, err)
}

func TestMarshalCanonical_GoMapsAndSlices(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": []any{1, "x"}, "a": true})
	require.NoError(t, err)
	assert.Equal(t, `{"a":true,"b":[1,"x"]}`, string(got))
}
