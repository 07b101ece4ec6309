package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jprybylski/batchrun/internal/uri"
)

func TestDecode(t *testing.T) {
	a := uri.ID{Scheme: "file", Path: "/c:/work/a.bat"}
	b := uri.ID{Scheme: "file", Path: "/c:/work/b.bat"}

	tests := []struct {
		name string
		in   string
		want Argument
	}{
		{"empty", "", None{}},
		{"null", "null", None{}},
		{"uri string", `"file:///c:/work/a.bat"`, Direct{URI: a}},
		{"serialized uri", `{"$mid":1,"scheme":"file","path":"/c:/work/a.bat"}`, Direct{URI: a}},
		{"resource uri", `{"resourceUri":"file:///c:/work/a.bat","label":"a.bat"}`, Resource{URI: a}},
		{"resource uri object", `{"resourceUri":{"scheme":"file","path":"/c:/work/a.bat"}}`, Resource{URI: a}},
		{"diff", `{"original":"file:///c:/work/a.bat","modified":"file:///c:/work/b.bat"}`, Diff{Original: a, Modified: b}},
		{"diff missing modified", `{"original":"file:///c:/work/a.bat"}`, None{}},
		{"unusable resource falls through to diff", `{"resourceUri":42,"original":"file:///c:/work/a.bat","modified":"file:///c:/work/b.bat"}`, Diff{Original: a, Modified: b}},
		{"unrecognised object", `{"viewColumn":1}`, None{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"original":`))
	assert.Error(t, err)
}

func TestParseArgument(t *testing.T) {
	t.Run("uri", func(t *testing.T) {
		got, err := ParseArgument("file:///tmp/x.sh")
		require.NoError(t, err)
		assert.Equal(t, Direct{URI: uri.ID{Scheme: "file", Path: "/tmp/x.sh"}}, got)
	})

	t.Run("json", func(t *testing.T) {
		got, err := ParseArgument(`{"resourceUri":"file:///tmp/x.sh"}`)
		require.NoError(t, err)
		assert.Equal(t, Resource{URI: uri.ID{Scheme: "file", Path: "/tmp/x.sh"}}, got)
	})

	t.Run("blank", func(t *testing.T) {
		got, err := ParseArgument("  ")
		require.NoError(t, err)
		assert.Equal(t, None{}, got)
	})
}
