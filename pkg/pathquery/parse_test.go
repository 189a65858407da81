package pathquery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"root", ".", []string{}},
		{"single", ".a", []string{"a"}},
		{"nested", ".a.b.v", []string{"a", "b", "v"}},
		{"quoted plain", `.a."b".v`, []string{"a", "b", "v"}},
		{"quoted dot", `.a."b.b".v`, []string{"a", "b.b", "v"}},
		{"quoted whitespace", ".a.\"b\n.\t  b\".v", []string{"a", "b\n.\t  b", "v"}},
		{"quoted empty", `.""`, []string{""}},
		{"quoted empty nested", `.a."".b`, []string{"a", "", "b"}},
		{"unicode", ".ключ.値", []string{"ключ", "値"}},
		{"symbols", ".a-b.c_d.$e", []string{"a-b", "c_d", "$e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		offset    int
		remaining string
	}{
		{"empty", "", 0, ""},
		{"missing leading dot", "a.b", 0, "a.b"},
		{"double dot", "..", 1, "."},
		{"empty inner segment", ".a..b", 2, "..b"},
		{"trailing dot", ".a.", 2, "."},
		{"space in segment", ".a b", 2, " b"},
		{"tab in segment", ".a\tb", 2, "\tb"},
		{"unterminated quote", `.a."b`, 3, `"b`},
		{"quote glued to key", `.a"b"`, 2, `"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.query)
			require.Error(t, err)
			assert.Nil(t, got)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.query, perr.Query)
			assert.Equal(t, tt.offset, perr.Offset)
			assert.Equal(t, tt.remaining, perr.Remaining)
			assert.NotEmpty(t, perr.Reason)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	_, err := Parse(".a..b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `".a..b"`)
	assert.Contains(t, err.Error(), `remaining "..b"`)
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
	assert.Equal(t, []string{"x"}, MustParse(".x"))
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, q := range []string{".", ".a", ".a.b", `.a."b.b".c`, `."x.y"`} {
		segments, err := Parse(q)
		require.NoError(t, err)
		assert.Equal(t, q, Format(segments), q)
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "plain", Quote("plain"))
	assert.Equal(t, `"a.b"`, Quote("a.b"))
	assert.Equal(t, "", Quote(""))
}
