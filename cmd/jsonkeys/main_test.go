package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) string {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("JSONKEYS_CONFIG", "")
	t.Setenv("QUERY_MAX_FILES", "")
	t.Setenv("LOG_FILE", "")

	root := t.TempDir()
	files := map[string]string{
		"a.json":        `{"a": {"b": 5, "b.b": "x"}, "mixed": 1}`,
		"nested/b.json": `{"a": {"b": 6}, "mixed": "s"}`,
		"broken.json":   `{"a": `,
		"skip.txt":      `{"z": 1}`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Keys(t *testing.T) {
	root := fixture(t)

	code, out, errOut := execute(t, root, "keys")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t,
		"2 '.a.b' Num=2\n"+
			"1 '.a.\"b.b\"' Str=1\n"+
			"2 '.mixed' Num=1 Str=1\n",
		out)
}

func TestRun_KeysTypeCount(t *testing.T) {
	root := fixture(t)

	code, out, _ := execute(t, root, "keys", "--type-count", "2")
	require.Equal(t, 0, code)
	assert.Equal(t, "2 '.mixed' Num=1 Str=1\n", out)

	code, out, _ = execute(t, "keys", "--dir", root, "--type-count", "0")
	require.Equal(t, 0, code)
	assert.Equal(t, 3, strings.Count(out, "\n"))

	code, _, errOut := execute(t, root, "keys", "--type-count", "-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--type-count")
}

func TestRun_Query(t *testing.T) {
	root := fixture(t)

	code, out, errOut := execute(t, root, "query", ".a.b")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, 1, strings.Count(out, "\n"))

	var node struct {
		Count uint64 `json:"count"`
		Types struct {
			Number struct {
				Files []string `json:"files"`
				Int   []int64  `json:"int"`
			} `json:"number"`
		} `json:"types"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &node))
	assert.Equal(t, uint64(2), node.Count)
	assert.Equal(t, []int64{5, 6}, node.Types.Number.Int)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.json"),
		filepath.Join(root, "nested", "b.json"),
	}, node.Types.Number.Files)
}

func TestRun_QueryQuotedSegment(t *testing.T) {
	root := fixture(t)

	code, out, errOut := execute(t, root, "query", `.a."b.b"`)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"string"`)
}

func TestRun_QueryJQAndMaxFiles(t *testing.T) {
	root := fixture(t)

	code, out, errOut := execute(t, root, "query", ".a.b", ".mixed", "--jq", ".count")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "2\n2\n", out)

	code, out, errOut = execute(t, root, "query", ".a.b", "--max-files", "1", "--jq", ".types.number.files[1]")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "\"... (1 more)\"\n", out)
}

func TestRun_QueryErrors(t *testing.T) {
	root := fixture(t)

	code, out, errOut := execute(t, root, "query", ".x.y")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, `could not resolve key "x"`)

	code, out, errOut = execute(t, root, "query", ".a.y")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, `could not resolve key "y"`)

	code, out, errOut = execute(t, root, "query", "..")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "failed to parse query")

	code, out, _ = execute(t, root, "query", ".a.b", ".nope")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
}

func TestRun_Stats(t *testing.T) {
	root := fixture(t)

	code, out, errOut := execute(t, root, "stats", "--workers", "2")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "2 documents scanned, 1 skipped, 4 key-paths, max depth 2\n", out)
}

func TestRun_SetupErrors(t *testing.T) {
	fixture(t)

	code, _, errOut := execute(t, "keys")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "root directory is required")

	code, _, errOut = execute(t, filepath.Join(t.TempDir(), "missing"), "keys")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "reading root directory")

	code, _, _ = execute(t, t.TempDir(), "bogus")
	assert.Equal(t, 1, code)
}

func TestRun_FlagsBeforeRootDir(t *testing.T) {
	root := fixture(t)

	code, out, errOut := execute(t, "--workers", "2", root, "stats")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "2 documents scanned, 1 skipped, 4 key-paths, max depth 2\n", out)

	code, out, errOut = execute(t, "--workers=3", root, "keys", "--type-count", "2")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "2 '.mixed' Num=1 Str=1\n", out)
}

func TestSplitRootArg(t *testing.T) {
	commands := map[string]bool{"keys": true, "query": true}
	flags := (&app{}).rootCmd().PersistentFlags()

	tests := []struct {
		name string
		args []string
		dir  string
		rest []string
		ok   bool
	}{
		{"leading dir", []string{"/data", "keys"}, "/data", []string{"keys"}, true},
		{"flag with value first", []string{"--workers", "2", "/data", "keys"}, "/data", []string{"--workers", "2", "keys"}, true},
		{"inline flag value", []string{"--config=c.yaml", "/data", "query", ".a"}, "/data", []string{"--config=c.yaml", "query", ".a"}, true},
		{"shorthand dir flag", []string{"-d", "/data", "keys"}, "", []string{"-d", "/data", "keys"}, false},
		{"dir flag after command", []string{"keys", "--dir", "/data"}, "", []string{"keys", "--dir", "/data"}, false},
		{"help only", []string{"--help"}, "", []string{"--help"}, false},
		{"terminator", []string{"--", "/data"}, "", []string{"--", "/data"}, false},
		{"empty", nil, "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, rest, ok := splitRootArg(tt.args, commands, flags)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.rest, rest)
		})
	}
}
