// Package corpus enumerates the JSON documents under a directory and assigns
// each one a stable document ID.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/usestring/jsonkeys/pkg/keytree"
)

// DefaultExtension is the file extension scanned when none is configured.
const DefaultExtension = "json"

// Corpus is the table of documents found under a root directory.
// Document IDs are indexes into the table and never change once assigned.
type Corpus struct {
	root  string
	paths []string
}

// New builds a corpus from an explicit list of document paths.
func New(root string, paths []string) *Corpus {
	return &Corpus{root: root, paths: paths}
}

// Discover walks root recursively and collects every regular file whose
// extension is ext (without the leading dot). An unreadable root is an error;
// unreadable entries below it are skipped.
func Discover(root, ext string) (*Corpus, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", root)
	}

	if ext == "" {
		ext = DefaultExtension
	}
	suffix := "." + strings.TrimPrefix(ext, ".")

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Debug("skipping unreadable entry",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && filepath.Ext(path) == suffix {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	slog.Debug("discovered documents",
		slog.String("root", root),
		slog.Int("count", len(paths)),
	)
	return New(root, paths), nil
}

// Root returns the directory the corpus was discovered under.
func (c *Corpus) Root() string {
	return c.root
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.paths)
}

// Name returns the path of a document, or "" for an unknown ID.
func (c *Corpus) Name(id keytree.DocID) string {
	if int(id) >= len(c.paths) {
		return ""
	}
	return c.paths[id]
}

// IDs returns every document ID in table order.
func (c *Corpus) IDs() []keytree.DocID {
	ids := make([]keytree.DocID, len(c.paths))
	for i := range ids {
		ids[i] = keytree.DocID(i)
	}
	return ids
}

// ErrUnknownDocument is returned by Load for an ID outside the table.
var ErrUnknownDocument = errors.New("unknown document")

// Load reads and parses one document with p. The returned value is owned by p
// and is valid only until the next call to p.Parse.
func (c *Corpus) Load(p *fastjson.Parser, id keytree.DocID) (*fastjson.Value, error) {
	if int(id) >= len(c.paths) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDocument, id)
	}
	path := c.paths[id]

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := p.ParseBytes(data)
	if err == nil {
		err = checkNumbers(v)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

// ErrNonFiniteNumber is returned by Load for number literals that are not
// valid JSON numbers, such as NaN, inf or values outside the float64 range.
var ErrNonFiniteNumber = errors.New("non-finite number")

// checkNumbers walks v and rejects the number literals fastjson lets through
// but JSON does not allow.
func checkNumbers(v *fastjson.Value) error {
	switch v.Type() {
	case fastjson.TypeNumber:
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %s", ErrNonFiniteNumber, v)
		}
	case fastjson.TypeArray:
		elems, _ := v.Array()
		for _, e := range elems {
			if err := checkNumbers(e); err != nil {
				return err
			}
		}
	case fastjson.TypeObject:
		obj, _ := v.Object()
		var err error
		obj.Visit(func(_ []byte, field *fastjson.Value) {
			if err == nil {
				err = checkNumbers(field)
			}
		})
		return err
	}
	return nil
}
