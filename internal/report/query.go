package report

import (
	"fmt"

	"github.com/usestring/jsonkeys/internal/cache"
	"github.com/usestring/jsonkeys/pkg/keytree"
	"github.com/usestring/jsonkeys/pkg/pathquery"
)

// KeyNotFoundError is returned when a query names a key absent from the tree.
type KeyNotFoundError struct {
	Key    string   // Missing segment
	Parent []string // Segments resolved before Key
}

func (e *KeyNotFoundError) Error() string {
	if len(e.Parent) == 0 {
		return fmt.Sprintf("could not resolve key %q", e.Key)
	}
	return fmt.Sprintf("could not resolve key %q under %s", e.Key, pathquery.Format(e.Parent))
}

// Resolve follows path from tree and returns the node it names.
func Resolve(tree *keytree.Tree, path []string) (*keytree.Tree, error) {
	node, missing := tree.Lookup(path)
	if missing >= 0 {
		return nil, &KeyNotFoundError{
			Key:    path[missing],
			Parent: append([]string(nil), path[:missing]...),
		}
	}
	return node, nil
}

// Resolver parses and resolves path queries against one tree.
type Resolver struct {
	tree  *keytree.Tree
	cache *cache.QueryCache
}

// NewResolver creates a resolver. A nil cache parses every query afresh.
func NewResolver(tree *keytree.Tree, qc *cache.QueryCache) *Resolver {
	return &Resolver{tree: tree, cache: qc}
}

// Resolve parses query and returns the node it names. Errors are either a
// *pathquery.ParseError or a *KeyNotFoundError.
func (r *Resolver) Resolve(query string) (*keytree.Tree, error) {
	var (
		path []string
		err  error
	)
	if r.cache != nil {
		path, err = r.cache.Parse(query)
	} else {
		path, err = pathquery.Parse(query)
	}
	if err != nil {
		return nil, err
	}
	return Resolve(r.tree, path)
}

// ResolveAll resolves every query, failing on the first error so that no
// output is produced for a partially valid batch.
func (r *Resolver) ResolveAll(queries []string) ([]*keytree.Tree, error) {
	nodes := make([]*keytree.Tree, 0, len(queries))
	for _, q := range queries {
		node, err := r.Resolve(q)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
