// Package keytree aggregates the key-paths of many JSON documents into one
// mergeable tree. Each node counts how often its key occurred and which JSON
// kinds were seen there, and owns one child per nested object key.
package keytree

import (
	"sort"

	"github.com/valyala/fastjson"
)

// Tree is one key-path of the aggregate schema. The root of a tree has no
// key of its own; its Count and Types stay empty.
type Tree struct {
	Count uint64
	Types TypeStats
	Keys  map[string]*Tree
}

// New returns an empty tree. An empty tree is the identity for Merge.
func New() *Tree {
	return &Tree{}
}

// Child returns the child for key, or nil if absent.
func (t *Tree) Child(key string) *Tree {
	return t.Keys[key]
}

func (t *Tree) child(key string) *Tree {
	if c, ok := t.Keys[key]; ok {
		return c
	}
	if t.Keys == nil {
		t.Keys = make(map[string]*Tree)
	}
	c := New()
	t.Keys[key] = c
	return c
}

// AddDocument walks a parsed document into the tree. Documents whose top
// level is not an object contribute nothing.
func (t *Tree) AddDocument(doc DocID, v *fastjson.Value) {
	obj, err := v.Object()
	if err != nil {
		return
	}
	obj.Visit(func(key []byte, value *fastjson.Value) {
		t.add(doc, string(key), value)
	})
}

// add records one occurrence of key with value under t. Object values are
// both counted as an object observation and expanded into children.
func (t *Tree) add(doc DocID, key string, value *fastjson.Value) {
	sub := t.child(key)
	sub.Count++
	if value.Type() == fastjson.TypeObject {
		obj, _ := value.Object()
		obj.Visit(func(k []byte, v *fastjson.Value) {
			sub.add(doc, string(k), v)
		})
	}
	sub.Types.Add(doc, value)
}

// Merge folds other into t. Counts add, type statistics union and children
// merge key by key; children present only in other are adopted, so other
// must not be used afterwards.
func (t *Tree) Merge(other *Tree) {
	if other == nil {
		return
	}
	t.Count += other.Count
	t.Types.Merge(other.Types)
	for key, sub := range other.Keys {
		if mine, ok := t.Keys[key]; ok {
			mine.Merge(sub)
			continue
		}
		if t.Keys == nil {
			t.Keys = make(map[string]*Tree, len(other.Keys))
		}
		t.Keys[key] = sub
	}
}

// Lookup follows path from t. It returns the deepest node reached and the
// index of the first missing segment, or -1 when the whole path resolved.
func (t *Tree) Lookup(path []string) (*Tree, int) {
	node := t
	for i, key := range path {
		next, ok := node.Keys[key]
		if !ok {
			return node, i
		}
		node = next
	}
	return node, -1
}

// SortedKeys returns the child keys in lexical order.
func (t *Tree) SortedKeys() []string {
	keys := make([]string, 0, len(t.Keys))
	for k := range t.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WalkFunc is called for every node visited by Walk. path is shared between
// calls and must be copied if retained.
type WalkFunc func(path []string, node *Tree)

// Walk visits t and every descendant in pre-order, siblings in lexical order.
func (t *Tree) Walk(fn WalkFunc) {
	path := make([]string, 0, 8)
	t.walk(&path, fn)
}

func (t *Tree) walk(path *[]string, fn WalkFunc) {
	fn(*path, t)
	for _, k := range t.SortedKeys() {
		*path = append(*path, k)
		t.Keys[k].walk(path, fn)
		*path = (*path)[:len(*path)-1]
	}
}

// Size returns the number of key-paths below t and the maximum nesting depth.
func (t *Tree) Size() (paths, depth int) {
	t.Walk(func(path []string, _ *Tree) {
		if len(path) == 0 {
			return
		}
		paths++
		depth = max(depth, len(path))
	})
	return paths, depth
}
