package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/usestring/jsonkeys/pkg/keytree"
)

// Namer maps document IDs back to document paths.
type Namer interface {
	Name(id keytree.DocID) string
}

// EncodeOptions controls node serialization.
type EncodeOptions struct {
	// MaxFiles trims every document list to N entries followed by a
	// "... (k more)" marker (0 = no limit).
	MaxFiles int
}

// NodeView is the serialized form of a tree node.
type NodeView struct {
	Count uint64              `json:"count"`
	Types TypesView           `json:"types"`
	Keys  map[string]NodeView `json:"keys"`
}

// TypesView holds one entry per observed kind; unobserved kinds are omitted.
type TypesView struct {
	Null   *FilesView  `json:"null,omitempty"`
	Bool   *BoolView   `json:"bool,omitempty"`
	String *FilesView  `json:"string,omitempty"`
	Number *NumberView `json:"number,omitempty"`
	Array  *ArrayView  `json:"array,omitempty"`
	Object *FilesView  `json:"object,omitempty"`
}

// FilesView lists the documents that produced a kind.
type FilesView struct {
	Files []string `json:"files"`
}

// BoolView lists documents by observed boolean value.
type BoolView struct {
	True  []string `json:"t"`
	False []string `json:"f"`
}

// NumberView lists documents and the distinct numbers seen.
type NumberView struct {
	Files []string  `json:"files"`
	Int   []int64   `json:"int"`
	Float []float64 `json:"float"`
}

// ArrayView describes arrays: documents, length bounds and element kinds.
type ArrayView struct {
	Files  []string   `json:"files"`
	Items  *TypesView `json:"items,omitempty"`
	MinLen int        `json:"min_len"`
	MaxLen int        `json:"max_len"`
}

// View builds the serializable form of node and all of its descendants.
func View(node *keytree.Tree, names Namer, opts EncodeOptions) NodeView {
	e := encoder{names: names, opts: opts}
	return e.node(node)
}

// WriteNode writes node as a single line of JSON.
func WriteNode(w io.Writer, node *keytree.Tree, names Namer, opts EncodeOptions) error {
	return WriteNodes(w, []*keytree.Tree{node}, names, opts)
}

// WriteNodes writes one JSON line per node. Every node is encoded before
// anything is written, so a failure leaves w untouched.
func WriteNodes(w io.Writer, nodes []*keytree.Tree, names Namer, opts EncodeOptions) error {
	var buf bytes.Buffer
	for _, node := range nodes {
		data, err := json.Marshal(View(node, names, opts))
		if err != nil {
			return fmt.Errorf("encoding node: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	_, err := buf.WriteTo(w)
	return err
}

type encoder struct {
	names Namer
	opts  EncodeOptions
}

func (e encoder) node(n *keytree.Tree) NodeView {
	v := NodeView{
		Count: n.Count,
		Types: e.types(&n.Types),
		Keys:  make(map[string]NodeView, len(n.Keys)),
	}
	for k, child := range n.Keys {
		v.Keys[k] = e.node(child)
	}
	return v
}

func (e encoder) types(ts *keytree.TypeStats) TypesView {
	var v TypesView
	if ts.Has(keytree.KindNull) {
		v.Null = &FilesView{Files: e.files(ts.Null.Docs)}
	}
	if ts.Has(keytree.KindBool) {
		v.Bool = &BoolView{True: e.files(ts.Bool.True), False: e.files(ts.Bool.False)}
	}
	if ts.Has(keytree.KindString) {
		v.String = &FilesView{Files: e.files(ts.String.Docs)}
	}
	if ts.Has(keytree.KindNumber) {
		v.Number = &NumberView{
			Files: e.files(ts.Number.Docs),
			Int:   sortedInts(ts.Number.Ints),
			Float: sortedFloats(ts.Number.Floats),
		}
	}
	if ts.Has(keytree.KindArray) {
		av := &ArrayView{
			Files:  e.files(ts.Array.Docs),
			MinLen: ts.Array.MinLen,
			MaxLen: ts.Array.MaxLen,
		}
		if ts.Array.Items != nil && !ts.Array.Items.IsEmpty() {
			items := e.types(ts.Array.Items)
			av.Items = &items
		}
		v.Array = av
	}
	if ts.Has(keytree.KindObject) {
		v.Object = &FilesView{Files: e.files(ts.Object.Docs)}
	}
	return v
}

func (e encoder) files(set keytree.DocSet) []string {
	ids := set.IDs()
	files := make([]string, 0, len(ids))
	for _, id := range ids {
		files = append(files, e.names.Name(id))
	}
	sort.Strings(files)
	return compactList(files, e.opts.MaxFiles)
}

// compactList trims list to limit entries plus a marker naming how many
// entries were dropped.
func compactList(list []string, limit int) []string {
	if limit <= 0 || len(list) <= limit {
		return list
	}
	dropped := len(list) - limit
	out := make([]string, limit+1)
	copy(out, list[:limit])
	out[limit] = fmt.Sprintf("... (%d more)", dropped)
	return out
}

func sortedInts(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func sortedFloats(set map[uint64]struct{}) []float64 {
	out := make([]float64, 0, len(set))
	for bits := range set {
		out = append(out, math.Float64frombits(bits))
	}
	sort.Float64s(out)
	return out
}
