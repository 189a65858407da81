package keytree

import (
	"math"

	"github.com/valyala/fastjson"
)

// Kind is a JSON value kind.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{"null", "bool", "number", "string", "array", "object"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf maps a fastjson value type onto a Kind.
func KindOf(v *fastjson.Value) Kind {
	switch v.Type() {
	case fastjson.TypeNull:
		return KindNull
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return KindBool
	case fastjson.TypeNumber:
		return KindNumber
	case fastjson.TypeString:
		return KindString
	case fastjson.TypeArray:
		return KindArray
	default:
		return KindObject
	}
}

// NullStats records documents that held null.
type NullStats struct {
	Docs DocSet
}

// BoolStats records documents that held true and false separately.
type BoolStats struct {
	True  DocSet
	False DocSet
}

// Len returns the number of documents that held any boolean.
func (b *BoolStats) Len() int {
	return unionLen(b.True, b.False)
}

// IsEmpty reports whether no boolean was observed.
func (b *BoolStats) IsEmpty() bool {
	return b.True.IsEmpty() && b.False.IsEmpty()
}

// NumberStats records documents that held numbers plus the distinct values.
// Integer literals and floating-point literals are kept apart; floats are
// stored by bit pattern so that every value, including -0, stays distinct.
type NumberStats struct {
	Docs   DocSet
	Ints   map[int64]struct{}
	Floats map[uint64]struct{}
}

func (n *NumberStats) addInt(i int64) {
	if n.Ints == nil {
		n.Ints = make(map[int64]struct{})
	}
	n.Ints[i] = struct{}{}
}

func (n *NumberStats) addFloat(f float64) {
	n.addFloatBits(math.Float64bits(f))
}

func (n *NumberStats) addFloatBits(bits uint64) {
	if n.Floats == nil {
		n.Floats = make(map[uint64]struct{})
	}
	n.Floats[bits] = struct{}{}
}

func (n *NumberStats) merge(other NumberStats) {
	n.Docs.Merge(other.Docs)
	for i := range other.Ints {
		n.addInt(i)
	}
	for bits := range other.Floats {
		n.addFloatBits(bits)
	}
}

// StringStats records documents that held strings.
type StringStats struct {
	Docs DocSet
}

// ArrayStats records documents that held arrays, the observed length bounds
// and the union of element kinds across every index of every array.
//
// MinLen and MaxLen are meaningful only when Docs is non-empty; they are
// initialised from the first observed array.
type ArrayStats struct {
	Docs   DocSet
	MinLen int
	MaxLen int
	Items  *TypeStats
}

func (a *ArrayStats) observeLen(n int) {
	if a.Docs.IsEmpty() {
		a.MinLen, a.MaxLen = n, n
		return
	}
	a.MinLen = min(a.MinLen, n)
	a.MaxLen = max(a.MaxLen, n)
}

func (a *ArrayStats) items() *TypeStats {
	if a.Items == nil {
		a.Items = &TypeStats{}
	}
	return a.Items
}

func (a *ArrayStats) merge(other ArrayStats) {
	if other.Docs.IsEmpty() {
		return
	}
	if a.Docs.IsEmpty() {
		a.MinLen, a.MaxLen = other.MinLen, other.MaxLen
	} else {
		a.MinLen = min(a.MinLen, other.MinLen)
		a.MaxLen = max(a.MaxLen, other.MaxLen)
	}
	a.Docs.Merge(other.Docs)
	if other.Items != nil {
		a.items().Merge(*other.Items)
	}
}

// ObjectStats records documents that held objects. The object's fields live
// in the enclosing Tree as children.
type ObjectStats struct {
	Docs DocSet
}

// TypeStats aggregates, per JSON kind, the documents that produced a value
// of that kind at one key-path. The zero value is empty and is the identity
// for Merge.
type TypeStats struct {
	Null   NullStats
	Bool   BoolStats
	Number NumberStats
	String StringStats
	Array  ArrayStats
	Object ObjectStats
}

// Add records one observation of v made in document doc.
func (ts *TypeStats) Add(doc DocID, v *fastjson.Value) {
	switch v.Type() {
	case fastjson.TypeNull:
		ts.Null.Docs.Add(doc)
	case fastjson.TypeTrue:
		ts.Bool.True.Add(doc)
	case fastjson.TypeFalse:
		ts.Bool.False.Add(doc)
	case fastjson.TypeNumber:
		ts.Number.Docs.Add(doc)
		if i, err := v.Int64(); err == nil {
			ts.Number.addInt(i)
		} else if f, err := v.Float64(); err == nil {
			ts.Number.addFloat(f)
		}
	case fastjson.TypeString:
		ts.String.Docs.Add(doc)
	case fastjson.TypeArray:
		elems, _ := v.Array()
		ts.Array.observeLen(len(elems))
		ts.Array.Docs.Add(doc)
		if len(elems) > 0 {
			items := ts.Array.items()
			for _, e := range elems {
				items.Add(doc, e)
			}
		}
	case fastjson.TypeObject:
		ts.Object.Docs.Add(doc)
	}
}

// Merge folds other into ts: document sets are unioned and array bounds widened.
func (ts *TypeStats) Merge(other TypeStats) {
	ts.Null.Docs.Merge(other.Null.Docs)
	ts.Bool.True.Merge(other.Bool.True)
	ts.Bool.False.Merge(other.Bool.False)
	ts.Number.merge(other.Number)
	ts.String.Docs.Merge(other.String.Docs)
	ts.Array.merge(other.Array)
	ts.Object.Docs.Merge(other.Object.Docs)
}

// Has reports whether at least one value of kind k was observed.
func (ts *TypeStats) Has(k Kind) bool {
	switch k {
	case KindNull:
		return !ts.Null.Docs.IsEmpty()
	case KindBool:
		return !ts.Bool.IsEmpty()
	case KindNumber:
		return !ts.Number.Docs.IsEmpty()
	case KindString:
		return !ts.String.Docs.IsEmpty()
	case KindArray:
		return !ts.Array.Docs.IsEmpty()
	case KindObject:
		return !ts.Object.Docs.IsEmpty()
	}
	return false
}

// Count returns the number of distinct documents that produced kind k.
func (ts *TypeStats) Count(k Kind) int {
	switch k {
	case KindNull:
		return ts.Null.Docs.Len()
	case KindBool:
		return ts.Bool.Len()
	case KindNumber:
		return ts.Number.Docs.Len()
	case KindString:
		return ts.String.Docs.Len()
	case KindArray:
		return ts.Array.Docs.Len()
	case KindObject:
		return ts.Object.Docs.Len()
	}
	return 0
}

// diversityKinds are the kinds counted towards type diversity.
var diversityKinds = [...]Kind{KindNull, KindBool, KindNumber, KindString, KindArray}

// Diversity returns the number of distinct non-object kinds observed.
func (ts *TypeStats) Diversity() int {
	n := 0
	for _, k := range diversityKinds {
		if ts.Has(k) {
			n++
		}
	}
	return n
}

// IsObjectOnly reports whether no non-object kind was observed.
func (ts *TypeStats) IsObjectOnly() bool {
	return ts.Diversity() == 0
}

// IsEmpty reports whether nothing at all was observed.
func (ts *TypeStats) IsEmpty() bool {
	return ts.IsObjectOnly() && !ts.Has(KindObject)
}
