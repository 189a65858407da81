package keytree

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// DocID identifies a source document. IDs index a corpus-wide table of
// document paths, so a node cites a document with four bytes instead of a
// copy of its path.
type DocID uint32

// DocSet is a deduplicated set of documents backed by a Roaring bitmap.
// The zero value is an empty set.
type DocSet struct {
	bm *roaring.Bitmap
}

// Add inserts a document into the set.
func (s *DocSet) Add(id DocID) {
	if s.bm == nil {
		s.bm = roaring.New()
	}
	s.bm.Add(uint32(id))
}

// Contains reports whether the document is in the set.
func (s *DocSet) Contains(id DocID) bool {
	return s.bm != nil && s.bm.Contains(uint32(id))
}

// Merge adds every document of other into s.
func (s *DocSet) Merge(other DocSet) {
	if other.bm == nil || other.bm.IsEmpty() {
		return
	}
	if s.bm == nil {
		s.bm = other.bm.Clone()
		return
	}
	s.bm.Or(other.bm)
}

// IsEmpty reports whether no document was added.
func (s *DocSet) IsEmpty() bool {
	return s.bm == nil || s.bm.IsEmpty()
}

// Len returns the number of distinct documents in the set.
func (s *DocSet) Len() int {
	if s.bm == nil {
		return 0
	}
	return int(s.bm.GetCardinality())
}

// IDs returns the documents in ascending order.
func (s *DocSet) IDs() []DocID {
	if s.bm == nil {
		return nil
	}
	raw := s.bm.ToArray()
	ids := make([]DocID, len(raw))
	for i, v := range raw {
		ids[i] = DocID(v)
	}
	return ids
}

// unionLen returns |a ∪ b| without modifying either set.
func unionLen(a, b DocSet) int {
	switch {
	case a.IsEmpty():
		return b.Len()
	case b.IsEmpty():
		return a.Len()
	}
	return int(roaring.Or(a.bm, b.bm).GetCardinality())
}
