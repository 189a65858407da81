// Package report renders the aggregated key tree: a filtered listing of every
// key-path and a structured view of a single queried path.
package report

import (
	"fmt"
	"io"

	"github.com/usestring/jsonkeys/pkg/keytree"
	"github.com/usestring/jsonkeys/pkg/pathquery"
)

// DefaultTypeCount is the default minimum type diversity for Keys.
const DefaultTypeCount = 1

// KeyLine is one entry of the key listing.
type KeyLine struct {
	Count   uint64
	Path    []string
	Summary string
}

// String formats the line as `<count> '<path>' <summary>`.
func (l KeyLine) String() string {
	return fmt.Sprintf("%d '%s' %s", l.Count, formatPath(l.Path), l.Summary)
}

// formatPath renders a path as `.a."b.c"`; the root renders as "".
func formatPath(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return pathquery.Format(path)
}

// Keys collects, in pre-order, every path whose kinds are not object-only and
// whose type diversity is at least minTypes. Children are visited whether or
// not their parent qualified.
func Keys(tree *keytree.Tree, minTypes int) []KeyLine {
	var lines []KeyLine
	tree.Walk(func(path []string, node *keytree.Tree) {
		if node.Types.IsObjectOnly() || node.Types.Diversity() < minTypes {
			return
		}
		lines = append(lines, KeyLine{
			Count:   node.Count,
			Path:    append([]string(nil), path...),
			Summary: node.Types.Summary(),
		})
	})
	return lines
}

// WriteKeys writes the listing produced by Keys, one line per path.
func WriteKeys(w io.Writer, tree *keytree.Tree, minTypes int) error {
	for _, line := range Keys(tree, minTypes) {
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}
