package report

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/jsonkeys/pkg/keytree"
)

// printer formats counts with English digit grouping.
var printer = message.NewPrinter(language.English)

// Summary describes a scanned corpus.
type Summary struct {
	Documents int `json:"documents"`
	Skipped   int `json:"skipped"`
	Paths     int `json:"paths"`
	MaxDepth  int `json:"max_depth"`
}

// Summarize computes corpus statistics from an aggregated tree.
func Summarize(tree *keytree.Tree, documents, skipped int) Summary {
	paths, depth := tree.Size()
	return Summary{
		Documents: documents,
		Skipped:   skipped,
		Paths:     paths,
		MaxDepth:  depth,
	}
}

func (s Summary) String() string {
	return printer.Sprintf("%d documents scanned, %d skipped, %d key-paths, max depth %d",
		s.Documents, s.Skipped, s.Paths, s.MaxDepth)
}

// WriteSummary writes the summary as one line.
func WriteSummary(w io.Writer, s Summary) error {
	_, err := io.WriteString(w, s.String()+"\n")
	return err
}
