// Package pathquery parses dotted key-path expressions such as `.a."b.c".d`
// into the ordered list of object keys they name.
package pathquery

import (
	"fmt"
	"strings"
)

// ParseError describes why a query could not be parsed.
type ParseError struct {
	Query     string // Full input
	Offset    int    // Byte offset where parsing stopped
	Remaining string // Unconsumed input starting at Offset
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse query %q at offset %d: %s (remaining %q)", e.Query, e.Offset, e.Reason, e.Remaining)
}

// unquotedStop lists the characters that end an unquoted segment.
const unquotedStop = "\"\n\t ."

// Parse parses a query of the form `.seg.seg...`. A segment is either a
// non-empty run of characters other than `"`, newline, tab, space and `.`,
// or a double-quoted string whose content may contain anything but `"`.
// A bare `.` yields an empty, non-nil slice.
func Parse(query string) ([]string, error) {
	p := &parser{input: query}
	if !p.consume('.') {
		return nil, p.fail("query must start with '.'")
	}

	segments := make([]string, 0, strings.Count(query, "."))

	seg, ok, err := p.segment()
	if err != nil {
		return nil, err
	}
	if ok {
		segments = append(segments, seg)
		for {
			mark := p.pos
			if !p.consume('.') {
				break
			}
			seg, ok, err = p.segment()
			if err != nil {
				return nil, err
			}
			if !ok {
				p.pos = mark
				break
			}
			segments = append(segments, seg)
		}
	}

	if p.pos != len(p.input) {
		return nil, p.fail("unexpected trailing input")
	}
	return segments, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(query string) []string {
	segments, err := Parse(query)
	if err != nil {
		panic(err)
	}
	return segments
}

type parser struct {
	input string
	pos   int
}

func (p *parser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// segment parses one quoted or unquoted segment. ok is false when no segment
// starts at the current position; err is set only for an unterminated quote.
func (p *parser) segment() (seg string, ok bool, err error) {
	if p.pos >= len(p.input) {
		return "", false, nil
	}

	if p.input[p.pos] == '"' {
		end := strings.IndexByte(p.input[p.pos+1:], '"')
		if end < 0 {
			return "", false, p.fail("unterminated quoted segment")
		}
		seg = p.input[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return seg, true, nil
	}

	start := p.pos
	for p.pos < len(p.input) && strings.IndexByte(unquotedStop, p.input[p.pos]) < 0 {
		p.pos++
	}
	if p.pos == start {
		return "", false, nil
	}
	return p.input[start:p.pos], true, nil
}

func (p *parser) fail(reason string) *ParseError {
	return &ParseError{
		Query:     p.input,
		Offset:    p.pos,
		Remaining: p.input[p.pos:],
		Reason:    reason,
	}
}

// Quote renders a key as a path segment, wrapping it in double quotes when it
// contains a literal '.'.
func Quote(key string) string {
	if strings.Contains(key, ".") {
		return `"` + key + `"`
	}
	return key
}

// Format renders segments back into a dotted path. An empty list renders as ".".
func Format(segments []string) string {
	if len(segments) == 0 {
		return "."
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('.')
		b.WriteString(Quote(s))
	}
	return b.String()
}
