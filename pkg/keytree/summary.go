package keytree

import (
	"strconv"
	"strings"
)

// Summary renders the observed kinds compactly, e.g.
// `N=1 B=2 Num=3 Str=1 [ Num=2 Str=1 ]=2 {}=1`. Only non-empty kinds appear;
// array element kinds are summarised recursively between brackets.
func (ts *TypeStats) Summary() string {
	var b strings.Builder
	ts.writeSummary(&b)
	return b.String()
}

func (ts *TypeStats) writeSummary(b *strings.Builder) {
	field := func(label string, n int) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(label)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(n))
	}

	if ts.Has(KindNull) {
		field("N", ts.Count(KindNull))
	}
	if ts.Has(KindBool) {
		field("B", ts.Count(KindBool))
	}
	if ts.Has(KindNumber) {
		field("Num", ts.Count(KindNumber))
	}
	if ts.Has(KindString) {
		field("Str", ts.Count(KindString))
	}
	if ts.Has(KindArray) {
		var inner strings.Builder
		if ts.Array.Items != nil {
			ts.Array.Items.writeSummary(&inner)
		}
		label := "[ ]"
		if inner.Len() > 0 {
			label = "[ " + inner.String() + " ]"
		}
		field(label, ts.Count(KindArray))
	}
	if ts.Has(KindObject) {
		field("{}", ts.Count(KindObject))
	}
}
