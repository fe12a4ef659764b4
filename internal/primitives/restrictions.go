package primitives

import (
	"strings"

	"github.com/tturner/yangfuzz/internal/schema"
)

// Restrictions are the construction parameters taken from a type.
// Empty Min or Max means unbounded on that side.
type Restrictions struct {
	Min, Max string
	Pattern  string
}

// Options returns the restrictions as generator options.
func (r Restrictions) Options() []Option {
	var opts []Option
	if r.Min != "" || r.Max != "" {
		opts = append(opts, WithBounds(r.Min, r.Max))
	}
	if r.Pattern != "" {
		opts = append(opts, WithPattern(r.Pattern))
	}
	return opts
}

// Extract reads the bounds and pattern of t. A length restriction wins
// over a range restriction. Only the first pattern is kept.
func Extract(t *schema.Type) Restrictions {
	var r Restrictions
	if t == nil {
		return r
	}
	switch {
	case t.Length != "":
		r.Min, r.Max = splitBounds(t.Length)
	case t.Range != "":
		r.Min, r.Max = splitBounds(t.Range)
	}
	if len(t.Patterns) > 0 {
		r.Pattern = t.Patterns[0]
	}
	return r
}

// splitBounds turns "lo..hi", "v" or "a..b | c..d" into the outer bounds.
func splitBounds(expr string) (string, string) {
	parts := strings.Split(expr, "|")
	lo, _ := splitPart(parts[0])
	_, hi := splitPart(parts[len(parts)-1])
	return lo, hi
}

func splitPart(part string) (string, string) {
	part = strings.TrimSpace(part)
	if lo, hi, ok := strings.Cut(part, ".."); ok {
		return strings.TrimSpace(lo), strings.TrimSpace(hi)
	}
	return part, part
}
