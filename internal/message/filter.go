package message

import "strings"

// filter selects the subtree rooted at one data path. Paths are compared
// without module prefixes and list predicates, so "/ex:cfg/item[id='1']/x"
// and "/cfg/item/x" select the same node.
type filter struct {
	path string
}

func newFilter(expr string) filter {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return filter{}
	}
	return filter{path: normalizePath(expr)}
}

func (f filter) active() bool { return f.path != "" }

// includes reports whether the node at path is the target, one of its
// ancestors, or one of its descendants.
func (f filter) includes(path string) bool {
	if !f.active() {
		return true
	}
	p := normalizePath(path)
	return p == f.path ||
		strings.HasPrefix(f.path, p+"/") ||
		strings.HasPrefix(p, f.path+"/")
}

func normalizePath(p string) string {
	var b strings.Builder
	depth := 0
	for _, c := range p {
		switch {
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(c)
		}
	}
	segs := strings.Split(strings.Trim(b.String(), "/"), "/")
	for i, s := range segs {
		if _, local, ok := strings.Cut(s, ":"); ok {
			segs[i] = local
		}
	}
	return "/" + strings.Join(segs, "/")
}
