package message

import (
	"fmt"
	"hash/fnv"

	"github.com/tturner/yangfuzz/internal/primitives"
	"github.com/tturner/yangfuzz/internal/schema"
)

// Options control one assembly.
type Options struct {
	// Namespace overrides the module namespace on top-level envelopes.
	Namespace string
	// Filter is a data path; only its ancestors, itself and its
	// descendants are emitted.
	Filter string
	// Seed is used when Seeded is set. Each leaf gets a seed derived from
	// Seed and its path.
	Seed   int64
	Seeded bool
	// MaxMutations caps every generator's sequence. Zero selects the
	// generator default.
	MaxMutations int
}

// Assemble walks m depth-first in declaration order and returns its
// skeleton. Read-only nodes and nodes outside the filter are skipped with
// their subtrees. A filter that matches nothing yields an empty skeleton.
// The module's feature set must be final before Assemble is called.
func Assemble(m schema.Module, opts Options) (*Skeleton, error) {
	ns := opts.Namespace
	if ns == "" {
		ns = m.Namespace()
	}
	w := &walker{opts: opts, filter: newFilter(opts.Filter), namespace: ns}
	sk := &Skeleton{Module: m.Name(), Namespace: ns}
	for _, n := range m.Children() {
		if w.skip(n) {
			continue
		}
		e := Entry{Name: n.Name(), Path: n.Path()}
		if err := w.visit(&e, n, true); err != nil {
			return nil, err
		}
		sk.Entries = append(sk.Entries, e)
	}
	return sk, nil
}

type walker struct {
	opts      Options
	filter    filter
	namespace string
}

func (w *walker) skip(n schema.Node) bool {
	return n.ReadOnly() || !w.filter.includes(n.Path())
}

func (w *walker) visit(e *Entry, n schema.Node, top bool) error {
	open := "<" + n.Name() + ">"
	if top {
		open = fmt.Sprintf(`<%s xmlns="%s">`, n.Name(), w.namespace)
	}
	closing := "</" + n.Name() + ">"

	switch n.Kind() {
	case schema.KindLeaf:
		g, err := primitives.New(n.Name(), n.Type(), w.generatorOptions(n.Path())...)
		if err != nil {
			return fmt.Errorf("leaf %s: %w", n.Path(), err)
		}
		e.Fragments = append(e.Fragments,
			Fragment{Literal: open},
			Fragment{Slot: &Slot{Path: n.Path(), Generator: g}},
			Fragment{Literal: closing},
		)
	case schema.KindContainer, schema.KindList, schema.KindOperation:
		e.Fragments = append(e.Fragments, Fragment{Literal: open})
		for _, c := range n.Children() {
			if w.skip(c) {
				continue
			}
			if err := w.visit(e, c, false); err != nil {
				return err
			}
		}
		e.Fragments = append(e.Fragments, Fragment{Literal: closing})
	default:
		return fmt.Errorf("node %s: unknown kind %v", n.Path(), n.Kind())
	}
	return nil
}

func (w *walker) generatorOptions(path string) []primitives.Option {
	var opts []primitives.Option
	if w.opts.MaxMutations > 0 {
		opts = append(opts, primitives.WithMaxMutations(w.opts.MaxMutations))
	}
	if w.opts.Seeded {
		opts = append(opts, primitives.WithSeed(LeafSeed(w.opts.Seed, path)))
	}
	return opts
}

// LeafSeed derives the seed of the leaf at path from a run seed.
func LeafSeed(seed int64, path string) int64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return seed ^ int64(h.Sum64())
}
