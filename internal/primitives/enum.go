package primitives

import (
	"fmt"
	"iter"
	"math/rand"

	"github.com/tturner/yangfuzz/internal/errors"
)

// Enum draws labels from a fixed set.
type Enum struct {
	base
	labels []string
}

// NewEnum returns a generator over labels. Bounds do not apply.
func NewEnum(name string, labels []string, opts ...Option) (*Enum, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("enumeration %s: no labels: %w", name, errors.ErrUnsatisfiable)
	}
	o := buildOptions(opts)
	g := &Enum{base: newBase(name, o), labels: append([]string(nil), labels...)}
	if o.hasDefault {
		g.initial = o.def
	} else {
		g.initial, _ = g.sample(g.initRand())
	}
	return g, nil
}

// NewBool returns an enumeration over "true" and "false".
func NewBool(name string, opts ...Option) (*Enum, error) {
	return NewEnum(name, []string{"true", "false"}, opts...)
}

// Labels returns the value space.
func (g *Enum) Labels() []string { return append([]string(nil), g.labels...) }

func (g *Enum) Mutations() iter.Seq[string] { return g.mutations(g) }

func (g *Enum) sample(r *rand.Rand) (string, bool) {
	return g.labels[r.Intn(len(g.labels))], true
}

// Static holds a single fixed value. It backs the YANG empty type, whose
// only value is the presence of the element.
type Static struct {
	base
}

// NewStatic returns a generator whose sequence is exactly one value.
func NewStatic(name, value string, opts ...Option) *Static {
	o := buildOptions(opts)
	g := &Static{base: newBase(name, o)}
	g.initial = value
	if o.hasDefault {
		g.initial = o.def
	}
	return g
}

func (g *Static) Mutations() iter.Seq[string] {
	return func(yield func(string) bool) {
		yield(g.initial)
	}
}

func (g *Static) sample(*rand.Rand) (string, bool) {
	return g.initial, true
}
