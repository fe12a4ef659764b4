package primitives

import (
	"fmt"
	"iter"
	"math/rand"
)

// Union delegates to one generator per member type. Each sample re-selects
// a member uniformly.
type Union struct {
	base
	members []Generator
}

// NewUnion returns a union over members. Every member must come from this
// package.
func NewUnion(name string, members []Generator, opts ...Option) (*Union, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("union %s: no member types", name)
	}
	for i, m := range members {
		if _, ok := m.(sampler); !ok {
			return nil, fmt.Errorf("union %s: member %d (%T) cannot be sampled", name, i, m)
		}
	}
	o := buildOptions(opts)
	g := &Union{base: newBase(name, o), members: append([]Generator(nil), members...)}
	if o.hasDefault {
		g.initial = o.def
	} else {
		r := g.initRand()
		g.initial = g.members[r.Intn(len(g.members))].InitialValue()
	}
	return g, nil
}

// Members returns the member generators in declaration order.
func (g *Union) Members() []Generator { return append([]Generator(nil), g.members...) }

func (g *Union) Mutations() iter.Seq[string] { return g.mutations(g) }

func (g *Union) sample(r *rand.Rand) (string, bool) {
	m := g.members[r.Intn(len(g.members))]
	return m.(sampler).sample(r)
}
