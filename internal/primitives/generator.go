// Package primitives implements the typed value generators that back each
// leaf slot of a message skeleton.
//
// Every generator produces a finite mutation sequence: element 0 is the
// initial value, every later element is freshly sampled from the same value
// space, and a sample equal to the previously emitted value is skipped
// without counting against the budget. A seeded generator replays the same
// sequence on every call to Mutations.
package primitives

import (
	"iter"
	"math/rand"
	"sync/atomic"
	"time"
)

const (
	// DefaultMaxMutations bounds a sequence when WithMaxMutations is unset.
	DefaultMaxMutations = 1000
	// MaxPatternAttempts bounds pattern synthesis retries per value.
	MaxPatternAttempts = 1000
	// MaxDuplicateDraws ends a sequence after this many consecutive samples
	// equal to the previous value.
	MaxDuplicateDraws = 64

	// mutationStream separates the mutation stream from the stream used to
	// synthesize the initial value when a seed is set.
	mutationStream = 0x5DEECE66D
)

// Generator is a typed value generator for one leaf.
type Generator interface {
	Name() string
	InitialValue() string
	// Mutations returns at most the configured number of values, starting
	// with the initial value. No two adjacent values are equal.
	Mutations() iter.Seq[string]
	// Encode returns the wire representation of value.
	Encode(value string) []byte
}

// sampler draws one value from a generator's value space using r. It
// reports false when no value could be produced.
type sampler interface {
	sample(r *rand.Rand) (string, bool)
}

type options struct {
	def          string
	hasDefault   bool
	min, max     string
	pattern      string
	maxMutations int
	seed         int64
	seeded       bool
}

// Option configures a generator.
type Option func(*options)

// WithDefault sets the initial value instead of synthesizing one.
func WithDefault(value string) Option {
	return func(o *options) {
		o.def = value
		o.hasDefault = true
	}
}

// WithBounds sets numeric bounds for integers or byte-length bounds for
// strings. "min" and "max" select the type's extremes.
func WithBounds(min, max string) Option {
	return func(o *options) {
		o.min = min
		o.max = max
	}
}

// WithPattern constrains string values to a YANG pattern.
func WithPattern(pattern string) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithMaxMutations caps the length of the mutation sequence.
func WithMaxMutations(n int) Option {
	return func(o *options) {
		o.maxMutations = n
	}
}

// WithSeed makes the generator fully reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxMutations <= 0 {
		o.maxMutations = DefaultMaxMutations
	}
	return o
}

var unseededCounter atomic.Int64

// base carries the state shared by every generator variant.
type base struct {
	name         string
	initial      string
	maxMutations int
	seed         int64
	seeded       bool
	rng          *rand.Rand
}

func newBase(name string, o options) base {
	b := base{
		name:         name,
		maxMutations: o.maxMutations,
		seed:         o.seed,
		seeded:       o.seeded,
	}
	if !b.seeded {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano() + unseededCounter.Add(1)))
	}
	return b
}

func (b *base) Name() string         { return b.name }
func (b *base) InitialValue() string { return b.initial }

func (b *base) Encode(value string) []byte {
	return []byte(value)
}

// initRand returns the source used to synthesize the initial value.
func (b *base) initRand() *rand.Rand {
	if b.seeded {
		return rand.New(rand.NewSource(b.seed))
	}
	return b.rng
}

// mutationRand returns the source for one pass over the mutation sequence.
// Seeded generators restart from the same state on every pass.
func (b *base) mutationRand() *rand.Rand {
	if b.seeded {
		return rand.New(rand.NewSource(b.seed ^ mutationStream))
	}
	return b.rng
}

func (b *base) mutations(s sampler) iter.Seq[string] {
	return func(yield func(string) bool) {
		if b.maxMutations < 1 {
			return
		}
		last := b.initial
		if !yield(last) {
			return
		}
		r := b.mutationRand()
		emitted, dups := 1, 0
		for emitted < b.maxMutations {
			v, ok := s.sample(r)
			if !ok {
				return
			}
			if v == last {
				dups++
				if dups >= MaxDuplicateDraws {
					return
				}
				continue
			}
			dups = 0
			if !yield(v) {
				return
			}
			last = v
			emitted++
		}
	}
}

// uint64n returns a uniform value in [0, n). n must be non-zero.
func uint64n(r *rand.Rand, n uint64) uint64 {
	if n <= 1<<63-1 {
		return uint64(r.Int63n(int64(n)))
	}
	for {
		if v := r.Uint64(); v < n {
			return v
		}
	}
}
