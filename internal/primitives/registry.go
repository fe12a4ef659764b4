package primitives

import (
	"fmt"
	"strconv"

	"github.com/tturner/yangfuzz/internal/schema"
)

// Constructor builds the generator for one base kind. r holds the
// restrictions already extracted from t; opts carry the caller's options
// (seed, budget, default) and are applied after the restriction options.
type Constructor func(name string, t *schema.Type, r Restrictions, opts []Option) (Generator, error)

var registry = map[schema.BaseKind]Constructor{
	schema.TypeInt8:   intConstructor(8),
	schema.TypeInt16:  intConstructor(16),
	schema.TypeInt32:  intConstructor(32),
	schema.TypeInt64:  intConstructor(64),
	schema.TypeUint8:  uintConstructor(8),
	schema.TypeUint16: uintConstructor(16),
	schema.TypeUint32: uintConstructor(32),
	schema.TypeUint64: uintConstructor(64),
	schema.TypeString: newStringFor,
	schema.TypeEnum:   newEnumFor,
	schema.TypeEmpty:  newEmptyFor,
	schema.TypeBool:   newBoolFor,
}

// Register installs c for kind, replacing any previous constructor. It is
// meant for init-time extension and is not safe for concurrent use with New.
func Register(kind schema.BaseKind, c Constructor) {
	registry[kind] = c
}

// New builds the generator for a leaf of type t. Kinds without a
// registered constructor get an unconstrained string generator.
func New(name string, t *schema.Type, opts ...Option) (Generator, error) {
	if t == nil {
		return nil, fmt.Errorf("%s: no type", name)
	}
	r := Extract(t)
	if t.Base == schema.TypeUnion {
		return newUnionFor(name, t, r, opts)
	}
	c, ok := registry[t.Base]
	if !ok {
		// Unmapped types fuzz as strings. A length still bounds them; a
		// range does not describe string length.
		lengthOnly := Extract(&schema.Type{Length: t.Length, Patterns: t.Patterns})
		return NewString(name, withRestrictions(lengthOnly, opts)...)
	}
	return c(name, t, r, opts)
}

func withRestrictions(r Restrictions, opts []Option) []Option {
	return append(r.Options(), opts...)
}

func intConstructor(bits int) Constructor {
	return func(name string, _ *schema.Type, r Restrictions, opts []Option) (Generator, error) {
		return NewInt(bits, name, withRestrictions(r, opts)...)
	}
}

func uintConstructor(bits int) Constructor {
	return func(name string, _ *schema.Type, r Restrictions, opts []Option) (Generator, error) {
		return NewUint(bits, name, withRestrictions(r, opts)...)
	}
}

func newStringFor(name string, _ *schema.Type, r Restrictions, opts []Option) (Generator, error) {
	return NewString(name, withRestrictions(r, opts)...)
}

func newEnumFor(name string, t *schema.Type, _ Restrictions, opts []Option) (Generator, error) {
	return NewEnum(name, t.Enums, opts...)
}

func newBoolFor(name string, _ *schema.Type, _ Restrictions, opts []Option) (Generator, error) {
	return NewBool(name, opts...)
}

func newEmptyFor(name string, _ *schema.Type, _ Restrictions, opts []Option) (Generator, error) {
	return NewStatic(name, "", opts...), nil
}

// newUnionFor builds one member generator per member type. Members are
// named after the union and, when the union is seeded, get seeds derived
// from the union's seed so no two members share a stream.
func newUnionFor(name string, t *schema.Type, _ Restrictions, opts []Option) (Generator, error) {
	o := buildOptions(opts)
	members := make([]Generator, 0, len(t.Members))
	for i, mt := range t.Members {
		var mopts []Option
		if o.seeded {
			mopts = append(mopts, WithSeed(o.seed+int64(i)+1))
		}
		m, err := New(name+"child"+strconv.Itoa(i), mt, mopts...)
		if err != nil {
			return nil, fmt.Errorf("union %s: member %d: %w", name, i, err)
		}
		members = append(members, m)
	}
	return NewUnion(name, members, opts...)
}
