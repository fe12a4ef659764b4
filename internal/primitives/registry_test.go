package primitives

import (
	"slices"
	"testing"

	"github.com/tturner/yangfuzz/internal/errors"
	"github.com/tturner/yangfuzz/internal/schema"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		typ  *schema.Type
		want Restrictions
	}{
		{"nil", nil, Restrictions{}},
		{"length", &schema.Type{Base: schema.TypeString, Length: "1..32"}, Restrictions{Min: "1", Max: "32"}},
		{"range", &schema.Type{Base: schema.TypeInt8, Range: "-10..10"}, Restrictions{Min: "-10", Max: "10"}},
		{"length wins", &schema.Type{Length: "2..4", Range: "0..100"}, Restrictions{Min: "2", Max: "4"}},
		{"single value", &schema.Type{Length: "5"}, Restrictions{Min: "5", Max: "5"}},
		{"sentinels", &schema.Type{Range: "min..max"}, Restrictions{Min: "min", Max: "max"}},
		{"multi part", &schema.Type{Range: "1..4 | 10..20"}, Restrictions{Min: "1", Max: "20"}},
		{"first pattern only", &schema.Type{Patterns: []string{"[a-z]+", "[0-9]+"}}, Restrictions{Pattern: "[a-z]+"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.typ); got != tt.want {
				t.Fatalf("Extract = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewDispatch(t *testing.T) {
	tests := []struct {
		name string
		typ  *schema.Type
		want any
	}{
		{"int8", &schema.Type{Base: schema.TypeInt8}, &Int{}},
		{"int64", &schema.Type{Base: schema.TypeInt64, Range: "0..10"}, &Int{}},
		{"uint32", &schema.Type{Base: schema.TypeUint32}, &Uint{}},
		{"string", &schema.Type{Base: schema.TypeString, Length: "1..32"}, &String{}},
		{"enum", &schema.Type{Base: schema.TypeEnum, Enums: []string{"a", "b"}}, &Enum{}},
		{"bool", &schema.Type{Base: schema.TypeBool}, &Enum{}},
		{"empty", &schema.Type{Base: schema.TypeEmpty}, &Static{}},
		{"other", &schema.Type{Base: schema.TypeOther}, &String{}},
		{"union", &schema.Type{Base: schema.TypeUnion, Members: []*schema.Type{
			{Base: schema.TypeUint8}, {Base: schema.TypeString, Length: "1..4"},
		}}, &Union{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New("leaf", tt.typ, WithSeed(1))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			switch tt.want.(type) {
			case *Int:
				if _, ok := g.(*Int); !ok {
					t.Fatalf("got %T, want *Int", g)
				}
			case *Uint:
				if _, ok := g.(*Uint); !ok {
					t.Fatalf("got %T, want *Uint", g)
				}
			case *String:
				if _, ok := g.(*String); !ok {
					t.Fatalf("got %T, want *String", g)
				}
			case *Enum:
				if _, ok := g.(*Enum); !ok {
					t.Fatalf("got %T, want *Enum", g)
				}
			case *Static:
				if _, ok := g.(*Static); !ok {
					t.Fatalf("got %T, want *Static", g)
				}
			case *Union:
				if _, ok := g.(*Union); !ok {
					t.Fatalf("got %T, want *Union", g)
				}
			}
		})
	}
}

func TestNewAppliesRestrictions(t *testing.T) {
	g, err := New("name", &schema.Type{Base: schema.TypeString, Length: "1..32"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lo, hi := g.(*String).LengthBounds()
	if lo != 1 || hi != 32 {
		t.Fatalf("bounds = %d..%d, want 1..32", lo, hi)
	}

	if _, err := New("level", &schema.Type{Base: schema.TypeInt8, Range: "-129..0"}); !errors.Is(err, errors.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if _, err := New("x", nil); err == nil {
		t.Fatal("expected error for nil type")
	}
	if _, err := New("mode", &schema.Type{Base: schema.TypeEnum}); err == nil {
		t.Fatal("expected error for enum without labels")
	}
}

func TestNewUnmappedTypeKeepsLength(t *testing.T) {
	tests := []struct {
		name   string
		typ    *schema.Type
		lo, hi int
	}{
		{"binary length", &schema.Type{Base: schema.TypeOther, Length: "4"}, 4, 4},
		{"binary length range", &schema.Type{Base: schema.TypeOther, Length: "2..8"}, 2, 8},
		{"range ignored", &schema.Type{Base: schema.TypeOther, Range: "1..3"}, DefaultMinLength, DefaultMaxLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New("blob", tt.typ)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			s, ok := g.(*String)
			if !ok {
				t.Fatalf("got %T, want *String", g)
			}
			if lo, hi := s.LengthBounds(); lo != tt.lo || hi != tt.hi {
				t.Errorf("bounds = %d..%d, want %d..%d", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestNewUnionMembers(t *testing.T) {
	typ := &schema.Type{Base: schema.TypeUnion, Members: []*schema.Type{
		{Base: schema.TypeUint8, Range: "1..3"},
		{Base: schema.TypeEnum, Enums: []string{"unset"}},
	}}
	g, err := New("addr", typ, WithSeed(12), WithMaxMutations(40))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u := g.(*Union)
	members := u.Members()
	if len(members) != 2 || members[0].Name() != "addrchild0" || members[1].Name() != "addrchild1" {
		t.Fatalf("members = %v", members)
	}
	for v := range g.Mutations() {
		if !slices.Contains([]string{"1", "2", "3", "unset"}, v) {
			t.Fatalf("value %q outside union", v)
		}
	}

	again, err := New("addr", typ, WithSeed(12), WithMaxMutations(40))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(collect(g), collect(again)) {
		t.Fatal("seeded unions differ")
	}

	bad := &schema.Type{Base: schema.TypeUnion, Members: []*schema.Type{{Base: schema.TypeInt8, Range: "0..300"}}}
	if _, err := New("bad", bad); !errors.Is(err, errors.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestRegister(t *testing.T) {
	prev, had := registry[schema.TypeOther]
	t.Cleanup(func() {
		if had {
			registry[schema.TypeOther] = prev
		} else {
			delete(registry, schema.TypeOther)
		}
	})
	Register(schema.TypeOther, func(name string, _ *schema.Type, _ Restrictions, opts []Option) (Generator, error) {
		return NewStatic(name, "fixed", opts...), nil
	})
	g, err := New("x", &schema.Type{Base: schema.TypeOther})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.InitialValue() != "fixed" {
		t.Fatalf("initial = %q, want fixed", g.InitialValue())
	}
}
