package primitives

import (
	"regexp"
	"slices"
	"testing"

	"github.com/tturner/yangfuzz/internal/errors"
)

func TestStringDefaultLength(t *testing.T) {
	g, err := NewString("descr", WithSeed(9), WithMaxMutations(50))
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	lo, hi := g.LengthBounds()
	if lo != DefaultMinLength || hi != DefaultMaxLength {
		t.Fatalf("bounds = %d..%d, want %d..%d", lo, hi, DefaultMinLength, DefaultMaxLength)
	}
	values := collect(g)
	checkAdjacent(t, values)
	for _, v := range values {
		if len(v) < DefaultMinLength || len(v) > DefaultMaxLength {
			t.Fatalf("len(%q) = %d outside default bounds", v, len(v))
		}
	}
}

func TestStringPatternAndLength(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		min, max string
		check    string
	}{
		{"hex id", `[a-f]{3}[0-9]{2}`, "5", "5", `^[a-f]{3}[0-9]{2}$`},
		{"letters", `\p{L}+`, "1", "8", `^[a-zA-Z]+$`},
		{"letters and digits", `[\p{L}\p{N}]*`, "2", "6", `^[a-zA-Z0-9]*$`},
		{"interface", `eth[0-9]+`, "4", "6", `^eth[0-9]+$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewString("x", WithPattern(tt.pattern), WithBounds(tt.min, tt.max), WithSeed(11), WithMaxMutations(100))
			if err != nil {
				t.Fatalf("NewString: %v", err)
			}
			re := regexp.MustCompile(tt.check)
			lo, hi := g.LengthBounds()
			values := collect(g)
			if len(values) == 0 || len(values) > 100 {
				t.Fatalf("len = %d", len(values))
			}
			checkAdjacent(t, values)
			for _, v := range values {
				if !re.MatchString(v) {
					t.Fatalf("value %q does not match %s", v, tt.check)
				}
				if len(v) < lo || len(v) > hi {
					t.Fatalf("len(%q) = %d outside %d..%d", v, len(v), lo, hi)
				}
			}
		})
	}
}

func TestStringSeededReproducible(t *testing.T) {
	build := func() *String {
		g, err := NewString("x", WithPattern(`[a-z]{2,6}`), WithSeed(5), WithMaxMutations(20))
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}
		return g
	}
	a, b := collect(build()), collect(build())
	if !slices.Equal(a, b) {
		t.Fatalf("sequences differ:\n%v\n%v", a, b)
	}
}

func TestStringUnsatisfiable(t *testing.T) {
	_, err := NewString("x", WithPattern(`[a-z]{10}`), WithBounds("1", "4"))
	if !errors.Is(err, errors.ErrUnsatisfiable) {
		t.Fatalf("err = %v, want ErrUnsatisfiable", err)
	}
	_, err = NewString("x", WithPattern(`[a-z`))
	if !errors.Is(err, errors.ErrUnsatisfiable) {
		t.Fatalf("bad pattern err = %v, want ErrUnsatisfiable", err)
	}
}

func TestStringLengthErrors(t *testing.T) {
	if _, err := NewString("x", WithBounds("-1", "4")); !errors.Is(err, errors.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if _, err := NewString("x", WithBounds("8", "4")); !errors.Is(err, errors.ErrInvalidBounds) {
		t.Fatalf("err = %v, want ErrInvalidBounds", err)
	}
}

func TestStringUnboundedMax(t *testing.T) {
	g, err := NewString("x", WithBounds("1", "max"), WithSeed(2), WithMaxMutations(10))
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	for v := range g.Mutations() {
		if len(v) < 1 || len(v) > maxSynthesizedLength {
			t.Fatalf("len = %d outside 1..%d", len(v), maxSynthesizedLength)
		}
	}
}

func TestTranslatePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`\p{L}+`, `[a-zA-Z]+`},
		{`\p{N}{3}`, `[0-9]{3}`},
		{`[\p{L}\p{N}_-]*`, `[a-zA-Z0-9_-]*`},
		{`\d+\.\p{N}`, `\d+\.[0-9]`},
		{`[\]]\p{L}`, `[\]][a-zA-Z]`},
		{`plain`, `plain`},
	}
	for _, tt := range tests {
		if got := TranslatePattern(tt.in); got != tt.want {
			t.Errorf("TranslatePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
