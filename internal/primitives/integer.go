package primitives

import (
	"fmt"
	"iter"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/tturner/yangfuzz/internal/errors"
)

// Int generates signed integers of a fixed bit width.
type Int struct {
	base
	bits     int
	min, max int64
}

// NewInt returns a signed integer generator. bits is 8, 16, 32 or 64.
func NewInt(bits int, name string, opts ...Option) (*Int, error) {
	if !validWidth(bits) {
		return nil, fmt.Errorf("unsupported integer width %d", bits)
	}
	o := buildOptions(opts)
	hi := int64(math.MaxInt64 >> (64 - bits))
	lo := -hi - 1

	min, err := parseSigned(o.min, lo, hi, lo, bits)
	if err != nil {
		return nil, fmt.Errorf("int%d %s: min: %w", bits, name, err)
	}
	max, err := parseSigned(o.max, lo, hi, hi, bits)
	if err != nil {
		return nil, fmt.Errorf("int%d %s: max: %w", bits, name, err)
	}
	if min > max {
		return nil, fmt.Errorf("int%d %s: %d..%d: %w", bits, name, min, max, errors.ErrInvalidBounds)
	}

	g := &Int{base: newBase(name, o), bits: bits, min: min, max: max}
	if o.hasDefault {
		g.initial = o.def
	} else {
		g.initial, _ = g.sample(g.initRand())
	}
	return g, nil
}

func NewInt8(name string, opts ...Option) (*Int, error)  { return NewInt(8, name, opts...) }
func NewInt16(name string, opts ...Option) (*Int, error) { return NewInt(16, name, opts...) }
func NewInt32(name string, opts ...Option) (*Int, error) { return NewInt(32, name, opts...) }
func NewInt64(name string, opts ...Option) (*Int, error) { return NewInt(64, name, opts...) }

// Bounds returns the inclusive value range.
func (g *Int) Bounds() (int64, int64) { return g.min, g.max }

func (g *Int) Mutations() iter.Seq[string] { return g.mutations(g) }

func (g *Int) sample(r *rand.Rand) (string, bool) {
	span := uint64(g.max) - uint64(g.min)
	var off uint64
	if span == math.MaxUint64 {
		off = r.Uint64()
	} else {
		off = uint64n(r, span+1)
	}
	return strconv.FormatInt(int64(uint64(g.min)+off), 10), true
}

// Uint generates unsigned integers of a fixed bit width.
type Uint struct {
	base
	bits     int
	min, max uint64
}

// NewUint returns an unsigned integer generator. bits is 8, 16, 32 or 64.
func NewUint(bits int, name string, opts ...Option) (*Uint, error) {
	if !validWidth(bits) {
		return nil, fmt.Errorf("unsupported integer width %d", bits)
	}
	o := buildOptions(opts)
	hi := uint64(math.MaxUint64) >> (64 - bits)

	min, err := parseUnsigned(o.min, hi, 0, bits)
	if err != nil {
		return nil, fmt.Errorf("uint%d %s: min: %w", bits, name, err)
	}
	max, err := parseUnsigned(o.max, hi, hi, bits)
	if err != nil {
		return nil, fmt.Errorf("uint%d %s: max: %w", bits, name, err)
	}
	if min > max {
		return nil, fmt.Errorf("uint%d %s: %d..%d: %w", bits, name, min, max, errors.ErrInvalidBounds)
	}

	g := &Uint{base: newBase(name, o), bits: bits, min: min, max: max}
	if o.hasDefault {
		g.initial = o.def
	} else {
		g.initial, _ = g.sample(g.initRand())
	}
	return g, nil
}

func NewUint8(name string, opts ...Option) (*Uint, error)  { return NewUint(8, name, opts...) }
func NewUint16(name string, opts ...Option) (*Uint, error) { return NewUint(16, name, opts...) }
func NewUint32(name string, opts ...Option) (*Uint, error) { return NewUint(32, name, opts...) }
func NewUint64(name string, opts ...Option) (*Uint, error) { return NewUint(64, name, opts...) }

// Bounds returns the inclusive value range.
func (g *Uint) Bounds() (uint64, uint64) { return g.min, g.max }

func (g *Uint) Mutations() iter.Seq[string] { return g.mutations(g) }

func (g *Uint) sample(r *rand.Rand) (string, bool) {
	span := g.max - g.min
	var off uint64
	if span == math.MaxUint64 {
		off = r.Uint64()
	} else {
		off = uint64n(r, span+1)
	}
	return strconv.FormatUint(g.min+off, 10), true
}

func validWidth(bits int) bool {
	return bits == 8 || bits == 16 || bits == 32 || bits == 64
}

// parseSigned resolves a bound string. Empty selects def; "min" and "max"
// select the width's extremes.
func parseSigned(s string, lo, hi, def int64, bits int) (int64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return def, nil
	case "min":
		return lo, nil
	case "max":
		return hi, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if isRangeErr(err) {
			return 0, fmt.Errorf("%s exceeds int%d: %w", s, bits, errors.ErrOutOfRange)
		}
		return 0, fmt.Errorf("invalid bound %q: %w", s, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d outside int%d range %d..%d: %w", v, bits, lo, hi, errors.ErrOutOfRange)
	}
	return v, nil
}

func parseUnsigned(s string, hi, def uint64, bits int) (uint64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return def, nil
	case "min":
		return 0, nil
	case "max":
		return hi, nil
	}
	if strings.HasPrefix(s, "-") {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil || isRangeErr(err) {
			if s != "-0" {
				return 0, fmt.Errorf("%s below 0 for uint%d: %w", s, bits, errors.ErrOutOfRange)
			}
			return 0, nil
		}
		return 0, fmt.Errorf("invalid bound %q", s)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		if isRangeErr(err) {
			return 0, fmt.Errorf("%s exceeds uint%d: %w", s, bits, errors.ErrOutOfRange)
		}
		return 0, fmt.Errorf("invalid bound %q: %w", s, err)
	}
	if v > hi {
		return 0, fmt.Errorf("%d outside uint%d range 0..%d: %w", v, bits, hi, errors.ErrOutOfRange)
	}
	return v, nil
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
