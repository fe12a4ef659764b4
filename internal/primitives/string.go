package primitives

import (
	"fmt"
	"iter"
	"math"
	"math/rand"
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"

	regen "github.com/zach-klippenstein/goregen"

	"github.com/tturner/yangfuzz/internal/errors"
)

const (
	DefaultMinLength = 10
	DefaultMaxLength = 256
	// maxSynthesizedLength caps random string length when the declared
	// maximum is far larger (e.g. length "0..max").
	maxSynthesizedLength = 4096
	// maxRepeat caps unbounded pattern repeats (+, *) during synthesis.
	maxRepeat = 64
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789abcdefghijklmnopqrstuvwxyz"

// String generates strings bounded by byte length and, optionally, a
// pattern.
type String struct {
	base
	minLen, maxLen int
	pattern        string
	matcher        *regexp.Regexp

	genRand *rand.Rand
	gen     regen.Generator
}

// NewString returns a string generator. Without bounds the length lies in
// DefaultMinLength..DefaultMaxLength.
func NewString(name string, opts ...Option) (*String, error) {
	o := buildOptions(opts)
	minLen, err := parseLength(o.min, DefaultMinLength)
	if err != nil {
		return nil, fmt.Errorf("string %s: min length: %w", name, err)
	}
	maxLen, err := parseLength(o.max, DefaultMaxLength)
	if err != nil {
		return nil, fmt.Errorf("string %s: max length: %w", name, err)
	}
	if minLen > maxLen {
		return nil, fmt.Errorf("string %s: length %d..%d: %w", name, minLen, maxLen, errors.ErrInvalidBounds)
	}

	g := &String{base: newBase(name, o), minLen: minLen, maxLen: maxLen}
	if o.pattern != "" {
		g.pattern = TranslatePattern(o.pattern)
		g.matcher, err = regexp.Compile(`^(?:` + g.pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("string %s: pattern %q: %w: %w", name, o.pattern, errors.ErrUnsatisfiable, err)
		}
	}

	if o.hasDefault {
		g.initial = o.def
		return g, nil
	}
	v, ok := g.sample(g.initRand())
	if !ok {
		return nil, fmt.Errorf("string %s: no value of length %d..%d matches %q after %d attempts: %w",
			name, minLen, maxLen, o.pattern, MaxPatternAttempts, errors.ErrUnsatisfiable)
	}
	g.initial = v
	return g, nil
}

// LengthBounds returns the inclusive byte-length range.
func (g *String) LengthBounds() (int, int) { return g.minLen, g.maxLen }

// Pattern returns the translated pattern, or "" when unconstrained.
func (g *String) Pattern() string { return g.pattern }

// Valid reports whether v satisfies the length bounds and pattern.
func (g *String) Valid(v string) bool {
	if len(v) < g.minLen || len(v) > g.maxLen {
		return false
	}
	return g.matcher == nil || g.matcher.MatchString(v)
}

func (g *String) Mutations() iter.Seq[string] { return g.mutations(g) }

func (g *String) sample(r *rand.Rand) (string, bool) {
	if g.matcher == nil {
		return g.randomString(r), true
	}
	gen, err := g.generatorFor(r)
	if err != nil {
		return "", false
	}
	for i := 0; i < MaxPatternAttempts; i++ {
		if v := gen.Generate(); g.Valid(v) {
			return v, true
		}
	}
	return "", false
}

func (g *String) randomString(r *rand.Rand) string {
	hi := g.maxLen
	if hi > maxSynthesizedLength {
		hi = max(g.minLen, maxSynthesizedLength)
	}
	n := g.minLen + r.Intn(hi-g.minLen+1)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[r.Intn(len(alphanumeric))]
	}
	return string(b)
}

// generatorFor returns a pattern generator drawing from r. The last one is
// cached since a pass over the sequence uses a single source.
func (g *String) generatorFor(r *rand.Rand) (regen.Generator, error) {
	if g.gen != nil && g.genRand == r {
		return g.gen, nil
	}
	repeat := min(g.maxLen, maxRepeat)
	repeat = max(repeat, g.minLen, 1)
	gen, err := regen.NewGenerator(g.pattern, &regen.GeneratorArgs{
		RngSource:               r,
		Flags:                   syntax.Perl,
		MaxUnboundedRepeatCount: uint(repeat),
	})
	if err != nil {
		return nil, err
	}
	g.gen, g.genRand = gen, r
	return gen, nil
}

// TranslatePattern rewrites the YANG letter and digit classes \p{L} and
// \p{N} into ASCII classes the generator understands. Inside a bracket
// expression the ranges are inserted without brackets.
func TranslatePattern(p string) string {
	var out strings.Builder
	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\' && i+1 < len(p):
			rest := p[i:]
			switch {
			case strings.HasPrefix(rest, `\p{L}`):
				if inClass {
					out.WriteString("a-zA-Z")
				} else {
					out.WriteString("[a-zA-Z]")
				}
				i += len(`\p{L}`) - 1
			case strings.HasPrefix(rest, `\p{N}`):
				if inClass {
					out.WriteString("0-9")
				} else {
					out.WriteString("[0-9]")
				}
				i += len(`\p{N}`) - 1
			default:
				out.WriteByte(c)
				out.WriteByte(p[i+1])
				i++
			}
		case c == '[':
			inClass = true
			out.WriteByte(c)
		case c == ']':
			inClass = false
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

func parseLength(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return def, nil
	case "min":
		return 0, nil
	case "max":
		return math.MaxInt, nil
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative length %s: %w", s, errors.ErrOutOfRange)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		if isRangeErr(err) {
			return math.MaxInt, nil
		}
		return 0, fmt.Errorf("invalid length %q: %w", s, err)
	}
	if v > math.MaxInt {
		return math.MaxInt, nil
	}
	return int(v), nil
}
