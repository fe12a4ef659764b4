package schema

import (
	"fmt"
	"strings"
)

// EvalIfFeature evaluates a YANG if-feature expression. Identifiers reach
// enabled as written, prefix included, so the caller can resolve the prefix
// against the module the expression appears in.
func EvalIfFeature(expr string, enabled func(string) bool) (bool, error) {
	p := &featureExprParser{tokens: tokenizeFeatureExpr(expr), enabled: enabled}
	if len(p.tokens) == 0 {
		return false, fmt.Errorf("empty if-feature expression")
	}
	v, err := p.parseOr()
	if err != nil {
		return false, fmt.Errorf("if-feature %q: %w", expr, err)
	}
	if p.pos != len(p.tokens) {
		return false, fmt.Errorf("if-feature %q: unexpected %q", expr, p.tokens[p.pos])
	}
	return v, nil
}

func tokenizeFeatureExpr(expr string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch r {
		case '(', ')':
			flush()
			tokens = append(tokens, string(r))
		case ' ', '\t', '\n', '\r', '"', '\'':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

type featureExprParser struct {
	tokens  []string
	pos     int
	enabled func(string) bool
}

func (p *featureExprParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *featureExprParser) parseOr() (bool, error) {
	left, err := p.parseAnd()
	if err != nil {
		return false, err
	}
	for p.peek() == "or" {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return false, err
		}
		left = left || right
	}
	return left, nil
}

func (p *featureExprParser) parseAnd() (bool, error) {
	left, err := p.parseFactor()
	if err != nil {
		return false, err
	}
	for p.peek() == "and" {
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return false, err
		}
		left = left && right
	}
	return left, nil
}

func (p *featureExprParser) parseFactor() (bool, error) {
	tok := p.peek()
	switch tok {
	case "":
		return false, fmt.Errorf("unexpected end of expression")
	case "not":
		p.pos++
		v, err := p.parseFactor()
		return !v, err
	case "(":
		p.pos++
		v, err := p.parseOr()
		if err != nil {
			return false, err
		}
		if p.peek() != ")" {
			return false, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case ")", "and", "or":
		return false, fmt.Errorf("unexpected %q", tok)
	}
	p.pos++
	return p.enabled(tok), nil
}

// featureSet tracks enabled features and answers if-feature guards.
type featureSet struct {
	declared map[string]bool
	enabled  map[string]bool
}

func newFeatureSet(declared []string) *featureSet {
	fs := &featureSet{declared: make(map[string]bool), enabled: make(map[string]bool)}
	for _, name := range declared {
		fs.declared[name] = true
	}
	return fs
}

func (fs *featureSet) enable(name string) error {
	if !fs.declared[name] {
		return fmt.Errorf("feature %q is not declared", name)
	}
	fs.enabled[name] = true
	return nil
}

func (fs *featureSet) isEnabled(name string) bool {
	return fs.enabled[name]
}

// unprefixed answers identifiers for modules without imports, where any
// prefix can only name the module itself.
func (fs *featureSet) unprefixed(tok string) bool {
	if i := strings.IndexByte(tok, ':'); i >= 0 {
		tok = tok[i+1:]
	}
	return fs.enabled[tok]
}

// visible reports whether every guard holds. An unparsable guard hides the
// node.
func (fs *featureSet) visible(guards []string) bool {
	for _, g := range guards {
		if !guardHolds(g, fs.unprefixed) {
			return false
		}
	}
	return true
}

func guardHolds(expr string, enabled func(string) bool) bool {
	ok, err := EvalIfFeature(expr, enabled)
	return err == nil && ok
}
