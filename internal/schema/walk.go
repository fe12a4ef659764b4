package schema

import (
	"sort"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
)

// goyang merges groupings and augments into Entry.Dir and keeps only the
// guards written on each node itself. The walk below goes back to the
// statements so children keep their schema order and inherit the
// if-feature guards of every uses, refine, augment, choice and case above
// them.

var dataKeywords = map[string]bool{
	"container": true, "list": true, "leaf": true, "leaf-list": true,
	"choice": true, "case": true, "rpc": true, "action": true,
	"anydata": true, "anyxml": true, "notification": true,
}

var builtinTypes = map[string]bool{
	"binary": true, "bits": true, "boolean": true, "decimal64": true,
	"empty": true, "enumeration": true, "identityref": true,
	"instance-identifier": true, "int8": true, "int16": true, "int32": true,
	"int64": true, "leafref": true, "string": true, "uint8": true,
	"uint16": true, "uint32": true, "uint64": true, "union": true,
}

// modContext is the module or submodule a statement is written in.
type modContext struct {
	// name is the module that owns the features; the belongs-to module
	// for a submodule.
	name    string
	prefix  string
	imports map[string]string
	stmt    *yang.Statement
}

func newModContext(st *yang.Statement) *modContext {
	mc := &modContext{name: st.Argument, imports: make(map[string]string), stmt: st}
	for _, s := range st.SubStatements() {
		switch s.Keyword {
		case "prefix":
			mc.prefix = s.Argument
		case "belongs-to":
			mc.name = s.Argument
			if p := substatement(s, "prefix"); p != nil {
				mc.prefix = p.Argument
			}
		case "import":
			if p := substatement(s, "prefix"); p != nil {
				mc.imports[p.Argument] = s.Argument
			}
		}
	}
	return mc
}

// module returns the module a prefixed identifier refers to, or "" when the
// prefix is not known here.
func (mc *modContext) module(prefix string) string {
	if prefix == "" || prefix == mc.prefix {
		return mc.name
	}
	return mc.imports[prefix]
}

func (mc *modContext) guards(st *yang.Statement) []guard {
	var out []guard
	for _, s := range substatements(st, "if-feature") {
		out = append(out, guard{expr: s.Argument, mod: mc})
	}
	return out
}

// guard is an if-feature expression and the module it was written in.
type guard struct {
	expr string
	mod  *modContext
}

// walkCtx locates a statement: its module, the statements enclosing it
// (outermost first) and the refines of the uses it was expanded from.
type walkCtx struct {
	mod     *modContext
	chain   []*yang.Statement
	refines []refineScope
}

// refineScope holds refine guards keyed by path relative to the uses;
// prefix is the path walked since the uses.
type refineScope struct {
	guards map[string][]guard
	prefix string
}

func (c walkCtx) enter(st *yang.Statement) walkCtx {
	if st == nil {
		return c
	}
	chain := make([]*yang.Statement, len(c.chain), len(c.chain)+1)
	copy(chain, c.chain)
	c.chain = append(chain, st)
	return c
}

func (c walkCtx) descend(name string) walkCtx {
	if len(c.refines) == 0 {
		return c
	}
	refines := make([]refineScope, len(c.refines))
	for i, r := range c.refines {
		refines[i] = refineScope{guards: r.guards, prefix: r.prefix + name + "/"}
	}
	c.refines = refines
	return c
}

func (c walkCtx) refined(name string) []guard {
	var out []guard
	for _, r := range c.refines {
		out = append(out, r.guards[r.prefix+name]...)
	}
	return out
}

// member is one child found by the walk, before visibility is applied.
type member struct {
	entry  *yang.Entry
	stmt   *yang.Statement
	guards []guard
	ctx    walkCtx
}

func (c member) inner() walkCtx { return c.ctx.descend(c.entry.Name) }

// collect returns the children of e in schema order: body statements with
// uses expanded in place, then augments in the order goyang applied them,
// then anything left in e.Dir by name.
func (m *YangModule) collect(e *yang.Entry, body *yang.Statement, ctx walkCtx) []member {
	if e == nil || len(e.Dir) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(e.Dir))
	var out []member
	if body != nil {
		m.expand(e.Dir, body, ctx, nil, seen, &out)
	}
	for _, a := range e.Augmented {
		st := entryStatement(a)
		if st == nil {
			continue
		}
		actx := walkCtx{mod: m.contextOf(a.Node)}
		m.expand(e.Dir, st, actx, actx.mod.guards(st), seen, &out)
	}
	var rest []string
	for name := range e.Dir {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		c := e.Dir[name]
		st := entryStatement(c)
		out = append(out, member{entry: c, stmt: st, guards: m.own.guards(st), ctx: walkCtx{mod: m.own}})
	}
	return out
}

func (m *YangModule) expand(dir map[string]*yang.Entry, body *yang.Statement, ctx walkCtx, inherited []guard, seen map[string]bool, out *[]member) {
	inner := ctx.enter(body)
	for _, s := range body.SubStatements() {
		switch {
		case dataKeywords[s.Keyword]:
			c, ok := dir[s.Argument]
			if !ok || seen[s.Argument] {
				continue
			}
			seen[s.Argument] = true
			guards := append(append(append([]guard(nil), inherited...), ctx.mod.guards(s)...), inner.refined(s.Argument)...)
			*out = append(*out, member{entry: c, stmt: s, guards: guards, ctx: inner})
		case s.Keyword == "uses":
			g, gctx, ok := m.findDef("grouping", s.Argument, inner)
			if !ok {
				continue
			}
			gctx.refines = append(append([]refineScope(nil), inner.refines...), refinesOf(s, ctx.mod))
			guards := append(append([]guard(nil), inherited...), ctx.mod.guards(s)...)
			m.expand(dir, g, gctx, guards, seen, out)
		}
	}
}

func refinesOf(uses *yang.Statement, mc *modContext) refineScope {
	r := refineScope{guards: make(map[string][]guard)}
	for _, s := range substatements(uses, "refine") {
		if g := mc.guards(s); len(g) > 0 {
			key := stripPrefixes(s.Argument)
			r.guards[key] = append(r.guards[key], g...)
		}
	}
	return r
}

func stripPrefixes(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		_, parts[i] = splitPrefix(p)
	}
	return strings.Join(parts, "/")
}

func splitPrefix(id string) (prefix, name string) {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// nodes applies visibility to members and maps them to Nodes, flattening
// choice and case and skipping notifications and anydata.
func (m *YangModule) nodes(members []member, parentPath string) []Node {
	var out []Node
	for _, c := range members {
		if !m.visible(c.guards) {
			continue
		}
		e := c.entry
		switch {
		case e.Kind == yang.NotificationEntry, e.Kind == yang.InputEntry, e.Kind == yang.OutputEntry:
			continue
		case e.RPC != nil:
			out = append(out, m.node(c, KindOperation, parentPath))
		case e.IsChoice():
			out = append(out, m.choice(c, parentPath)...)
		case e.IsCase():
			out = append(out, m.nodes(m.collect(e, c.stmt, c.inner()), parentPath)...)
		case e.IsList():
			out = append(out, m.node(c, KindList, parentPath))
		case e.IsLeaf(), e.IsLeafList():
			out = append(out, m.node(c, KindLeaf, parentPath))
		case e.Kind == yang.DirectoryEntry:
			out = append(out, m.node(c, KindContainer, parentPath))
		}
	}
	return out
}

func (m *YangModule) node(c member, kind Kind, parentPath string) *yangNode {
	return &yangNode{m: m, e: c.entry, stmt: c.stmt, ctx: c.inner(), kind: kind, path: childPath(m, parentPath, c.entry.Name)}
}

// choice expands the selected case: the default case when it is visible,
// else the first visible case.
func (m *YangModule) choice(c member, parentPath string) []Node {
	var cases []member
	for _, cs := range m.collect(c.entry, c.stmt, c.inner()) {
		if m.visible(cs.guards) {
			cases = append(cases, cs)
		}
	}
	if len(cases) == 0 {
		return nil
	}
	sel := cases[0]
	if def := substatement(c.stmt, "default"); def != nil {
		for _, cs := range cases {
			if cs.entry.Name == def.Argument {
				sel = cs
				break
			}
		}
	}
	if !sel.entry.IsCase() || (sel.stmt != nil && sel.stmt.Keyword != "case") {
		// Shorthand case: the statement is the data node itself.
		data := sel.entry
		if data.IsCase() {
			if d, ok := data.Dir[data.Name]; ok {
				data = d
			}
		}
		sel.entry = data
		sel.guards = nil
		return m.nodes([]member{sel}, parentPath)
	}
	return m.nodes(m.collect(sel.entry, sel.stmt, sel.inner()), parentPath)
}

func (m *YangModule) visible(guards []guard) bool {
	for _, g := range guards {
		g := g
		if !guardHolds(g.expr, func(tok string) bool {
			prefix, name := splitPrefix(tok)
			return g.mod.module(prefix) == m.mod.Name && m.set.isEnabled(name)
		}) {
			return false
		}
	}
	return true
}

// findDef resolves a grouping or typedef by name: enclosing statements
// innermost first, then the module and its submodules, or the imported
// module a prefix names.
func (m *YangModule) findDef(keyword, ref string, ctx walkCtx) (*yang.Statement, walkCtx, bool) {
	prefix, name := splitPrefix(ref)
	if prefix != "" && prefix != ctx.mod.prefix {
		target := m.contextByName(ctx.mod.imports[prefix])
		if target == nil {
			return nil, walkCtx{}, false
		}
		return m.moduleDef(keyword, name, target)
	}
	for i := len(ctx.chain) - 1; i >= 0; i-- {
		if d := namedSubstatement(ctx.chain[i], keyword, name); d != nil {
			return d, walkCtx{mod: ctx.mod, chain: ctx.chain[: i+1 : i+1]}, true
		}
	}
	return m.moduleDef(keyword, name, ctx.mod)
}

func (m *YangModule) moduleDef(keyword, name string, mc *modContext) (*yang.Statement, walkCtx, bool) {
	scopes := []*modContext{mc}
	if owner := m.contextByName(mc.name); owner != nil {
		scopes = append(scopes, owner)
		for _, inc := range substatements(owner.stmt, "include") {
			if sub := m.contextByName(inc.Argument); sub != nil {
				scopes = append(scopes, sub)
			}
		}
	}
	for _, sc := range scopes {
		if d := namedSubstatement(sc.stmt, keyword, name); d != nil {
			return d, walkCtx{mod: sc, chain: []*yang.Statement{sc.stmt}}, true
		}
	}
	return nil, walkCtx{}, false
}

// builtinType follows typedefs from a type statement to the built-in type
// statement it derives from. It returns nil when the chain cannot be
// followed.
func (m *YangModule) builtinType(st *yang.Statement, ctx walkCtx) (*yang.Statement, walkCtx) {
	for depth := 0; st != nil && depth < 32; depth++ {
		if builtinTypes[st.Argument] {
			return st, ctx
		}
		td, tctx, ok := m.findDef("typedef", st.Argument, ctx)
		if !ok {
			return nil, ctx
		}
		st, ctx = substatement(td, "type"), tctx.enter(td)
	}
	return nil, ctx
}

func (m *YangModule) contextFor(st *yang.Statement) *modContext {
	if mc, ok := m.scopes[st]; ok {
		return mc
	}
	mc := newModContext(st)
	m.scopes[st] = mc
	return mc
}

func (m *YangModule) contextByName(name string) *modContext {
	if name == "" {
		return nil
	}
	if mod, ok := m.ms.Modules[name]; ok {
		return m.contextFor(mod.Statement())
	}
	if sub, ok := m.ms.SubModules[name]; ok {
		return m.contextFor(sub.Statement())
	}
	return nil
}

func (m *YangModule) contextOf(n yang.Node) *modContext {
	if root := yang.RootNode(n); root != nil && root.Statement() != nil {
		return m.contextFor(root.Statement())
	}
	return m.own
}

func entryStatement(e *yang.Entry) *yang.Statement {
	if e == nil || e.Node == nil {
		return nil
	}
	return e.Node.Statement()
}

func substatement(st *yang.Statement, keyword string) *yang.Statement {
	if st == nil {
		return nil
	}
	for _, s := range st.SubStatements() {
		if s.Keyword == keyword {
			return s
		}
	}
	return nil
}

func substatements(st *yang.Statement, keyword string) []*yang.Statement {
	if st == nil {
		return nil
	}
	var out []*yang.Statement
	for _, s := range st.SubStatements() {
		if s.Keyword == keyword {
			out = append(out, s)
		}
	}
	return out
}

func namedSubstatement(st *yang.Statement, keyword, name string) *yang.Statement {
	for _, s := range substatements(st, keyword) {
		if s.Argument == name {
			return s
		}
	}
	return nil
}
