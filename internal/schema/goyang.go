package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
	"go.uber.org/multierr"
)

// YangModule adapts a goyang module to Module.
type YangModule struct {
	mod    *yang.Module
	ms     *yang.Modules
	entry  *yang.Entry
	source []byte
	path   string
	set    *featureSet
	own    *modContext
	scopes map[*yang.Statement]*modContext
}

// Load reads the named module from searchDirs. module is either a module
// name or a path to a .yang file. Imports are resolved from searchDirs and
// their subdirectories.
func Load(searchDirs []string, module string) (*YangModule, error) {
	file, err := findModuleFile(searchDirs, module)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	ms := yang.NewModules()
	dirs := append([]string{filepath.Dir(file)}, searchDirs...)
	for _, dir := range dirs {
		paths, err := yang.PathsWithModules(dir)
		if err != nil {
			return nil, fmt.Errorf("scan search directory %s: %w", dir, err)
		}
		ms.AddPath(paths...)
	}
	if err := ms.Read(file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	if errs := ms.Process(); len(errs) > 0 {
		return nil, fmt.Errorf("process %s: %w", file, multierr.Combine(errs...))
	}

	name := moduleNameFromFile(file)
	mod, ok := ms.Modules[name]
	if !ok {
		return nil, fmt.Errorf("module %s not defined in %s", name, file)
	}
	return newYangModule(ms, mod, source, file), nil
}

// Parse builds a module from YANG text. Imports are resolved from
// searchDirs.
func Parse(source, filename string, searchDirs ...string) (*YangModule, error) {
	ms := yang.NewModules()
	for _, dir := range searchDirs {
		paths, err := yang.PathsWithModules(dir)
		if err != nil {
			return nil, fmt.Errorf("scan search directory %s: %w", dir, err)
		}
		ms.AddPath(paths...)
	}
	if err := ms.Parse(source, filename); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if errs := ms.Process(); len(errs) > 0 {
		return nil, fmt.Errorf("process %s: %w", filename, multierr.Combine(errs...))
	}
	name := moduleNameFromFile(filename)
	mod, ok := ms.Modules[name]
	if !ok {
		return nil, fmt.Errorf("module %s not defined in %s", name, filename)
	}
	return newYangModule(ms, mod, []byte(source), filename), nil
}

func newYangModule(ms *yang.Modules, mod *yang.Module, source []byte, path string) *YangModule {
	var declared []string
	for _, f := range mod.Feature {
		declared = append(declared, f.Name)
	}
	m := &YangModule{
		mod:    mod,
		ms:     ms,
		entry:  yang.ToEntry(mod),
		source: source,
		path:   path,
		set:    newFeatureSet(declared),
		scopes: make(map[*yang.Statement]*modContext),
	}
	m.own = m.contextFor(mod.Statement())
	return m
}

func (m *YangModule) Name() string { return m.mod.Name }

func (m *YangModule) Namespace() string {
	if m.mod.Namespace == nil {
		return ""
	}
	return m.mod.Namespace.Name
}

func (m *YangModule) Source() []byte { return m.source }

// File is the path the module was read from.
func (m *YangModule) File() string { return m.path }

func (m *YangModule) Features() []string {
	names := make([]string, 0, len(m.mod.Feature))
	for _, f := range m.mod.Feature {
		names = append(names, f.Name)
	}
	return names
}

func (m *YangModule) EnableFeature(name string) error {
	return m.set.enable(name)
}

func (m *YangModule) Children() []Node {
	return m.nodes(m.collect(m.entry, m.mod.Statement(), walkCtx{mod: m.own}), "")
}

func childPath(m *YangModule, parentPath, name string) string {
	if parentPath == "" {
		return "/" + m.mod.Name + ":" + name
	}
	return parentPath + "/" + name
}

type yangNode struct {
	m    *YangModule
	e    *yang.Entry
	stmt *yang.Statement
	ctx  walkCtx
	kind Kind
	path string
	typ  *Type
}

func (n *yangNode) Name() string   { return n.e.Name }
func (n *yangNode) Kind() Kind     { return n.kind }
func (n *yangNode) ReadOnly() bool { return n.e.ReadOnly() }
func (n *yangNode) Path() string   { return n.path }

func (n *yangNode) Children() []Node {
	switch n.kind {
	case KindLeaf:
		return nil
	case KindOperation:
		if n.e.RPC == nil || n.e.RPC.Input == nil {
			return nil
		}
		ctx := n.ctx.enter(n.stmt).descend("input")
		return n.m.nodes(n.m.collect(n.e.RPC.Input, substatement(n.stmt, "input"), ctx), n.path)
	case KindList:
		return keysFirst(n.m.nodes(n.m.collect(n.e, n.stmt, n.ctx), n.path), n.e.Key)
	default:
		return n.m.nodes(n.m.collect(n.e, n.stmt, n.ctx), n.path)
	}
}

func (n *yangNode) Type() *Type {
	if n.kind != KindLeaf || n.e.Type == nil {
		return nil
	}
	if n.typ == nil {
		st, ctx := n.m.builtinType(substatement(n.stmt, "type"), n.ctx.enter(n.stmt))
		n.typ = n.m.convertType(n.e.Type, st, ctx)
	}
	return n.typ
}

// keysFirst moves the list keys to the front in key statement order.
func keysFirst(children []Node, key string) []Node {
	keys := strings.Fields(key)
	if len(keys) == 0 {
		return children
	}
	out := make([]Node, 0, len(children))
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		for _, c := range children {
			if c.Name() == k {
				out = append(out, c)
				isKey[k] = true
				break
			}
		}
	}
	for _, c := range children {
		if !isKey[c.Name()] {
			out = append(out, c)
		}
	}
	return out
}

var yangKinds = map[yang.TypeKind]BaseKind{
	yang.Yint8:   TypeInt8,
	yang.Yint16:  TypeInt16,
	yang.Yint32:  TypeInt32,
	yang.Yint64:  TypeInt64,
	yang.Yuint8:  TypeUint8,
	yang.Yuint16: TypeUint16,
	yang.Yuint32: TypeUint32,
	yang.Yuint64: TypeUint64,
	yang.Ystring: TypeString,
	yang.Yenum:   TypeEnum,
	yang.Yempty:  TypeEmpty,
	yang.Yunion:  TypeUnion,
	yang.Ybool:   TypeBool,
}

// convertType maps a resolved goyang type. st is the built-in type
// statement behind yt when known; it supplies declaration order for enums
// and union members.
func (m *YangModule) convertType(yt *yang.YangType, st *yang.Statement, ctx walkCtx) *Type {
	t := &Type{Base: TypeOther}
	if kind, ok := yangKinds[yt.Kind]; ok {
		t.Base = kind
	}
	if yt.Kind == yang.Ybinary && !unboundedLength(yt.Length) {
		t.Length = formatRange(yt.Length)
	}
	switch t.Base {
	case TypeString:
		if !unboundedLength(yt.Length) {
			t.Length = formatRange(yt.Length)
		}
		t.Patterns = append(t.Patterns, yt.Pattern...)
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		t.Range = formatRange(yt.Range)
	case TypeEnum:
		if st != nil && st.Argument == "enumeration" {
			for _, e := range st.SubStatements() {
				if e.Keyword == "enum" {
					t.Enums = append(t.Enums, e.Argument)
				}
			}
		}
		if len(t.Enums) == 0 && yt.Enum != nil {
			values := yt.Enum.ValueMap()
			keys := make([]int64, 0, len(values))
			for v := range values {
				keys = append(keys, v)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			for _, v := range keys {
				t.Enums = append(t.Enums, values[v])
			}
		}
	case TypeUnion:
		var members []*yang.Statement
		if st != nil && st.Argument == "union" {
			members = substatements(st, "type")
		}
		if len(members) != len(yt.Type) {
			members = nil
		}
		for i, mt := range yt.Type {
			var mst *yang.Statement
			mctx := ctx
			if members != nil {
				mst, mctx = m.builtinType(members[i], ctx.enter(st))
			}
			t.Members = append(t.Members, m.convertType(mt, mst, mctx))
		}
	}
	return t
}

func formatRange(r yang.YangRange) string {
	parts := make([]string, 0, len(r))
	for _, yr := range r {
		lo, hi := yr.Min.String(), yr.Max.String()
		if lo == hi {
			parts = append(parts, lo)
		} else {
			parts = append(parts, lo+".."+hi)
		}
	}
	return strings.Join(parts, " | ")
}

// unboundedLength reports the built-in string length, 0..18446744073709551615.
func unboundedLength(r yang.YangRange) bool {
	if len(r) == 0 {
		return true
	}
	return len(r) == 1 && r[0].Min.String() == "0" && r[0].Max.String() == "18446744073709551615"
}

func moduleNameFromFile(file string) string {
	name := strings.TrimSuffix(filepath.Base(file), ".yang")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return name
}

// findModuleFile resolves a module name to a file under searchDirs. A name
// ending in .yang or containing a path separator is taken as a path.
func findModuleFile(searchDirs []string, module string) (string, error) {
	if strings.HasSuffix(module, ".yang") || strings.ContainsRune(module, filepath.Separator) {
		if _, err := os.Stat(module); err != nil {
			return "", fmt.Errorf("module file: %w", err)
		}
		return module, nil
	}

	var revisions []string
	for _, dir := range searchDirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			base := d.Name()
			if base == module+".yang" {
				revisions = append([]string{path}, revisions...)
			} else if strings.HasPrefix(base, module+"@") && strings.HasSuffix(base, ".yang") {
				revisions = append(revisions, path)
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("search %s: %w", dir, err)
		}
	}
	if len(revisions) == 0 {
		return "", fmt.Errorf("module %s not found in %s", module, strings.Join(searchDirs, ", "))
	}
	if filepath.Base(revisions[0]) == module+".yang" {
		return revisions[0], nil
	}
	// name@YYYY-MM-DD sorts by date; the newest revision wins.
	sort.Slice(revisions, func(i, j int) bool {
		return filepath.Base(revisions[i]) < filepath.Base(revisions[j])
	})
	return revisions[len(revisions)-1], nil
}

var (
	_ Module = (*YangModule)(nil)
	_ Node   = (*yangNode)(nil)
)
