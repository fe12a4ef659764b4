package schema

// StaticNode is an in-memory schema node built with Container, List,
// Operation and Leaf.
type StaticNode struct {
	name        string
	kind        Kind
	configFalse bool
	guards      []string
	typ         *Type
	nodes       []*StaticNode

	path     string
	readOnly bool
	module   *StaticModule
}

// Container returns a container node.
func Container(name string, children ...*StaticNode) *StaticNode {
	return &StaticNode{name: name, kind: KindContainer, nodes: children}
}

// List returns a list node.
func List(name string, children ...*StaticNode) *StaticNode {
	return &StaticNode{name: name, kind: KindList, nodes: children}
}

// Operation returns an rpc node whose children are its input parameters.
func Operation(name string, children ...*StaticNode) *StaticNode {
	return &StaticNode{name: name, kind: KindOperation, nodes: children}
}

// Leaf returns a leaf node of type t.
func Leaf(name string, t *Type) *StaticNode {
	return &StaticNode{name: name, kind: KindLeaf, typ: t}
}

// ConfigFalse marks the node as state data.
func (n *StaticNode) ConfigFalse() *StaticNode {
	n.configFalse = true
	return n
}

// IfFeature adds an if-feature guard.
func (n *StaticNode) IfFeature(expr string) *StaticNode {
	n.guards = append(n.guards, expr)
	return n
}

func (n *StaticNode) Name() string   { return n.name }
func (n *StaticNode) Kind() Kind     { return n.kind }
func (n *StaticNode) ReadOnly() bool { return n.readOnly }
func (n *StaticNode) Path() string   { return n.path }
func (n *StaticNode) Type() *Type    { return n.typ }

func (n *StaticNode) Children() []Node {
	return n.module.visible(n.nodes)
}

func (n *StaticNode) bind(m *StaticModule, parentPath string, parentReadOnly bool) {
	n.module = m
	n.readOnly = parentReadOnly || n.configFalse
	if parentPath == "" {
		n.path = "/" + m.name + ":" + n.name
	} else {
		n.path = parentPath + "/" + n.name
	}
	for _, c := range n.nodes {
		c.bind(m, n.path, n.readOnly)
	}
}

// StaticModule is an in-memory Module.
type StaticModule struct {
	name      string
	namespace string
	source    []byte
	features  []string
	set       *featureSet
	nodes     []*StaticNode
}

// NewStaticModule binds nodes to a module and computes their paths.
func NewStaticModule(name, namespace string, nodes ...*StaticNode) *StaticModule {
	m := &StaticModule{name: name, namespace: namespace, nodes: nodes, set: newFeatureSet(nil)}
	for _, n := range nodes {
		n.bind(m, "", false)
	}
	return m
}

// DeclareFeatures adds feature statements to the module.
func (m *StaticModule) DeclareFeatures(names ...string) *StaticModule {
	m.features = append(m.features, names...)
	for _, name := range names {
		m.set.declared[name] = true
	}
	return m
}

// WithSource sets the raw module text returned by Source.
func (m *StaticModule) WithSource(src string) *StaticModule {
	m.source = []byte(src)
	return m
}

func (m *StaticModule) Name() string       { return m.name }
func (m *StaticModule) Namespace() string  { return m.namespace }
func (m *StaticModule) Source() []byte     { return m.source }
func (m *StaticModule) Features() []string { return append([]string(nil), m.features...) }

func (m *StaticModule) EnableFeature(name string) error {
	return m.set.enable(name)
}

func (m *StaticModule) Children() []Node {
	return m.visible(m.nodes)
}

func (m *StaticModule) visible(nodes []*StaticNode) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if m.set.visible(n.guards) {
			out = append(out, n)
		}
	}
	return out
}

var (
	_ Module = (*StaticModule)(nil)
	_ Node   = (*StaticNode)(nil)
)
