// Package schema exposes the parts of a YANG module the fuzz-message
// generator reads: node kinds, config flags, data paths, children in
// declaration order, leaf types with their restrictions, and the module's
// feature list.
//
// Two implementations are provided. Load parses module files through goyang;
// StaticModule builds a tree in memory.
package schema

// Kind is the closed set of node kinds the walker dispatches on.
type Kind int

const (
	KindContainer Kind = iota
	KindList
	KindOperation
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindList:
		return "list"
	case KindOperation:
		return "rpc"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Structural reports whether nodes of this kind wrap other nodes.
func (k Kind) Structural() bool {
	return k == KindContainer || k == KindList || k == KindOperation
}

// BaseKind identifies the built-in type a leaf's value space derives from.
type BaseKind int

const (
	TypeOther BaseKind = iota
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeString
	TypeEnum
	TypeEmpty
	TypeUnion
	TypeBool
)

var baseKindNames = map[BaseKind]string{
	TypeOther:  "other",
	TypeInt8:   "int8",
	TypeInt16:  "int16",
	TypeInt32:  "int32",
	TypeInt64:  "int64",
	TypeUint8:  "uint8",
	TypeUint16: "uint16",
	TypeUint32: "uint32",
	TypeUint64: "uint64",
	TypeString: "string",
	TypeEnum:   "enumeration",
	TypeEmpty:  "empty",
	TypeUnion:  "union",
	TypeBool:   "boolean",
}

func (b BaseKind) String() string {
	if name, ok := baseKindNames[b]; ok {
		return name
	}
	return "unknown"
}

// Type describes a leaf's value space.
type Type struct {
	Base BaseKind
	// Length and Range hold restrictions in YANG syntax ("1..32", "min..max").
	// Empty means not restricted.
	Length   string
	Range    string
	Patterns []string
	Enums    []string
	Members  []*Type
}

// Node is a data node of the schema tree.
type Node interface {
	Name() string
	Kind() Kind
	// ReadOnly reports config false, either on the node or inherited.
	ReadOnly() bool
	// Path is the structural data path, e.g. /example:cfg/name.
	Path() string
	// Children returns visible child nodes in declaration order.
	Children() []Node
	// Type is nil for structural nodes.
	Type() *Type
}

// Module is a loaded YANG module.
type Module interface {
	Name() string
	Namespace() string
	// Source is the raw module text.
	Source() []byte
	// Features lists the features the module declares.
	Features() []string
	// EnableFeature activates a declared feature. Nodes guarded by
	// if-feature expressions become visible once their expression holds.
	EnableFeature(name string) error
	// Children returns the visible top-level data nodes and operations.
	Children() []Node
}
