package ast

import "github.com/cwbudde/as3sem/pkg/pos"

// NodeID is a typed index into a Graph's arena. The zero value, Nil, never
// refers to a real node — every cross-edge field (Instance, Type, GotoExit,
// GotoEnter) uses it as "unset". This is the arena-plus-index scheme design
// notes §9 recommends in place of the original's naked smart pointers: the
// arena never moves existing entries, so a NodeID stays valid for the whole
// pass, and cross-edges can be walked with a simple visited-set of NodeID
// instead of pointer identity.
type NodeID uint32

// Nil is the zero NodeID, meaning "no node".
const Nil NodeID = 0

// Node is the single AST entity (spec.md §3). Every node in the tree,
// regardless of Kind, is one of these; which fields are meaningful is
// determined by Kind (see Kind.String and the per-component resolvers).
type Node struct {
	Pos   pos.Position
	Str   string
	Float float64
	Int   int64

	Kind  Kind
	Flags Flags
	Attrs Attrs

	Parent   NodeID
	Children []NodeID

	// Cross-edges (non-owning). Instance, once set to a non-Nil value, must
	// never be silently repointed to a different node (spec.md §3
	// invariants) — Graph.SetInstance enforces this.
	Instance  NodeID
	Type      NodeID
	GotoExit  NodeID
	GotoEnter NodeID

	// Direction flag for a resolved getter/setter member, used instead of
	// the original's "->"/"<-" name-mangling trick (design notes §9): the
	// member's Instance still points at the plain-named accessor function,
	// and Accessor records which direction the rewrite represents.
	Accessor AccessorDirection

	// Labels is non-nil only on scope-bearing nodes that can host labels
	// (program, package, function). Built lazily by the label scan.
	Labels map[string]NodeID

	// Variables is the ordered list of local `variable` declarations owned
	// by this scope (program, package, class, interface, function,
	// directive-list), used to unwind on scope exit.
	Variables []NodeID

	locked  bool
	pending []deferredOp
}

// AccessorDirection records whether a resolved field access is a getter
// read or a setter write (spec.md §4.3's getter/setter rewrite). Kept as an
// explicit flag per design notes §9 rather than as a name-mangling sigil.
type AccessorDirection uint8

const (
	AccessorNone AccessorDirection = iota
	AccessorGet
	AccessorSet
)

type deferredOpKind uint8

const (
	opInsert deferredOpKind = iota
	opRemove
)

type deferredOp struct {
	kind  deferredOpKind
	index int // insertion point, or index to remove; -1 means append
	ids   []NodeID
}
