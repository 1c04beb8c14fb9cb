package ast

import (
	"fmt"

	"github.com/cwbudde/as3sem/pkg/pos"
)

// Graph is the arena that owns every Node created during a single
// compilation pass (spec.md §3 "ownership and lifetime"). It replaces the
// original's tree of naked smart pointers: nodes live in a flat slice and
// are addressed by NodeID, so cross-edges are trivially safe to store and
// traverse (no dangling pointers, no need for weak_ptr-style bookkeeping),
// and the whole arena is dropped at once at the end of the pass.
type Graph struct {
	nodes []Node // index 0 is an unused sentinel; real nodes start at 1
}

// NewGraph creates an empty arena.
func NewGraph() *Graph {
	return &Graph{nodes: make([]Node, 1)} // reserve index 0 for Nil
}

// New allocates a node of the given kind at the given position and returns
// its id. Parent/children/cross-edges are all zero (Nil) until set.
func (g *Graph) New(kind Kind, p pos.Position) NodeID {
	g.nodes = append(g.nodes, Node{Kind: kind, Pos: p})
	return NodeID(len(g.nodes) - 1)
}

// At returns a mutable pointer to the node identified by id. It panics on
// Nil or an out-of-range id: every caller is expected to have just obtained
// the id from the graph itself, so an invalid id here is an internal-error
// condition, not a recoverable one (spec.md §5).
func (g *Graph) At(id NodeID) *Node {
	if id == Nil || int(id) >= len(g.nodes) {
		panic(fmt.Sprintf("ast: invalid NodeID %d", id))
	}
	return &g.nodes[id]
}

// Valid reports whether id refers to a live node in this graph.
func (g *Graph) Valid(id NodeID) bool {
	return id != Nil && int(id) < len(g.nodes)
}

// Kind is a convenience accessor equivalent to g.At(id).Kind, but returns
// KindInvalid for Nil instead of panicking — useful in walkers that test an
// optional child before descending into it.
func (g *Graph) Kind(id NodeID) Kind {
	if id == Nil {
		return KindInvalid
	}
	return g.At(id).Kind
}

// Children returns the live child list of id.
func (g *Graph) Children(id NodeID) []NodeID {
	return g.At(id).Children
}

// Child returns the i'th child of id, or Nil if out of range.
func (g *Graph) Child(id NodeID, i int) NodeID {
	ch := g.At(id).Children
	if i < 0 || i >= len(ch) {
		return Nil
	}
	return ch[i]
}

// ---------------------------------------------------------------------
// Locking and deferred child-list mutation (spec.md §4.1, §5)
// ---------------------------------------------------------------------

// Lock marks id's child list as not-structurally-mutable and returns an
// unlock function. While locked, AppendChild/InsertChild/RemoveChild on id
// enqueue their change instead of applying it; the returned unlock flushes
// the queue in FIFO order. Callers must defer the unlock function so it
// runs on every exit path, including error returns, matching the contract
// in spec.md §4.1.
//
//	unlock := graph.Lock(listID)
//	defer unlock()
//	for i, child := range graph.Children(listID) { ... }
func (g *Graph) Lock(id NodeID) (unlock func()) {
	n := g.At(id)
	n.locked = true
	return func() { g.unlock(id) }
}

// Locked reports whether id is currently locked.
func (g *Graph) Locked(id NodeID) bool {
	return g.At(id).locked
}

func (g *Graph) unlock(id NodeID) {
	n := g.At(id)
	n.locked = false
	pending := n.pending
	n.pending = nil
	for _, op := range pending {
		switch op.kind {
		case opInsert:
			g.spliceInsert(id, op.index, op.ids)
		case opRemove:
			g.spliceRemove(id, op.index)
		}
	}
}

// AppendChild adds child to the end of parent's child list, deferring the
// mutation if parent is locked.
func (g *Graph) AppendChild(parent, child NodeID) {
	g.InsertChild(parent, -1, child)
}

// InsertChild inserts child at index (or appends, if index is negative or
// beyond the current length), deferring the mutation if parent is locked.
func (g *Graph) InsertChild(parent NodeID, index int, child NodeID) {
	n := g.At(parent)
	if n.locked {
		n.pending = append(n.pending, deferredOp{kind: opInsert, index: index, ids: []NodeID{child}})
		return
	}
	g.spliceInsert(parent, index, []NodeID{child})
}

// RemoveChild removes the child at index, deferring the mutation if parent
// is locked.
func (g *Graph) RemoveChild(parent NodeID, index int) {
	n := g.At(parent)
	if n.locked {
		n.pending = append(n.pending, deferredOp{kind: opRemove, index: index})
		return
	}
	g.spliceRemove(parent, index)
}

// ReplaceChild retargets the child pointer at index to newChild without
// shifting any other index. In-place replacements are always applied
// immediately, even while the node is locked (spec.md §5: "In-place
// replacements ... are performed immediately because they do not shift
// indices"). OperatorRewriter's RewritePostfix uses it to put its
// synthesized sequence into the original node's slot.
func (g *Graph) ReplaceChild(parent NodeID, index int, newChild NodeID) {
	n := g.At(parent)
	if index < 0 || index >= len(n.Children) {
		return
	}
	n.Children[index] = newChild
	if newChild != Nil {
		g.At(newChild).Parent = parent
	}
}

func (g *Graph) spliceInsert(parent NodeID, index int, ids []NodeID) {
	n := g.At(parent)
	if index < 0 || index > len(n.Children) {
		index = len(n.Children)
	}
	n.Children = append(n.Children, ids...) // grow, then rotate into place
	copy(n.Children[index+len(ids):], n.Children[index:len(n.Children)-len(ids)])
	copy(n.Children[index:], ids)
	for _, id := range ids {
		if id != Nil {
			g.At(id).Parent = parent
		}
	}
}

func (g *Graph) spliceRemove(parent NodeID, index int) {
	n := g.At(parent)
	if index < 0 || index >= len(n.Children) {
		return
	}
	n.Children = append(n.Children[:index], n.Children[index+1:]...)
}

// ---------------------------------------------------------------------
// Cross-edges
// ---------------------------------------------------------------------

// SetInstance assigns id's INSTANCE link, enforcing the invariant that it
// is never silently repointed (spec.md §3): once set to a non-Nil value,
// calling SetInstance again with a *different* target is an internal-error
// condition reported via the returned error rather than overwriting
// silently. Rewriting the node's Kind first (the legitimate path — e.g. a
// getter rewrite that turns a `member` into a `call`) resets Instance
// naturally via ResetInstance.
func (g *Graph) SetInstance(id, instance NodeID) error {
	n := g.At(id)
	if n.Instance != Nil && n.Instance != instance {
		return fmt.Errorf("ast: internal-error: INSTANCE of node %d already set to %d, refusing silent repoint to %d", id, n.Instance, instance)
	}
	n.Instance = instance
	return nil
}

// ResetInstance clears id's INSTANCE link. Used only by the legitimate
// rewrite paths (OperatorRewriter, getter/setter rewrite) that change a
// node's Kind and therefore its resolution target.
func (g *Graph) ResetInstance(id NodeID) {
	g.At(id).Instance = Nil
}

// SetType assigns id's TYPE link (TypeResolver's output). Unlike Instance,
// Type may be refined as more context becomes available (e.g. a literal's
// type is assigned immediately, but a call expression's type may only be
// known after OverloadSelector runs), so no once-set invariant applies.
func (g *Graph) SetType(id, typ NodeID) {
	g.At(id).Type = typ
}

// ---------------------------------------------------------------------
// Label and variable indices (spec.md §3)
// ---------------------------------------------------------------------

// AddLabel registers name -> label in scope's label index. Returns false if
// name is already registered in this scope (a duplicate-label diagnostic is
// the caller's responsibility).
func (g *Graph) AddLabel(scope NodeID, name string, label NodeID) bool {
	n := g.At(scope)
	if n.Labels == nil {
		n.Labels = make(map[string]NodeID)
	}
	if _, exists := n.Labels[name]; exists {
		return false
	}
	n.Labels[name] = label
	return true
}

// LookupLabel finds name in scope's label index.
func (g *Graph) LookupLabel(scope NodeID, name string) (NodeID, bool) {
	n := g.At(scope)
	id, ok := n.Labels[name]
	return id, ok
}

// AddVariable appends v to scope's variable index.
func (g *Graph) AddVariable(scope NodeID, v NodeID) {
	n := g.At(scope)
	n.Variables = append(n.Variables, v)
}

// ---------------------------------------------------------------------
// Ancestor walks
// ---------------------------------------------------------------------

// Ancestors returns the chain of ancestors of id, starting with id's
// immediate parent and ending at the root (Parent == Nil).
func (g *Graph) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := g.At(id).Parent; p != Nil; p = g.At(p).Parent {
		out = append(out, p)
	}
	return out
}

// IsAncestor reports whether ancestor is on id's ancestor chain.
func (g *Graph) IsAncestor(ancestor, id NodeID) bool {
	for p := g.At(id).Parent; p != Nil; p = g.At(p).Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// EnclosingOfKind walks up from id (starting at id's parent) and returns the
// first ancestor whose Kind is in kinds, or Nil if none matches before the
// root.
func (g *Graph) EnclosingOfKind(id NodeID, kinds ...Kind) NodeID {
	for p := g.At(id).Parent; p != Nil; p = g.At(p).Parent {
		k := g.At(p).Kind
		for _, want := range kinds {
			if k == want {
				return p
			}
		}
	}
	return Nil
}

// LowestCommonAncestor finds the nearest node that is an ancestor of both a
// and b (spec.md §4.5 goto scope-unwind target). Returns Nil if a and b
// share no ancestor (should not happen for nodes in the same tree).
func (g *Graph) LowestCommonAncestor(a, b NodeID) NodeID {
	seen := make(map[NodeID]bool)
	for p := a; p != Nil; p = g.At(p).Parent {
		seen[p] = true
	}
	for p := b; p != Nil; p = g.At(p).Parent {
		if seen[p] {
			return p
		}
	}
	return Nil
}
