// Package scope implements ScopeStack, the component table's collaborator
// for NameResolver (spec.md §2): "The stack of currently-effective `use
// namespace` / `with` scopes; consulted by NameResolver."
//
// Lexical scoping itself (nested directive-lists, function parameters,
// class bodies) is walked directly over the AST by NameResolver — this
// stack only tracks the two scope-like constructs that are *not* simply
// "an ancestor node": namespaces opened with `use namespace` stay in effect
// for the rest of the enclosing block regardless of nesting, and `with`
// objects are only in effect for the duration of the statement below them.
// NameResolver only reads the active namespaces (Namespaces); it does not
// push or pop entries, and it finds `with` scopes by walking up the AST.
package scope

import "github.com/cwbudde/as3sem/pkg/ast"

// EntryKind distinguishes the two things a ScopeStack entry can represent.
type EntryKind uint8

const (
	// Namespace is a `use namespace N` directive: while active, unqualified
	// names are additionally searched in N's namespace.
	Namespace EntryKind = iota
	// With is a `with (obj) { ... }` object: while active, unqualified
	// names are first looked up as fields of obj (spec.md §4.2 step 6).
	With
)

// Entry is one active namespace or with-object.
type Entry struct {
	Kind EntryKind
	Node ast.NodeID // the `use` node (Namespace) or the with object's expression node (With)
}

// Stack is the push/pop scope stack. It is owned by the Compiler for the
// duration of one pass and is empty at entry/exit.
type Stack struct {
	entries []Entry
}

// New creates an empty Stack.
func New() *Stack { return &Stack{} }

// PushNamespace activates a `use namespace` directive for the remainder of
// the current recursive walk.
func (s *Stack) PushNamespace(useNode ast.NodeID) { s.entries = append(s.entries, Entry{Kind: Namespace, Node: useNode}) }

// PushWith activates a `with` object until the matching Pop. No caller in
// this module pushes one: `with` scopes are resolved from the AST instead.
func (s *Stack) PushWith(objectNode ast.NodeID) { s.entries = append(s.entries, Entry{Kind: With, Node: objectNode}) }

// Pop removes the most recently pushed entry. Callers push/pop in strict
// LIFO order around the walk that activated the entry; mismatched Pop calls
// are a programming error in the caller, not a recoverable condition.
func (s *Stack) Pop() {
	if len(s.entries) == 0 {
		panic("scope: Pop on empty stack")
	}
	s.entries = s.entries[:len(s.entries)-1]
}

// Depth returns the number of active entries.
func (s *Stack) Depth() int { return len(s.entries) }

// WithObjects returns the currently active `with` object nodes, innermost
// last, so NameResolver can try them innermost-first.
func (s *Stack) WithObjects() []ast.NodeID {
	var out []ast.NodeID
	for _, e := range s.entries {
		if e.Kind == With {
			out = append(out, e.Node)
		}
	}
	return out
}

// Namespaces returns the currently active `use namespace` nodes.
func (s *Stack) Namespaces() []ast.NodeID {
	var out []ast.NodeID
	for _, e := range s.entries {
		if e.Kind == Namespace {
			out = append(out, e.Node)
		}
	}
	return out
}

// InWith reports whether any `with` entry is currently on the stack.
// NameResolver does not consult it.
func (s *Stack) InWith() bool { return len(s.WithObjects()) > 0 }
