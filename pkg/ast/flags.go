package ast

// Flags is the boolean bit set carried on every node (spec.md §3). It is
// represented as a single machine word rather than N separate bool fields so
// that copying a Node (e.g. when constant-folding replaces it) is one
// assignment, matching the original's packed-bitfield approach without its
// fragility.
type Flags uint32

const (
	FlagDefined Flags = 1 << iota
	FlagInUse
	FlagCompiled
	FlagLocal
	FlagMember
	FlagConst
	FlagToAdd
	FlagDefining
	FlagNoParams
	FlagOperator
	FlagGetter
	FlagSetter
	FlagVoid
	FlagNever
	FlagUnprototyped
	FlagReferenced
	FlagParamRef
	FlagRest
	FlagOut
	FlagUnchecked
	FlagCatch
	FlagTyped
	FlagWith
	FlagDefault
	FlagFoundLabels
	FlagPackageReferenced
	FlagNewVariables
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Set returns f with mask set.
func (f Flags) Set(mask Flags) Flags { return f | mask }

// Clear returns f with mask cleared.
func (f Flags) Clear(mask Flags) Flags { return f &^ mask }

var flagNames = map[string]Flags{
	"defined": FlagDefined, "in-use": FlagInUse, "compiled": FlagCompiled,
	"local": FlagLocal, "member": FlagMember, "const": FlagConst,
	"to-add": FlagToAdd, "defining": FlagDefining, "no-params": FlagNoParams,
	"operator": FlagOperator, "getter": FlagGetter, "setter": FlagSetter,
	"void": FlagVoid, "never": FlagNever, "unprototyped": FlagUnprototyped,
	"referenced": FlagReferenced, "param-ref": FlagParamRef, "rest": FlagRest,
	"out": FlagOut, "unchecked": FlagUnchecked, "catch": FlagCatch,
	"typed": FlagTyped, "with": FlagWith, "default": FlagDefault,
	"found-labels": FlagFoundLabels, "package-referenced": FlagPackageReferenced,
	"new-variables": FlagNewVariables,
}

// ParseFlag looks up a flag by the name used in fixture/debug-dump text.
func ParseFlag(name string) (Flags, bool) {
	f, ok := flagNames[name]
	return f, ok
}
