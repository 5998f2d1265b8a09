package bytecode

import "context"

// Source is an addressable script. Its identity is its Id alone; the
// modification stamp is an opaque integer that callers must only compare
// for inequality, never order.
type Source interface {
	ID() string
	ModificationStamp() int64
}

// ParentResolver is the external class lookup the engine delegates to.
// Resolve must be cheap on a miss and must never panic across the call
// boundary from the caller's point of view; callers that walk a
// ParentResolver (see the resolve package) recover from panics and treat
// them as a miss.
type ParentResolver interface {
	Resolve(className string) (*Bytecode, bool)
}

// ParentResolverFunc adapts a function to a ParentResolver.
type ParentResolverFunc func(className string) (*Bytecode, bool)

// Resolve calls f.
func (f ParentResolverFunc) Resolve(className string) (*Bytecode, bool) {
	return f(className)
}

// NoParent is a ParentResolver that never resolves anything. It is the
// default parent for an Engine.Builder that does not set one explicitly.
var NoParent ParentResolver = ParentResolverFunc(func(string) (*Bytecode, bool) {
	return nil, false
})

// CompilerFunc is the compiler factory contract: compile a set of sources,
// together, into a single Code artifact. Implementations must be
// deterministic with respect to source ids for the purposes of
// CompiledSourceInfo, and may fail with a compile error carrying source
// id(s) and diagnostic text.
type CompilerFunc func(ctx context.Context, parent ParentResolver, sources []Source) (*Code, error)
