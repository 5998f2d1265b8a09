// Package bytecode defines the immutable data model compiled scripts are
// represented as once they leave the compiler: [Bytecode] blobs,
// [CompiledSourceInfo] metadata, and the [Code] artifact that bundles them.
//
// It also defines the external contracts the rest of the module depends on
// but does not implement: [Source] (an addressable script with a stable id
// and a modification stamp), [ParentResolver] (an external class lookup to
// delegate to), and [CompilerFunc] (the compiler factory signature).
//
// Nothing in this package mutates after construction. Constructors copy
// incoming slices and validate required fields, returning an *errz.Error of
// kind [errz.InvalidArgument] when a required field is missing.
package bytecode
