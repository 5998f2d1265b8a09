// Package stratum re-exports the common types from across the module's
// subpackages so a typical caller only needs a single import.
package stratum

import (
	"github.com/deepnoodle-ai/stratum/bytecode"
	"github.com/deepnoodle-ai/stratum/engine"
	"github.com/deepnoodle-ai/stratum/errz"
	"github.com/deepnoodle-ai/stratum/loader"
	"github.com/deepnoodle-ai/stratum/resolve"
)

// Re-export the value types most callers construct directly.
type (
	Bytecode           = bytecode.Bytecode
	Code               = bytecode.Code
	CompiledSourceInfo = bytecode.CompiledSourceInfo
	Source             = bytecode.Source
	ParentResolver     = bytecode.ParentResolver
	CompilerFunc       = bytecode.CompilerFunc
)

// NoParent is a ParentResolver that never resolves anything, for engines
// with no parent classloader.
var NoParent = bytecode.NoParent

// Re-export the resolution-order type and its two values.
type LoadMode = resolve.LoadMode

const (
	ParentFirst  = resolve.ParentFirst
	CurrentFirst = resolve.CurrentFirst
)

// Re-export the engine and loader types.
type (
	Engine        = engine.Engine
	EngineBuilder = engine.Builder
	Loader        = loader.Loader
	EngineID      = loader.EngineID
)

// NewEngine returns an EngineBuilder for constructing an Engine.
func NewEngine() *EngineBuilder {
	return engine.NewBuilder()
}

// Re-export the conflict and error types so callers can type-switch on them
// without importing resolve or errz directly.
type (
	ClassNameConflictError = resolve.ClassNameConflictError
	Error                  = errz.Error
	ErrorKind              = errz.Kind
)

const (
	KindInvalidArgument   = errz.InvalidArgument
	KindInvalidState      = errz.InvalidState
	KindCompile           = errz.Compile
	KindLoad              = errz.Load
	KindClassNameConflict = errz.ClassNameConflict
)
