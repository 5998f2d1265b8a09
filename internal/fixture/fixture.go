// Package fixture provides small, deterministic test doubles shared across
// stratum's package tests: an in-memory Source, a scriptable compiler, and a
// map-backed parent resolver. Mirrors the role the teacher's dedicated
// testing support package plays for risor's own test suite.
package fixture

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/deepnoodle-ai/stratum/bytecode"
)

// Source is a mutable, in-memory bytecode.Source for tests. Tests bump the
// stamp to simulate an edit.
type Source struct {
	id    string
	stamp int64
}

// NewSource returns a Source with the given id and initial stamp.
func NewSource(id string, stamp int64) *Source {
	return &Source{id: id, stamp: stamp}
}

// ID returns the source's id.
func (s *Source) ID() string { return s.id }

// ModificationStamp returns the current stamp.
func (s *Source) ModificationStamp() int64 { return atomic.LoadInt64(&s.stamp) }

// Touch sets the stamp to a new value, simulating an edit.
func (s *Source) Touch(stamp int64) { atomic.StoreInt64(&s.stamp, stamp) }

// SingleClassCode builds a one-class, one-source Code artifact where the
// source's main class is named className and its body is body.
func SingleClassCode(src bytecode.Source, className string, body []byte) *bytecode.Code {
	bc, err := bytecode.NewBytecode(className, body)
	if err != nil {
		panic(err)
	}
	info, err := bytecode.NewCompiledSourceInfo(src, className, []string{className}, src.ModificationStamp())
	if err != nil {
		panic(err)
	}
	code, err := bytecode.NewCode([]*bytecode.CompiledSourceInfo{info}, []*bytecode.Bytecode{bc})
	if err != nil {
		panic(err)
	}
	return code
}

// ParentResolver is a map-backed bytecode.ParentResolver for tests.
type ParentResolver struct {
	mu      sync.RWMutex
	classes map[string]*bytecode.Bytecode
}

// NewParentResolver returns an empty ParentResolver.
func NewParentResolver() *ParentResolver {
	return &ParentResolver{classes: map[string]*bytecode.Bytecode{}}
}

// Define registers className as resolvable by this parent.
func (p *ParentResolver) Define(className string, body []byte) {
	bc, err := bytecode.NewBytecode(className, body)
	if err != nil {
		panic(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classes[className] = bc
}

// Resolve implements bytecode.ParentResolver.
func (p *ParentResolver) Resolve(className string) (*bytecode.Bytecode, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	bc, ok := p.classes[className]
	return bc, ok
}

// CountingCompiler wraps a bytecode.CompilerFunc and counts invocations,
// optionally per source id, for single-flight and freshness assertions.
type CountingCompiler struct {
	mu        sync.Mutex
	total     int
	perSource map[string]int
	compile   bytecode.CompilerFunc
}

// NewCountingCompiler wraps compile with invocation counting.
func NewCountingCompiler(compile bytecode.CompilerFunc) *CountingCompiler {
	return &CountingCompiler{perSource: map[string]int{}, compile: compile}
}

// Func returns the bytecode.CompilerFunc to hand to production code.
func (c *CountingCompiler) Func() bytecode.CompilerFunc {
	return func(ctx context.Context, parent bytecode.ParentResolver, sources []bytecode.Source) (*bytecode.Code, error) {
		c.mu.Lock()
		c.total++
		for _, s := range sources {
			c.perSource[s.ID()]++
		}
		c.mu.Unlock()
		return c.compile(ctx, parent, sources)
	}
}

// Total returns the number of times the wrapped compiler has been invoked.
func (c *CountingCompiler) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// ForSource returns the number of invocations that included sourceID.
func (c *CountingCompiler) ForSource(sourceID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perSource[sourceID]
}

// SingleSourceCompiler returns a CompilerFunc that compiles exactly one
// source at a time into a single main class named by nameFor, with body
// content tagged by the source's current modification stamp so distinct
// compiles of the same source produce distinguishable Code values.
func SingleSourceCompiler(nameFor func(bytecode.Source) string) bytecode.CompilerFunc {
	return func(ctx context.Context, parent bytecode.ParentResolver, sources []bytecode.Source) (*bytecode.Code, error) {
		if len(sources) != 1 {
			panic("fixture: SingleSourceCompiler expects exactly one source")
		}
		src := sources[0]
		name := nameFor(src)
		body := []byte{byte(src.ModificationStamp())}
		return SingleClassCode(src, name, body), nil
	}
}
