package topcache

import (
	"context"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/deepnoodle-ai/stratum/bytecode"
	"github.com/deepnoodle-ai/stratum/errz"
)

// entry is the cache's per-source-id slot. weakCode lets the runtime
// collect the Code once nothing outside the cache still references it; a
// nil Value() is treated exactly like a missing entry.
type entry struct {
	weakCode weak.Pointer[bytecode.Code]
	stamp    int64
}

// parentBox lets an interface value live behind an atomic.Pointer, which
// requires a concrete pointee type.
type parentBox struct {
	resolver bytecode.ParentResolver
}

// TopCodeCache is the concurrent, fingerprint-keyed, weak-valued cache of
// on-demand compilations described in spec §4.3. The zero value is not
// usable; construct one with Builder.
type TopCodeCache struct {
	compiler bytecode.CompilerFunc
	parent   atomic.Pointer[parentBox]
	group    singleflight.Group
	entries  sync.Map // string (source id) -> *entry
	logger   zerolog.Logger
}

// Parent returns the resolver currently used by compilations that need to
// see layered classes.
func (t *TopCodeCache) Parent() bytecode.ParentResolver {
	if box := t.parent.Load(); box != nil {
		return box.resolver
	}
	return bytecode.NoParent
}

// SetParent atomically swaps the parent resolver. Compiles already in
// flight may observe the old parent; this is acceptable because layer
// updates are externally sequenced by the engine's write lock (spec §9,
// "Parent swap vs. readers").
func (t *TopCodeCache) SetParent(resolver bytecode.ParentResolver) {
	if resolver == nil {
		resolver = bytecode.NoParent
	}
	t.parent.Store(&parentBox{resolver: resolver})
}

// GetUpToDate returns a Code whose compile-time stamp equals
// source.ModificationStamp(), compiling it if necessary. Concurrent callers
// for the same source id share a single in-flight compile: a caller that
// arrives while a compile for its id is in flight receives that compile's
// result, even if its own source reports a different stamp.
func (t *TopCodeCache) GetUpToDate(ctx context.Context, source bytecode.Source) (*bytecode.Code, error) {
	id := source.ID()
	stamp := source.ModificationStamp()

	if code, ok := t.lookupFresh(id, stamp); ok {
		return code, nil
	}

	v, err, shared := t.group.Do(id, func() (any, error) {
		// Re-check: another flight may have just populated this entry
		// before we acquired the single-flight slot.
		if code, ok := t.lookupFresh(id, stamp); ok {
			return code, nil
		}
		if old, ok := t.entries.Load(id); ok && old.(*entry).stamp != stamp {
			t.logger.Debug().Str("source_id", id).Msg("top cache entry stale")
		}
		t.logger.Debug().Str("source_id", id).Msg("top cache compiling")
		code, cerr := t.compiler(ctx, t.Parent(), []bytecode.Source{source})
		if cerr != nil {
			t.logger.Warn().Str("source_id", id).Err(cerr).Msg("top cache compile failed")
			return nil, errz.NewCompile(id, "top code cache compile failed", cerr)
		}
		t.entries.Store(id, &entry{weakCode: weak.Make(code), stamp: stamp})
		t.logger.Debug().Str("source_id", id).Msg("top cache compiled")
		return code, nil
	})
	if shared {
		t.logger.Debug().Str("source_id", id).Msg("top cache compile shared by concurrent callers")
	}
	if err != nil {
		return nil, err
	}
	return v.(*bytecode.Code), nil
}

// Peek returns the cached Code for source without triggering a compile.
// It reports ok=false if there is no entry, the entry is stale, or the
// weakly-held Code has already been collected.
func (t *TopCodeCache) Peek(source bytecode.Source) (*bytecode.Code, bool) {
	return t.lookupFresh(source.ID(), source.ModificationStamp())
}

func (t *TopCodeCache) lookupFresh(id string, stamp int64) (*bytecode.Code, bool) {
	v, ok := t.entries.Load(id)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	if e.stamp != stamp {
		return nil, false
	}
	code := e.weakCode.Value()
	if code == nil {
		return nil, false
	}
	return code, true
}

// Clone produces a new, independent cache with no entries, configured with
// the same compiler factory and the current parent resolver.
func (t *TopCodeCache) Clone() *TopCodeCache {
	clone := &TopCodeCache{compiler: t.compiler, logger: t.logger}
	clone.parent.Store(t.parent.Load())
	return clone
}
