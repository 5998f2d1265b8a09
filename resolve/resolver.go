package resolve

import (
	"context"

	"github.com/deepnoodle-ai/stratum/bytecode"
	"github.com/deepnoodle-ai/stratum/errz"
	"github.com/deepnoodle-ai/stratum/topcache"
)

// LayeredClassResolver resolves class names across a parent resolver, a
// layer stack of bytecode.Code, and optionally a top cache feeding an
// ad-hoc source registry (spec §4.4). It is immutable: layer updates are
// handled by building a new resolver and swapping it into a loader, never
// by mutating one in place.
type LayeredClassResolver struct {
	parent    bytecode.ParentResolver
	layers    []*bytecode.Code // bottom-to-top, index 0 is the bottom
	topCache  *topcache.TopCodeCache
	layerMode LoadMode
	topMode   LoadMode
}

// New constructs a LayeredClassResolver. layers is bottom-to-top; topCache
// may be nil (no top cache in use).
func New(parent bytecode.ParentResolver, layers []*bytecode.Code, topCache *topcache.TopCodeCache, layerMode, topMode LoadMode) *LayeredClassResolver {
	if parent == nil {
		parent = bytecode.NoParent
	}
	cp := make([]*bytecode.Code, len(layers))
	copy(cp, layers)
	return &LayeredClassResolver{
		parent:    parent,
		layers:    cp,
		topCache:  topCache,
		layerMode: layerMode,
		topMode:   topMode,
	}
}

// Layers returns the resolver's layer stack, bottom-to-top.
func (r *LayeredClassResolver) Layers() []*bytecode.Code {
	cp := make([]*bytecode.Code, len(r.layers))
	copy(cp, r.layers)
	return cp
}

// Resolve implements bytecode.ParentResolver, so a LayeredClassResolver can
// itself serve as another resolver's parent — this is how the top cache's
// parent is kept equal to the engine's default loader's current resolver
// (spec §3 invariant).
func (r *LayeredClassResolver) Resolve(className string) (*bytecode.Bytecode, bool) {
	bc, err := r.LoadClass(className)
	if err != nil {
		return nil, false
	}
	return bc, true
}

// LoadClass resolves a class by name only (spec §4.4.1). The top cache is
// never consulted by this operation.
func (r *LayeredClassResolver) LoadClass(className string) (*bytecode.Bytecode, error) {
	switch r.layerMode {
	case ParentFirst:
		if bc, ok := safeResolve(r.parent, className); ok {
			return bc, nil
		}
		if bc, ok := r.lookupLayersTopDown(className); ok {
			return bc, nil
		}
	default: // CurrentFirst
		if bc, ok := r.lookupLayersTopDown(className); ok {
			return bc, nil
		}
		if bc, ok := safeResolve(r.parent, className); ok {
			return bc, nil
		}
	}
	return nil, errz.NewLoad(className, "not found in parent or any layer")
}

func (r *LayeredClassResolver) lookupLayersTopDown(className string) (*bytecode.Bytecode, bool) {
	for i := len(r.layers) - 1; i >= 0; i-- {
		if bc, ok := r.layers[i].BytecodeFor(className); ok {
			return bc, true
		}
	}
	return nil, false
}

// topmostSourceInfo returns the CompiledSourceInfo for sourceID from the
// highest layer that declares it.
func (r *LayeredClassResolver) topmostSourceInfo(sourceID string) (*bytecode.CompiledSourceInfo, bool) {
	for i := len(r.layers) - 1; i >= 0; i-- {
		if info, ok := r.layers[i].SourceInfo(sourceID); ok {
			return info, true
		}
	}
	return nil, false
}

// LoadMainClass resolves the entry-point class of source (spec §4.4.2).
func (r *LayeredClassResolver) LoadMainClass(ctx context.Context, source bytecode.Source) (*bytecode.Bytecode, error) {
	return r.resolveFromSource(ctx, source, "", true)
}

// LoadClassFromSource resolves className as declared by source (spec
// §4.4.2). className must be among the classes source's CompiledSourceInfo
// declares, else the result is a "class not in source" Load error.
func (r *LayeredClassResolver) LoadClassFromSource(ctx context.Context, source bytecode.Source, className string) (*bytecode.Bytecode, error) {
	return r.resolveFromSource(ctx, source, className, false)
}

func (r *LayeredClassResolver) resolveFromSource(ctx context.Context, source bytecode.Source, explicitName string, wantMain bool) (*bytecode.Bytecode, error) {
	info, inLayer := r.topmostSourceInfo(source.ID())

	layerAttempt := func() (*bytecode.Bytecode, error) {
		if !inLayer {
			return nil, errz.NewLoad(explicitName, "source not found in any layer")
		}
		name := explicitName
		if wantMain {
			name = info.MainClassName()
		} else if !info.HasClassName(explicitName) {
			return nil, errz.NewLoad(explicitName, "class not in source")
		}
		return r.LoadClass(name)
	}

	topAttempt := func() (*bytecode.Bytecode, error) {
		if r.topCache == nil {
			return nil, errz.NewLoad(explicitName, "source not found: no top cache configured")
		}
		code, err := r.topCache.GetUpToDate(ctx, source)
		if err != nil {
			return nil, err
		}
		name := explicitName
		if wantMain {
			name, _ = code.MainClassNameFor(source.ID())
		} else if names, ok := code.ClassNamesFor(source.ID()); !ok || !containsName(names, explicitName) {
			return nil, errz.NewLoad(explicitName, "class not in source")
		}
		bc, ok := code.BytecodeFor(name)
		if !ok {
			return nil, errz.NewLoad(name, "class not found")
		}
		return bc, nil
	}

	switch r.topMode {
	case ParentFirst:
		// The layer path is primary even for a source present in layers;
		// only a failure there falls through to the top cache (spec
		// §4.4.2 step 3).
		if inLayer {
			if bc, err := layerAttempt(); err == nil {
				return bc, nil
			}
		}
		return topAttempt()
	default: // CurrentFirst
		// The top cache is consulted first, but only for a source it
		// already holds a fresh entry for — this never forces a compile
		// of a source that properly belongs to a layer. If a source
		// happens to be registered in both (a caller error; see spec §9's
		// open question), the top cache wins, matching the documented
		// resolution of that ambiguity.
		if r.topCache != nil {
			if _, ok := r.topCache.Peek(source); ok {
				if bc, err := topAttempt(); err == nil {
					return bc, nil
				}
			}
		}
		if inLayer {
			return layerAttempt()
		}
		return topAttempt()
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Clone returns a new resolver sharing this resolver's layer stack and top
// cache instance (attached-style, spec §4.4.3).
func (r *LayeredClassResolver) Clone() *LayeredClassResolver {
	return New(r.parent, r.layers, r.topCache, r.layerMode, r.topMode)
}

// CloneWithSeparateTopCache returns a new resolver sharing this resolver's
// layer stack but with a freshly cloned, independent top cache
// (detached-style, spec §4.4.3).
func (r *LayeredClassResolver) CloneWithSeparateTopCache() *LayeredClassResolver {
	var tc *topcache.TopCodeCache
	if r.topCache != nil {
		tc = r.topCache.Clone()
	}
	return New(r.parent, r.layers, tc, r.layerMode, r.topMode)
}
