package engine

import (
	"sync"
	"weak"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/stratum/bytecode"
	"github.com/deepnoodle-ai/stratum/errz"
	"github.com/deepnoodle-ai/stratum/loader"
	"github.com/deepnoodle-ai/stratum/resolve"
	"github.com/deepnoodle-ai/stratum/topcache"
)

// Builder constructs an Engine using the one-shot commit protocol required
// by spec §4.6: once Build has been called, every setter fails with an
// InvalidState error. Build itself is idempotent and fills in defaults on
// the first call: parent defaults to bytecode.NoParent (the nearest Go
// analogue of "ambient thread context resolver" — there being no ambient
// per-goroutine classloader in Go), layerMode defaults to CurrentFirst,
// topMode defaults to ParentFirst, and withTopCache defaults to true.
type Builder struct {
	mu    sync.Mutex
	used  bool
	built *Engine

	parent bytecode.ParentResolver

	layerMode    resolve.LoadMode
	layerModeSet bool

	topMode    resolve.LoadMode
	topModeSet bool

	withTopCache    bool
	withTopCacheSet bool

	allowSameNamesAcrossLayers      bool
	allowSameNamesInParentAndLayers bool

	compiler bytecode.CompilerFunc
	logger   zerolog.Logger
}

// NewBuilder returns a Builder with default (silent) logging.
func NewBuilder() *Builder {
	return &Builder{logger: zerolog.Nop()}
}

func (b *Builder) checkNotUsed() error {
	if b.used {
		return errz.NewInvalidState("engine builder already used")
	}
	return nil
}

// WithParent sets the resolver delegated to for classes not found in any
// layer or the top cache.
func (b *Builder) WithParent(parent bytecode.ParentResolver) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNotUsed(); err != nil {
		return err
	}
	b.parent = parent
	return nil
}

// WithLayerMode sets the order of precedence between the parent resolver
// and the layer stack for statically-layered classes.
func (b *Builder) WithLayerMode(mode resolve.LoadMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNotUsed(); err != nil {
		return err
	}
	b.layerMode, b.layerModeSet = mode, true
	return nil
}

// WithTopMode sets the order of precedence between the combined
// (parent+layers) view and the top cache for ad-hoc classes.
func (b *Builder) WithTopMode(mode resolve.LoadMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNotUsed(); err != nil {
		return err
	}
	b.topMode, b.topModeSet = mode, true
	return nil
}

// WithTopCache enables or disables the shared top cache for ad-hoc sources.
func (b *Builder) WithTopCache(enabled bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNotUsed(); err != nil {
		return err
	}
	b.withTopCache, b.withTopCacheSet = enabled, true
	return nil
}

// WithAllowSameNamesAcrossLayers controls whether SetCodeLayers rejects a
// layer stack where two layers define the same class name. Defaults to
// false (rejected).
func (b *Builder) WithAllowSameNamesAcrossLayers(allow bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNotUsed(); err != nil {
		return err
	}
	b.allowSameNamesAcrossLayers = allow
	return nil
}

// WithAllowSameNamesInParentAndLayers controls whether SetCodeLayers
// rejects a layer stack where a class name is also defined by the parent
// resolver. Defaults to false (rejected).
func (b *Builder) WithAllowSameNamesInParentAndLayers(allow bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNotUsed(); err != nil {
		return err
	}
	b.allowSameNamesInParentAndLayers = allow
	return nil
}

// WithCompiler sets the compiler factory used for both SetCodeLayersBySource
// and, when the top cache is enabled, ad-hoc compilation. Required: Build
// fails without one.
func (b *Builder) WithCompiler(compiler bytecode.CompilerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNotUsed(); err != nil {
		return err
	}
	b.compiler = compiler
	return nil
}

// WithLogger installs a structured logger for engine lifecycle events.
func (b *Builder) WithLogger(logger zerolog.Logger) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkNotUsed(); err != nil {
		return err
	}
	b.logger = logger
	return nil
}

// Build returns the configured Engine, constructing it on the first call
// and returning the same instance on every call after that.
func (b *Builder) Build() (*Engine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built != nil {
		return b.built, nil
	}
	if b.compiler == nil {
		return nil, errz.NewInvalidArgument("engine: compiler factory is required")
	}

	parent := b.parent
	if parent == nil {
		parent = bytecode.NoParent
	}
	layerMode := resolve.CurrentFirst
	if b.layerModeSet {
		layerMode = b.layerMode
	}
	topMode := resolve.ParentFirst
	if b.topModeSet {
		topMode = b.topMode
	}
	withTopCache := true
	if b.withTopCacheSet {
		withTopCache = b.withTopCache
	}

	id := loader.NewEngineID()

	var tc *topcache.TopCodeCache
	if withTopCache {
		tcb := topcache.NewBuilder()
		if err := tcb.WithCompiler(b.compiler); err != nil {
			return nil, err
		}
		if err := tcb.WithParent(parent); err != nil {
			return nil, err
		}
		if err := tcb.WithLogger(b.logger); err != nil {
			return nil, err
		}
		built, err := tcb.Build()
		if err != nil {
			return nil, err
		}
		tc = built
	}

	initialResolver := resolve.New(parent, nil, tc, layerMode, topMode)
	defaultLoader := loader.New(id, 0, true, initialResolver)

	eng := &Engine{
		id:                              id,
		parent:                          parent,
		layerMode:                       layerMode,
		topMode:                         topMode,
		allowSameNamesAcrossLayers:      b.allowSameNamesAcrossLayers,
		allowSameNamesInParentAndLayers: b.allowSameNamesInParentAndLayers,
		compiler:                        b.compiler,
		topCache:                        tc,
		logger:                          b.logger,
		defaultLoader:                   defaultLoader,
		attachedLoaders:                 map[uint64]weak.Pointer[loader.Loader]{},
	}
	eng.attachedLoaders[defaultLoader.Number()] = weak.Make(defaultLoader)
	if tc != nil {
		tc.SetParent(initialResolver)
	}

	b.built = eng
	b.used = true
	return eng, nil
}
