package topcache

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/stratum/bytecode"
	"github.com/deepnoodle-ai/stratum/errz"
)

// Builder constructs a TopCodeCache using the one-shot commit protocol
// required by spec §4.6: once Build has been called, every setter fails
// with an InvalidState error. Build itself is idempotent and returns the
// same *TopCodeCache on every call after the first.
type Builder struct {
	mu       sync.Mutex
	used     bool
	built    *TopCodeCache
	compiler bytecode.CompilerFunc
	parent   bytecode.ParentResolver
	logger   zerolog.Logger
}

// NewBuilder returns a Builder with default logging (silent).
func NewBuilder() *Builder {
	return &Builder{logger: zerolog.Nop()}
}

// WithCompiler sets the compiler factory used for ad-hoc compilations.
func (b *Builder) WithCompiler(compiler bytecode.CompilerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used {
		return errz.NewInvalidState("top code cache builder already used")
	}
	b.compiler = compiler
	return nil
}

// WithParent sets the resolver consulted by compilations that need to see
// layered classes.
func (b *Builder) WithParent(parent bytecode.ParentResolver) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used {
		return errz.NewInvalidState("top code cache builder already used")
	}
	b.parent = parent
	return nil
}

// WithLogger installs a structured logger for cache-level events.
func (b *Builder) WithLogger(logger zerolog.Logger) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used {
		return errz.NewInvalidState("top code cache builder already used")
	}
	b.logger = logger
	return nil
}

// Build returns the configured TopCodeCache, constructing it on the first
// call and returning the same instance thereafter.
func (b *Builder) Build() (*TopCodeCache, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built != nil {
		return b.built, nil
	}
	if b.compiler == nil {
		return nil, errz.NewInvalidArgument("top code cache: compiler factory is required")
	}
	tc := &TopCodeCache{compiler: b.compiler, logger: b.logger}
	parent := b.parent
	if parent == nil {
		parent = bytecode.NoParent
	}
	tc.SetParent(parent)
	b.built = tc
	b.used = true
	return tc, nil
}
