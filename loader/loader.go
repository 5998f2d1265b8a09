// Package loader implements the opaque Loader handle (spec §4.5): a
// reference to a LayeredClassResolver tagged with the id of the engine that
// created it, so a resolver swap can authenticate its caller without any
// language-level friend/protected access control (spec §9, "Per-engine
// capability tag").
package loader

import (
	"sync/atomic"

	"github.com/gofrs/uuid"

	"github.com/deepnoodle-ai/stratum/errz"
	"github.com/deepnoodle-ai/stratum/resolve"
)

// EngineID is an opaque capability tag, created once per engine and carried
// by every loader it hands out. It uses github.com/gofrs/uuid so two
// engines can never collide even across process restarts.
type EngineID struct {
	value uuid.UUID
}

// NewEngineID returns a fresh, globally unique EngineID.
func NewEngineID() EngineID {
	id, err := uuid.NewV4()
	if err != nil {
		// uuid.NewV4 only fails if the system entropy source is broken,
		// which is not a condition this library can usefully recover from.
		panic("loader: failed to generate engine id: " + err.Error())
	}
	return EngineID{value: id}
}

// String returns the id's textual form.
func (id EngineID) String() string {
	return id.value.String()
}

// Loader is an opaque, identity-tagged reference to a LayeredClassResolver.
// Loaders are compared by (engineID, number); two loaders from different
// engines, or with different numbers, are never equal even if their
// resolvers happen to be equivalent.
type Loader struct {
	engineID EngineID
	number   uint64
	attached bool
	resolver atomic.Pointer[resolve.LayeredClassResolver]
}

// New constructs a Loader. resolver is the initial resolver it will present
// to callers until (if attached) the owning engine swaps it.
func New(engineID EngineID, number uint64, attached bool, resolver *resolve.LayeredClassResolver) *Loader {
	l := &Loader{engineID: engineID, number: number, attached: attached}
	l.resolver.Store(resolver)
	return l
}

// EngineID returns the id of the engine that created this loader.
func (l *Loader) EngineID() EngineID {
	return l.engineID
}

// Number returns this loader's number, unique within its engine.
func (l *Loader) Number() uint64 {
	return l.number
}

// IsAttached reports whether this loader's resolver is refreshed when its
// engine's layer stack is replaced.
func (l *Loader) IsAttached() bool {
	return l.attached
}

// Resolver returns the loader's current resolver. Readers may call this
// concurrently with a SwapResolver from the owning engine; they will always
// observe either the old or the new resolver, never a torn one.
func (l *Loader) Resolver() *resolve.LayeredClassResolver {
	return l.resolver.Load()
}

// SwapResolver atomically replaces this loader's resolver. It fails with an
// InvalidState error if callerEngineID does not match the engine that
// created this loader, or if this loader is detached (whose resolver is
// frozen at creation and never swapped).
func (l *Loader) SwapResolver(callerEngineID EngineID, resolver *resolve.LayeredClassResolver) error {
	if callerEngineID != l.engineID {
		return errz.NewInvalidState("loader not from this engine")
	}
	if !l.attached {
		return errz.NewInvalidState("cannot swap the resolver of a detached loader")
	}
	l.resolver.Store(resolver)
	return nil
}

// Equal reports whether l and other identify the same loader.
func (l *Loader) Equal(other *Loader) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.engineID == other.engineID && l.number == other.number
}
