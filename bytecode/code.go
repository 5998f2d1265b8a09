package bytecode

import (
	"sort"

	"github.com/deepnoodle-ai/stratum/errz"
)

// Code is the immutable artifact produced by compiling one or more sources
// together. Lookups are O(1) via two internal indices built at
// construction: sourceId -> CompiledSourceInfo, and className -> Bytecode.
// Nothing in Code mutates after NewCode returns.
type Code struct {
	sourceIDs []string
	sources   map[string]*CompiledSourceInfo
	classes   map[string]*Bytecode
}

// NewCode constructs a Code from its per-source metadata and the bytecode
// blobs it produced. Every class name appearing in any CompiledSourceInfo
// must have a corresponding Bytecode entry, and class names must be unique
// within the artifact; violations are reported as InvalidArgument errors.
func NewCode(infos []*CompiledSourceInfo, classes []*Bytecode) (*Code, error) {
	if len(infos) == 0 {
		return nil, errz.NewInvalidArgument("code: at least one compiled source is required")
	}

	classIndex := make(map[string]*Bytecode, len(classes))
	for _, bc := range classes {
		if bc == nil {
			return nil, errz.NewInvalidArgument("code: nil bytecode entry")
		}
		if _, dup := classIndex[bc.ClassName()]; dup {
			return nil, errz.NewInvalidArgument("code: duplicate class name " + bc.ClassName())
		}
		classIndex[bc.ClassName()] = bc
	}

	sourceIndex := make(map[string]*CompiledSourceInfo, len(infos))
	sourceIDs := make([]string, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			return nil, errz.NewInvalidArgument("code: nil compiled source info")
		}
		id := info.SourceID()
		if _, dup := sourceIndex[id]; dup {
			return nil, errz.NewInvalidArgument("code: duplicate source id " + id)
		}
		for _, name := range info.ClassNames() {
			if _, ok := classIndex[name]; !ok {
				return nil, errz.NewInvalidArgument("code: class " + name + " declared by source " + id + " has no bytecode")
			}
		}
		sourceIndex[id] = info
		sourceIDs = append(sourceIDs, id)
	}

	return &Code{sourceIDs: sourceIDs, sources: sourceIndex, classes: classIndex}, nil
}

// SourceSet returns the ids of every source included in this Code, sorted
// for deterministic iteration.
func (c *Code) SourceSet() []string {
	ids := make([]string, len(c.sourceIDs))
	copy(ids, c.sourceIDs)
	sort.Strings(ids)
	return ids
}

// HasSource reports whether sourceID is included in this Code.
func (c *Code) HasSource(sourceID string) bool {
	_, ok := c.sources[sourceID]
	return ok
}

// SourceInfo returns the CompiledSourceInfo for sourceID.
func (c *Code) SourceInfo(sourceID string) (*CompiledSourceInfo, bool) {
	info, ok := c.sources[sourceID]
	return info, ok
}

// MainClassNameFor returns the entry-point class for sourceID.
func (c *Code) MainClassNameFor(sourceID string) (string, bool) {
	info, ok := c.sources[sourceID]
	if !ok {
		return "", false
	}
	return info.MainClassName(), true
}

// ClassNamesFor returns every class name produced from sourceID.
func (c *Code) ClassNamesFor(sourceID string) ([]string, bool) {
	info, ok := c.sources[sourceID]
	if !ok {
		return nil, false
	}
	return info.ClassNames(), true
}

// BytecodeFor returns the compiled class named className, if this Code
// defines it.
func (c *Code) BytecodeFor(className string) (*Bytecode, bool) {
	bc, ok := c.classes[className]
	return bc, ok
}

// LastModifiedAtCompileTimeFor returns the modification stamp captured for
// sourceID when this Code was compiled.
func (c *Code) LastModifiedAtCompileTimeFor(sourceID string) (int64, bool) {
	info, ok := c.sources[sourceID]
	if !ok {
		return 0, false
	}
	return info.LastModifiedAtCompileTime(), true
}

// ClassNames returns every class name this Code defines, sorted. Used by
// the conflict analyzer to compare class-name membership across layers.
func (c *Code) ClassNames() []string {
	names := make([]string, 0, len(c.classes))
	for name := range c.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
