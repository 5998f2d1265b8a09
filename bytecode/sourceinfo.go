package bytecode

import "github.com/deepnoodle-ai/stratum/errz"

// CompiledSourceInfo describes everything a Code artifact knows about one
// of the sources it was compiled from: which source it was, which class is
// its entry point, the full set of classes it produced, and the
// modification stamp the source carried at compile time.
type CompiledSourceInfo struct {
	source                    Source
	mainClassName             string
	classNames                map[string]struct{}
	lastModifiedAtCompileTime int64
}

// NewCompiledSourceInfo constructs a CompiledSourceInfo. source and
// mainClassName are required, and classNames must be non-empty and include
// mainClassName.
func NewCompiledSourceInfo(source Source, mainClassName string, classNames []string, lastModifiedAtCompileTime int64) (*CompiledSourceInfo, error) {
	if source == nil {
		return nil, errz.NewInvalidArgument("compiled source info: source is required")
	}
	if mainClassName == "" {
		return nil, errz.NewInvalidArgument("compiled source info: main class name is required")
	}
	if len(classNames) == 0 {
		return nil, errz.NewInvalidArgument("compiled source info: class names are required")
	}
	set := make(map[string]struct{}, len(classNames))
	for _, name := range classNames {
		if name == "" {
			return nil, errz.NewInvalidArgument("compiled source info: class name is empty")
		}
		set[name] = struct{}{}
	}
	if _, ok := set[mainClassName]; !ok {
		return nil, errz.NewInvalidArgument("compiled source info: main class name not present in class names")
	}
	return &CompiledSourceInfo{
		source:                    source,
		mainClassName:             mainClassName,
		classNames:                set,
		lastModifiedAtCompileTime: lastModifiedAtCompileTime,
	}, nil
}

// Source returns the originating source.
func (i *CompiledSourceInfo) Source() Source {
	return i.source
}

// SourceID returns the originating source's id.
func (i *CompiledSourceInfo) SourceID() string {
	return i.source.ID()
}

// MainClassName returns the entry-point class name for this source.
func (i *CompiledSourceInfo) MainClassName() string {
	return i.mainClassName
}

// HasClassName reports whether className was declared by this source.
func (i *CompiledSourceInfo) HasClassName(className string) bool {
	_, ok := i.classNames[className]
	return ok
}

// ClassNames returns a copy of every class name produced from this source.
func (i *CompiledSourceInfo) ClassNames() []string {
	names := make([]string, 0, len(i.classNames))
	for name := range i.classNames {
		names = append(names, name)
	}
	return names
}

// LastModifiedAtCompileTime returns the source's modification stamp as
// observed when this Code was compiled.
func (i *CompiledSourceInfo) LastModifiedAtCompileTime() int64 {
	return i.lastModifiedAtCompileTime
}
