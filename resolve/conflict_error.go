package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deepnoodle-ai/stratum/bytecode"
)

// ClassNameConflictError is raised by a setCodeLayers pre-check (spec §4.6
// steps 2-3) when forbidden duplicate class names are found. Either map may
// be nil: the engine's two checks run sequentially and the first one that
// finds a conflict returns before the second runs.
type ClassNameConflictError struct {
	AcrossLayers   map[string][]*bytecode.Code
	ParentVsLayers map[string][]*bytecode.Code
}

// Error implements the error interface.
func (e *ClassNameConflictError) Error() string {
	var b strings.Builder
	b.WriteString("class name conflict: ")
	if len(e.AcrossLayers) > 0 {
		fmt.Fprintf(&b, "%d name(s) defined in multiple layers (%s)", len(e.AcrossLayers), joinedNames(e.AcrossLayers))
	}
	if len(e.ParentVsLayers) > 0 {
		if len(e.AcrossLayers) > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%d name(s) also defined by the parent resolver (%s)", len(e.ParentVsLayers), joinedNames(e.ParentVsLayers))
	}
	return b.String()
}

func joinedNames(m map[string][]*bytecode.Code) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
