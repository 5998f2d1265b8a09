package resolve

import "github.com/deepnoodle-ai/stratum/bytecode"

// SameNamesAcrossLayers computes, for every class name defined in two or
// more layers, the ordered sub-list of layers that define it. Names defined
// in at most one layer are omitted. layers is bottom-to-top, as in the
// engine's layer stack; the returned slices preserve that order.
func SameNamesAcrossLayers(layers []*bytecode.Code) map[string][]*bytecode.Code {
	definers := map[string][]*bytecode.Code{}
	for _, layer := range layers {
		for _, name := range layer.ClassNames() {
			definers[name] = append(definers[name], layer)
		}
	}
	conflicts := map[string][]*bytecode.Code{}
	for name, layerList := range definers {
		if len(layerList) >= 2 {
			conflicts[name] = layerList
		}
	}
	return conflicts
}

// SameNamesInParentAndLayers computes, for every class name defined by any
// layer and also defined by parent, the ordered sub-list of layers that
// define it. A parent that panics on Resolve is treated as if it returned
// absent, per spec §4.2 ("No exception thrown by the parent propagates;
// they are treated as absence.").
func SameNamesInParentAndLayers(parent bytecode.ParentResolver, layers []*bytecode.Code) map[string][]*bytecode.Code {
	definers := map[string][]*bytecode.Code{}
	for _, layer := range layers {
		for _, name := range layer.ClassNames() {
			definers[name] = append(definers[name], layer)
		}
	}
	conflicts := map[string][]*bytecode.Code{}
	for name, layerList := range definers {
		if _, ok := safeResolve(parent, name); ok {
			conflicts[name] = layerList
		}
	}
	return conflicts
}

// safeResolve calls parent.Resolve, recovering from a panic and reporting
// it as a miss so a misbehaving parent can never propagate into the
// analyzer or the resolver.
func safeResolve(parent bytecode.ParentResolver, className string) (bc *bytecode.Bytecode, ok bool) {
	if parent == nil {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			bc, ok = nil, false
		}
	}()
	return parent.Resolve(className)
}
