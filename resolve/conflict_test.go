package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/stratum/bytecode"
	"github.com/deepnoodle-ai/stratum/internal/fixture"
	"github.com/deepnoodle-ai/stratum/resolve"
)

func codeWith(t *testing.T, sourceID string, classNames ...string) *bytecode.Code {
	t.Helper()
	src := fixture.NewSource(sourceID, 1)
	infos := make([]*bytecode.CompiledSourceInfo, 0, 1)
	bcs := make([]*bytecode.Bytecode, 0, len(classNames))
	info, err := bytecode.NewCompiledSourceInfo(src, classNames[0], classNames, 1)
	require.NoError(t, err)
	infos = append(infos, info)
	for _, name := range classNames {
		bc, err := bytecode.NewBytecode(name, []byte{1})
		require.NoError(t, err)
		bcs = append(bcs, bc)
	}
	code, err := bytecode.NewCode(infos, bcs)
	require.NoError(t, err)
	return code
}

func TestSameNamesAcrossLayersFindsDuplicatesOnly(t *testing.T) {
	layer0 := codeWith(t, "s0", "A", "B")
	layer1 := codeWith(t, "s1", "A", "C")

	conflicts := resolve.SameNamesAcrossLayers([]*bytecode.Code{layer0, layer1})

	require.Len(t, conflicts, 1)
	require.Contains(t, conflicts, "A")
	assert.Equal(t, []*bytecode.Code{layer0, layer1}, conflicts["A"])
	assert.NotContains(t, conflicts, "B")
	assert.NotContains(t, conflicts, "C")
}

func TestSameNamesAcrossLayersNoConflicts(t *testing.T) {
	layer0 := codeWith(t, "s0", "A")
	layer1 := codeWith(t, "s1", "B")

	conflicts := resolve.SameNamesAcrossLayers([]*bytecode.Code{layer0, layer1})
	assert.Empty(t, conflicts)
}

func TestSameNamesInParentAndLayers(t *testing.T) {
	layer0 := codeWith(t, "s0", "A", "B")
	parent := fixture.NewParentResolver()
	parent.Define("A", []byte{9})

	conflicts := resolve.SameNamesInParentAndLayers(parent, []*bytecode.Code{layer0})

	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts, "A")
	assert.NotContains(t, conflicts, "B")
}

func TestSameNamesInParentAndLayersSurvivesPanickingParent(t *testing.T) {
	layer0 := codeWith(t, "s0", "A")
	panicky := bytecode.ParentResolverFunc(func(string) (*bytecode.Bytecode, bool) {
		panic("boom")
	})

	conflicts := resolve.SameNamesInParentAndLayers(panicky, []*bytecode.Code{layer0})
	assert.Empty(t, conflicts, "a panicking parent must be treated as absence, not propagate")
}
