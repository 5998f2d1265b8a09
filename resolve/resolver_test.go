package resolve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/stratum/bytecode"
	"github.com/deepnoodle-ai/stratum/internal/fixture"
	"github.com/deepnoodle-ai/stratum/resolve"
	"github.com/deepnoodle-ai/stratum/topcache"
)

func singleClassLayer(t *testing.T, sourceID, className string, body byte) *bytecode.Code {
	t.Helper()
	src := fixture.NewSource(sourceID, 1)
	return fixture.SingleClassCode(src, className, []byte{body})
}

func TestLoadClassCurrentFirstReturnsTopmostLayer(t *testing.T) {
	v1 := singleClassLayer(t, "s0", "A", 1)
	v2 := singleClassLayer(t, "s1", "A", 2)

	r := resolve.New(bytecode.NoParent, []*bytecode.Code{v1, v2}, nil, resolve.CurrentFirst, resolve.ParentFirst)
	bc, err := r.LoadClass("A")
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, bc.Bytes())

	// Reordering the stack flips which definition wins.
	r2 := resolve.New(bytecode.NoParent, []*bytecode.Code{v2, v1}, nil, resolve.CurrentFirst, resolve.ParentFirst)
	bc2, err := r2.LoadClass("A")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, bc2.Bytes())
}

func TestLoadClassParentFirstPrefersParentWhenDefined(t *testing.T) {
	layer := singleClassLayer(t, "s0", "A", 1)
	parent := fixture.NewParentResolver()
	parent.Define("A", []byte{99})

	r := resolve.New(parent, []*bytecode.Code{layer}, nil, resolve.ParentFirst, resolve.ParentFirst)
	bc, err := r.LoadClass("A")
	require.NoError(t, err)
	assert.Equal(t, []byte{99}, bc.Bytes())
}

func TestLoadClassParentFirstFallsBackToLayers(t *testing.T) {
	layer := singleClassLayer(t, "s0", "A", 1)
	parent := fixture.NewParentResolver() // defines nothing

	r := resolve.New(parent, []*bytecode.Code{layer}, nil, resolve.ParentFirst, resolve.ParentFirst)
	bc, err := r.LoadClass("A")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, bc.Bytes())
}

func TestLoadClassNotFound(t *testing.T) {
	r := resolve.New(bytecode.NoParent, nil, nil, resolve.CurrentFirst, resolve.ParentFirst)
	_, err := r.LoadClass("Missing")
	require.Error(t, err)
}

func buildTopCache(t *testing.T, compiler *fixture.CountingCompiler) *topcache.TopCodeCache {
	t.Helper()
	b := topcache.NewBuilder()
	require.NoError(t, b.WithCompiler(compiler.Func()))
	tc, err := b.Build()
	require.NoError(t, err)
	return tc
}

func TestLoadMainClassFromTopCacheWhenSourceNotInAnyLayer(t *testing.T) {
	compiler := fixture.NewCountingCompiler(fixture.SingleSourceCompiler(func(s bytecode.Source) string { return "Ad" + s.ID() }))
	tc := buildTopCache(t, compiler)
	r := resolve.New(bytecode.NoParent, nil, tc, resolve.CurrentFirst, resolve.ParentFirst)

	src := fixture.NewSource("adhoc-1", 1)
	bc, err := r.LoadMainClass(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "Adadhoc-1", bc.ClassName())
}

func TestLoadMainClassFailsWithNoTopCacheAndSourceNotInLayers(t *testing.T) {
	r := resolve.New(bytecode.NoParent, nil, nil, resolve.CurrentFirst, resolve.ParentFirst)
	src := fixture.NewSource("adhoc-1", 1)
	_, err := r.LoadMainClass(context.Background(), src)
	require.Error(t, err)
}

func TestLoadClassFromSourceRejectsUndeclaredClass(t *testing.T) {
	src := fixture.NewSource("s0", 1)
	layer := fixture.SingleClassCode(src, "Main", []byte{1})
	r := resolve.New(bytecode.NoParent, []*bytecode.Code{layer}, nil, resolve.CurrentFirst, resolve.ParentFirst)

	_, err := r.LoadClassFromSource(context.Background(), src, "NotDeclared")
	require.Error(t, err)
}

func TestCloneSharesTopCacheCloneWithSeparateTopCacheDoesNot(t *testing.T) {
	compiler := fixture.NewCountingCompiler(fixture.SingleSourceCompiler(func(s bytecode.Source) string { return "Ad" }))
	tc := buildTopCache(t, compiler)
	r := resolve.New(bytecode.NoParent, nil, tc, resolve.CurrentFirst, resolve.ParentFirst)

	attached := r.Clone()
	detached := r.CloneWithSeparateTopCache()

	src := fixture.NewSource("adhoc-1", 1)
	_, err := attached.LoadMainClass(context.Background(), src)
	require.NoError(t, err)

	// The attached clone shares r's top cache: r finds the entry without
	// compiling again.
	_, err = r.LoadMainClass(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, compiler.Total())

	// The detached clone's top cache is independent: it has no entry for
	// src yet, so it must compile again rather than observing attached's
	// cached value.
	_, err = detached.LoadMainClass(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Total())
}

func TestTopModeCurrentFirstPrefersFreshTopCacheEntry(t *testing.T) {
	compiler := fixture.NewCountingCompiler(fixture.SingleSourceCompiler(func(s bytecode.Source) string { return "FromTop" }))
	tc := buildTopCache(t, compiler)

	src := fixture.NewSource("dual", 1)
	layer := fixture.SingleClassCode(src, "FromLayer", []byte{1})

	r := resolve.New(bytecode.NoParent, []*bytecode.Code{layer}, tc, resolve.CurrentFirst, resolve.CurrentFirst)

	// Prime the top cache for the same source id used by the layer.
	_, err := tc.GetUpToDate(context.Background(), src)
	require.NoError(t, err)

	bc, err := r.LoadMainClass(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "FromTop", bc.ClassName(), "topMode=CurrentFirst biases toward an already-held top cache entry")
}
