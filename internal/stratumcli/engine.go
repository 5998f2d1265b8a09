package stratumcli

import (
	"context"

	"github.com/deepnoodle-ai/stratum"
	"github.com/deepnoodle-ai/stratum/bytecode"
)

// buildEngine constructs an engine with one layer per directory in dirs,
// bottom-to-top in the order given, and returns it along with its default
// loader.
func buildEngine(ctx context.Context, dirs []string) (*stratum.Engine, *stratum.Loader, error) {
	builder := stratum.NewEngine()
	if err := builder.WithCompiler(compileSources); err != nil {
		return nil, nil, err
	}
	eng, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}

	bundles := make([][]bytecode.Source, len(dirs))
	for i, dir := range dirs {
		files, err := listFiles(dir)
		if err != nil {
			return nil, nil, err
		}
		sources := make([]bytecode.Source, len(files))
		for j, f := range files {
			sources[j] = f
		}
		bundles[i] = sources
	}
	if err := eng.SetCodeLayersBySource(ctx, bundles); err != nil {
		return nil, nil, err
	}
	return eng, eng.DefaultLoader(), nil
}
