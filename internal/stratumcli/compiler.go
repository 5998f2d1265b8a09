package stratumcli

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/stratum/bytecode"
)

// compileSources implements bytecode.CompilerFunc for stratumctl: each
// source is a file on disk, its declared class is named after the file's
// base name, and its bytecode is simply the file's raw bytes. This stands
// in for a real compiler front-end, which stratumctl does not have.
func compileSources(ctx context.Context, parent bytecode.ParentResolver, sources []bytecode.Source) (*bytecode.Code, error) {
	infos := make([]*bytecode.CompiledSourceInfo, 0, len(sources))
	classes := make([]*bytecode.Bytecode, 0, len(sources))
	for _, s := range sources {
		fs, ok := s.(*fileSource)
		if !ok {
			return nil, fmt.Errorf("stratumctl: source %q is not a file on disk", s.ID())
		}
		content, err := fs.read()
		if err != nil {
			return nil, err
		}
		name := fs.className()
		bc, err := bytecode.NewBytecode(name, content)
		if err != nil {
			return nil, err
		}
		info, err := bytecode.NewCompiledSourceInfo(fs, name, []string{name}, fs.ModificationStamp())
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
		classes = append(classes, bc)
	}
	return bytecode.NewCode(infos, classes)
}
