package stratumcli

import (
	"os"
	"path/filepath"
	"strings"
)

// fileSource is a bytecode.Source backed by a single file on disk. Its
// modification stamp is the file's mtime, so editing a file between two
// stratumctl invocations is enough to force recompilation.
type fileSource struct {
	path string
	info os.FileInfo
}

func newFileSource(path string) (*fileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &fileSource{path: path, info: info}, nil
}

func (f *fileSource) ID() string { return f.path }

func (f *fileSource) ModificationStamp() int64 { return f.info.ModTime().UnixNano() }

// className derives a class name from the file's base name: "greeter.src"
// becomes "greeter".
func (f *fileSource) className() string {
	base := filepath.Base(f.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (f *fileSource) read() ([]byte, error) {
	return os.ReadFile(f.path)
}

// listFiles returns fileSources for every regular file directly inside dir,
// sorted by path.
func listFiles(dir string) ([]*fileSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sources := make([]*fileSource, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fs, err := newFileSource(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		sources = append(sources, fs)
	}
	return sources, nil
}
