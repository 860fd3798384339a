package pom

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader turns a POM file on disk into a structural model.
// This allows substituting a canned model in tests.
type Loader interface {
	// Load parses the document at path. When the document declares a
	// <parent> whose relativePath resolves to a readable POM, the parent
	// chain's dependencies are appended with OriginParent and its managed
	// versions are merged in.
	Load(path string) (*Model, error)
}

// fileLoader is the real implementation reading from the filesystem.
type fileLoader struct{}

// NewFileLoader returns the default filesystem-backed loader.
func NewFileLoader() Loader {
	return &fileLoader{}
}

func (l *fileLoader) Load(path string) (*Model, error) {
	return l.load(path, map[string]bool{})
}

func (l *fileLoader) load(path string, visited map[string]bool) (*Model, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if visited[abs] {
		return nil, fmt.Errorf("parent POM cycle at %s", abs)
	}
	visited[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading POM: %w", err)
	}
	model, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", abs, err)
	}

	if model.Parent == nil {
		return model, nil
	}

	parentPath := filepath.Join(filepath.Dir(abs), model.Parent.Path())
	if info, err := os.Stat(parentPath); err == nil && info.IsDir() {
		parentPath = filepath.Join(parentPath, "pom.xml")
	}
	if _, err := os.Stat(parentPath); err != nil {
		// Parent not on disk (resolved from a repository instead); the
		// model is still usable, just without inherited declarations.
		return model, nil
	}

	parentModel, err := l.load(parentPath, visited)
	if err != nil {
		return nil, fmt.Errorf("parsing parent POM: %w", err)
	}
	for _, d := range parentModel.Dependencies {
		d.Origin = OriginParent
		d.Span = Span{}
		model.Dependencies = append(model.Dependencies, d)
	}
	model.Managed.Merge(parentModel.Managed)
	return model, nil
}
