package analyze

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter matches groupId:artifactId pairs against glob patterns, e.g.
// "com.example.*:*" or "*:*-shaded". Used to keep the analyzer's findings
// for selected dependencies out of a fix run.
type Filter struct {
	globs []glob.Glob
}

// NewFilter compiles the given patterns. An empty pattern list yields a
// filter that matches nothing.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		g, err := glob.Compile(p, ':')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Matches reports whether any pattern matches the groupId:artifactId pair.
// A nil filter matches nothing.
func (f *Filter) Matches(groupArtifact string) bool {
	if f == nil {
		return false
	}
	for _, g := range f.globs {
		if g.Match(groupArtifact) {
			return true
		}
	}
	return false
}
