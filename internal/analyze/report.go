// Package analyze adapts the output of an external dependency analyzer into
// the identity sets the fixer consumes. The analysis itself (which
// declarations are unused, which used classes are undeclared) happens
// elsewhere; this package only parses its report and coordinate notation.
package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/scottrw93/maven-plugins/internal/fix"
	"github.com/scottrw93/maven-plugins/internal/pom"
)

// Report is the analyzer's JSON output: coordinates of dependencies that are
// used but not declared, and declared but not used.
type Report struct {
	UsedUndeclared []string `json:"usedUndeclared"`
	UnusedDeclared []string `json:"unusedDeclared"`
}

// ReadReport loads and decodes an analyzer report file.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analyzer report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding analyzer report %s: %w", path, err)
	}
	return &r, nil
}

// ParseAddition parses groupId:artifactId:version[:classifier][:scope].
// A four-part coordinate whose last part is a recognized scope is read as
// g:a:v:scope; use the five-part form for a classifier that collides with a
// scope name.
func ParseAddition(coord string) (fix.Addition, error) {
	parts := strings.Split(coord, ":")
	for _, p := range parts {
		if p == "" {
			return fix.Addition{}, fmt.Errorf("invalid coordinate %q: empty segment", coord)
		}
	}

	a := fix.Addition{}
	switch len(parts) {
	case 3:
		a.GroupID, a.ArtifactID, a.BaseVersion = parts[0], parts[1], parts[2]
	case 4:
		a.GroupID, a.ArtifactID, a.BaseVersion = parts[0], parts[1], parts[2]
		if s := pom.Scope(parts[3]); s.IsValid() {
			a.Scope = s
		} else {
			a.Classifier = parts[3]
		}
	case 5:
		a.GroupID, a.ArtifactID, a.BaseVersion = parts[0], parts[1], parts[2]
		a.Classifier = parts[3]
		s := pom.Scope(parts[4])
		if !s.IsValid() {
			return fix.Addition{}, fmt.Errorf("invalid coordinate %q: unknown scope %q", coord, parts[4])
		}
		a.Scope = s
	default:
		return fix.Addition{}, fmt.Errorf("invalid coordinate %q: want groupId:artifactId:version[:classifier][:scope]", coord)
	}
	return a, nil
}

// ParseRemovalKey parses groupId:artifactId[:type[:classifier]] into the
// management key removals are matched by.
func ParseRemovalKey(coord string) (string, error) {
	parts := strings.Split(coord, ":")
	if len(parts) < 2 || len(parts) > 4 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid coordinate %q: want groupId:artifactId[:type[:classifier]]", coord)
	}
	d := pom.Dependency{GroupID: parts[0], ArtifactID: parts[1]}
	if len(parts) > 2 {
		d.Type = parts[2]
	}
	if len(parts) > 3 {
		d.Classifier = parts[3]
	}
	return d.ManagementKey(), nil
}

// Additions parses the report's usedUndeclared coordinates, dropping any
// whose groupId:artifactId matches the filter.
func (r *Report) Additions(ignore *Filter) ([]fix.Addition, error) {
	var adds []fix.Addition
	for _, coord := range r.UsedUndeclared {
		a, err := ParseAddition(coord)
		if err != nil {
			return nil, err
		}
		if ignore.Matches(a.GroupID + ":" + a.ArtifactID) {
			continue
		}
		adds = append(adds, a)
	}
	return adds, nil
}

// Removals parses the report's unusedDeclared coordinates into a management
// key set, dropping any whose groupId:artifactId matches the filter.
func (r *Report) Removals(ignore *Filter) (map[string]struct{}, error) {
	keys := map[string]struct{}{}
	for _, coord := range r.UnusedDeclared {
		parts := strings.SplitN(coord, ":", 3)
		if len(parts) >= 2 && ignore.Matches(parts[0]+":"+parts[1]) {
			continue
		}
		key, err := ParseRemovalKey(coord)
		if err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}
	return keys, nil
}
