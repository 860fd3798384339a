// Package pom provides a line-aware structural model of a Maven POM's
// dependency declarations. It parses just enough of the document to know,
// for every <dependency> element, its coordinates and the exact line span it
// occupies, so that callers can plan line-level edits without disturbing any
// other byte of the file.
package pom

import (
	"fmt"
	"strings"
)

// Scope is a Maven dependency scope.
type Scope string

const (
	ScopeCompile  Scope = "compile"
	ScopeProvided Scope = "provided"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
	ScopeImport   Scope = "import"
)

// DefaultScope is what Maven assumes when a declaration carries no
// <scope> element.
const DefaultScope = ScopeCompile

// IsValid checks if the scope is one Maven recognizes.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeCompile, ScopeProvided, ScopeRuntime, ScopeTest, ScopeSystem, ScopeImport:
		return true
	default:
		return false
	}
}

// IsTest reports whether the scope is the test scope. Every other scope,
// including unrecognized ones, counts as non-test for placement purposes.
func (s Scope) IsTest() bool {
	return s == ScopeTest
}

// OrDefault returns the scope itself, or DefaultScope if empty.
func (s Scope) OrDefault() Scope {
	if s == "" {
		return DefaultScope
	}
	return s
}

// Origin says which document physically contains a declaration.
type Origin int

const (
	// OriginProject means the declaration is written in the document that
	// was parsed and may be edited in place.
	OriginProject Origin = iota
	// OriginParent means the declaration is inherited from a parent POM and
	// must never be edited through this document.
	OriginParent
)

func (o Origin) String() string {
	if o == OriginParent {
		return "parent"
	}
	return "project"
}

// Span is a half-open 1-based line range [Start,End) covering a complete
// <dependency> element, opening and closing marker lines included.
//
// A Span is only meaningful for the exact document state it was parsed from.
// Once the underlying lines are mutated in any way, every Span derived from
// the previous state is stale and must not be used; re-parse instead.
type Span struct {
	Start int
	End   int
}

// Len returns the number of lines the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsZero reports whether the span carries no position, which is the case for
// declarations inherited from a parent document.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Dependency is one parsed <dependency> declaration.
type Dependency struct {
	GroupID    string
	ArtifactID string
	// Type defaults to "jar" when the element is absent.
	Type       string
	Classifier string
	Version    string
	// Scope is empty when the element is absent; use Scope.OrDefault.
	Scope  Scope
	Origin Origin
	Span   Span
}

// ManagementKey returns groupId:artifactId:type:classifier, the identity used
// to match removal requests. Version never participates in identity.
func (d Dependency) ManagementKey() string {
	return fmt.Sprintf("%s:%s:%s:%s", d.GroupID, d.ArtifactID, d.typeOrDefault(), d.Classifier)
}

// ConflictID returns groupId:artifactId:type[:classifier], the key under
// which Maven resolves version conflicts. It is string-comparable and totally
// ordered, and is the unit of lexicographic placement and of deduplication
// against already-declared dependencies.
func (d Dependency) ConflictID() string {
	return conflictID(d.GroupID, d.ArtifactID, d.typeOrDefault(), d.Classifier)
}

// GroupKey returns the groupId, which defines the contiguous run a new
// declaration is placed into when one exists.
func (d Dependency) GroupKey() string {
	return d.GroupID
}

func (d Dependency) typeOrDefault() string {
	if d.Type == "" {
		return "jar"
	}
	return d.Type
}

func (d Dependency) String() string {
	parts := []string{d.GroupID, d.ArtifactID, d.typeOrDefault()}
	if d.Classifier != "" {
		parts = append(parts, d.Classifier)
	}
	if d.Version != "" {
		parts = append(parts, d.Version)
	}
	return strings.Join(parts, ":")
}

func conflictID(groupID, artifactID, typ, classifier string) string {
	key := groupID + ":" + artifactID + ":" + typ
	if classifier != "" {
		key += ":" + classifier
	}
	return key
}

// ManagedSet is the set of conflict IDs whose version is pinned through
// <dependencyManagement>. Membership suppresses the <version> element when a
// new declaration is generated.
type ManagedSet map[string]struct{}

// Contains reports whether the conflict ID has a managed version.
func (m ManagedSet) Contains(conflictID string) bool {
	_, ok := m[conflictID]
	return ok
}

// Add records a conflict ID as managed.
func (m ManagedSet) Add(conflictID string) {
	m[conflictID] = struct{}{}
}

// Merge adds every entry of other into the set.
func (m ManagedSet) Merge(other ManagedSet) {
	for k := range other {
		m[k] = struct{}{}
	}
}

// ParentRef is the <parent> element of a POM.
type ParentRef struct {
	GroupID    string
	ArtifactID string
	Version    string
	// RelativePath defaults to "../pom.xml" per Maven convention.
	RelativePath string
}

// Path returns the relative path to the parent POM, applying the Maven
// default when none was declared.
func (p ParentRef) Path() string {
	if p.RelativePath == "" {
		return "../pom.xml"
	}
	return p.RelativePath
}

// Model is the ordered structural view of one POM document's dependency
// declarations, plus the managed-version set derived from its
// <dependencyManagement> block.
type Model struct {
	// Dependencies in ascending document order. Project-origin entries carry
	// valid spans; parent-origin entries follow with zero spans.
	Dependencies []Dependency
	// Managed holds the conflict IDs pinned by <dependencyManagement>,
	// including any merged in from the parent chain.
	Managed ManagedSet
	// SectionStart and SectionEnd are the 0-based line indices of the
	// project-level <dependencies> and </dependencies> marker lines.
	SectionStart int
	SectionEnd   int
	// Parent is nil when the document declares no <parent>.
	Parent *ParentRef
}

// ProjectDependencies returns only the declarations physically present in
// this document, in ascending document order.
func (m *Model) ProjectDependencies() []Dependency {
	out := make([]Dependency, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		if d.Origin == OriginProject {
			out = append(out, d)
		}
	}
	return out
}
