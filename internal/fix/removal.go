package fix

import (
	"fmt"
	"sort"

	"github.com/scottrw93/maven-plugins/internal/pom"
)

// Warning is a recoverable condition encountered while planning: the affected
// declaration is skipped, the rest of the run proceeds.
type Warning struct {
	Dependency pom.Dependency
	Reason     string
}

func (w Warning) String() string {
	return fmt.Sprintf("unable to fix %s: %s", w.Dependency, w.Reason)
}

// PlanRemovals turns a set of management keys into deletion edits against a
// freshly parsed model. Every project-origin declaration whose management key
// is in remove is deleted, duplicates included; declarations inherited from a
// parent document cannot be edited here and produce a warning instead.
//
// Deletions are ordered by descending start line so that applying them one
// after another never shifts a still-pending span.
func PlanRemovals(m *pom.Model, remove map[string]struct{}) ([]Edit, []Warning) {
	var matched []pom.Dependency
	var warnings []Warning
	for _, d := range m.Dependencies {
		if _, ok := remove[d.ManagementKey()]; !ok {
			continue
		}
		if d.Origin != pom.OriginProject {
			warnings = append(warnings, Warning{
				Dependency: d,
				Reason:     fmt.Sprintf("declared in %s POM", d.Origin),
			})
			continue
		}
		matched = append(matched, d)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Span.Start > matched[j].Span.Start
	})

	edits := make([]Edit, 0, len(matched))
	for _, d := range matched {
		// Span is 1-based [Start,End); the buffer is 0-based.
		edits = append(edits, Deletion(d.Span.Start-1, d.Span.End-1))
	}
	return edits, warnings
}
