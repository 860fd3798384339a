package fix

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scottrw93/maven-plugins/internal/pom"
)

// Addition is one dependency to declare. It is an immutable input; the
// planner never mutates it.
type Addition struct {
	GroupID     string
	ArtifactID  string
	BaseVersion string
	// Type defaults to "jar"; it only participates in the conflict ID and is
	// never emitted as an element.
	Type       string
	Classifier string
	Scope      pom.Scope
}

// ConflictID returns the addition's total-order sort key, the same key
// existing declarations carry.
func (a Addition) ConflictID() string {
	d := pom.Dependency{
		GroupID:    a.GroupID,
		ArtifactID: a.ArtifactID,
		Type:       a.Type,
		Classifier: a.Classifier,
	}
	return d.ConflictID()
}

func (a Addition) String() string {
	parts := []string{a.GroupID, a.ArtifactID, a.BaseVersion}
	if a.Classifier != "" {
		parts = append(parts, a.Classifier)
	}
	if s := a.Scope.OrDefault(); s != pom.DefaultScope {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ":")
}

// render generates the declaration block. The version element is suppressed
// when the conflict ID has a managed version, the classifier when blank, and
// the scope when it is the default.
func (a Addition) render(managed pom.ManagedSet) []string {
	lines := []string{
		"    <dependency>",
		"      <groupId>" + a.GroupID + "</groupId>",
		"      <artifactId>" + a.ArtifactID + "</artifactId>",
	}
	if !managed.Contains(a.ConflictID()) {
		lines = append(lines, "      <version>"+a.BaseVersion+"</version>")
	}
	if a.Classifier != "" {
		lines = append(lines, "      <classifier>"+a.Classifier+"</classifier>")
	}
	if s := a.Scope.OrDefault(); s != pom.DefaultScope {
		lines = append(lines, "      <scope>"+string(s)+"</scope>")
	}
	lines = append(lines, "    </dependency>")
	return lines
}

// PlanInsertions computes insertion edits placing each addition in its
// conventional spot. Placement is computed entirely against the frozen model
// (no index ever depends on a just-inserted block), then each edit's index is
// shifted by the lines earlier edits insert above it, so the returned edits
// are valid when applied in order. Test-scope additions are planned before
// primary-scope ones, and within a phase additions are planned in descending
// conflict-ID order: additions landing on the same spot therefore stack in
// ascending key order.
//
// Additions whose conflict ID is already declared are silently dropped.
func PlanInsertions(m *pom.Model, adds []Addition, managed pom.ManagedSet) ([]Edit, error) {
	declared := map[string]struct{}{}
	for _, d := range m.Dependencies {
		declared[d.ConflictID()] = struct{}{}
	}

	var effective []Addition
	for _, a := range adds {
		key := a.ConflictID()
		if _, ok := declared[key]; ok {
			continue
		}
		declared[key] = struct{}{}
		effective = append(effective, a)
	}
	if len(effective) == 0 {
		return nil, nil
	}
	if m.SectionStart < 0 {
		return nil, fmt.Errorf("cannot add %d dependencies: %w", len(effective), pom.ErrNoDependencySection)
	}

	project := m.ProjectDependencies()
	primary, test := partitionRegions(project)
	primaryAnchor, testAnchor := fallbackAnchors(m, primary, test)

	var testAdds, primaryAdds []Addition
	for _, a := range effective {
		if a.Scope.OrDefault().IsTest() {
			testAdds = append(testAdds, a)
		} else {
			primaryAdds = append(primaryAdds, a)
		}
	}
	sortByConflictIDDescending(testAdds)
	sortByConflictIDDescending(primaryAdds)

	var edits []Edit
	var placed []placedBlock
	emit := func(a Addition, region []pom.Dependency, anchor int) {
		at := placeAddition(a, region, anchor)
		lines := a.render(managed)
		edits = append(edits, Insertion(applied(at, placed), lines))
		placed = append(placed, placedBlock{at: at, n: len(lines)})
	}
	for _, a := range testAdds {
		emit(a, test, testAnchor)
	}
	for _, a := range primaryAdds {
		emit(a, primary, primaryAnchor)
	}
	return edits, nil
}

// placedBlock records an already-planned insertion in frozen-model line
// coordinates.
type placedBlock struct {
	at int
	n  int
}

// applied converts a frozen-model insertion index into the index that is
// valid once every earlier edit has been applied. Blocks planned at the same
// frozen index do not count: the later (lexicographically smaller) addition
// belongs above them.
func applied(at int, placed []placedBlock) int {
	out := at
	for _, p := range placed {
		if p.at < at {
			out += p.n
		}
	}
	return out
}

// partitionRegions splits the document-ordered declarations into the longest
// non-test prefix (primary region) and the longest test suffix (test region).
// Either may be empty; they never overlap.
func partitionRegions(deps []pom.Dependency) (primary, test []pom.Dependency) {
	i := 0
	for i < len(deps) && !deps[i].Scope.OrDefault().IsTest() {
		i++
	}
	primary = deps[:i]

	j := len(deps)
	for j > i && deps[j-1].Scope.OrDefault().IsTest() {
		j--
	}
	test = deps[j:]
	return primary, test
}

// fallbackAnchors resolves each region's fallback insertion index (0-based).
// New primary entries default to the top of the primary region; new test
// entries default to just after the test region's last entry. An empty region
// borrows the other region's boundary, and when both are empty everything
// lands just inside the <dependencies> marker.
func fallbackAnchors(m *pom.Model, primary, test []pom.Dependency) (primaryAnchor, testAnchor int) {
	switch {
	case len(primary) > 0:
		primaryAnchor = primary[0].Span.Start - 1
	case len(test) > 0:
		primaryAnchor = test[0].Span.Start - 1
	default:
		primaryAnchor = m.SectionStart + 1
	}

	switch {
	case len(test) > 0:
		testAnchor = test[len(test)-1].Span.End - 1
	case len(primary) > 0:
		testAnchor = primary[len(primary)-1].Span.End - 1
	default:
		testAnchor = m.SectionStart + 1
	}
	return primaryAnchor, testAnchor
}

// placeAddition picks the 0-based insertion index for one addition within a
// region. The search is restricted to the contiguous run of entries sharing
// the addition's groupId when such a run exists; the addition goes before the
// first candidate sorting greater, else at the run's first entry, else at the
// region's fallback anchor.
func placeAddition(a Addition, region []pom.Dependency, anchor int) int {
	candidates := region
	group := groupRun(region, a.GroupID)
	if len(group) > 0 {
		candidates = group
	}

	key := a.ConflictID()
	for _, d := range candidates {
		if d.ConflictID() > key {
			return d.Span.Start - 1
		}
	}
	if len(group) > 0 {
		return group[0].Span.Start - 1
	}
	return anchor
}

// groupRun returns the first contiguous run of region entries with the given
// groupId, or nil if the group is not present.
func groupRun(region []pom.Dependency, groupID string) []pom.Dependency {
	start := -1
	for i, d := range region {
		if d.GroupKey() == groupID {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	end := start
	for end < len(region) && region[end].GroupKey() == groupID {
		end++
	}
	return region[start:end]
}

func sortByConflictIDDescending(adds []Addition) {
	sort.Slice(adds, func(i, j int) bool {
		ki, kj := adds[i].ConflictID(), adds[j].ConflictID()
		if ki != kj {
			return ki > kj
		}
		return adds[i].String() > adds[j].String()
	})
}
