package fix

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottrw93/maven-plugins/internal/pom"
)

// Test Plan for the insertion planner:
// - A primary addition lands between its group neighbors in key order
// - A test addition with an empty test region lands after the last primary entry
// - A primary addition with an empty primary region lands before the first test entry
// - Test entries always end up below primary entries inserted in the same run
// - Additions stacking on one anchor come out in ascending key order
// - Group-run restriction: an addition sorting after the whole run goes to the run start
// - Version is omitted for managed conflict IDs, classifier when blank, scope when default
// - Already-declared conflict IDs are dropped
// - A document without a <dependencies> section fails with ErrNoDependencySection
// - Planning with no effective additions yields no edits

func entry(group, artifact string, scope pom.Scope) string {
	lines := []string{
		"    <dependency>",
		"      <groupId>" + group + "</groupId>",
		"      <artifactId>" + artifact + "</artifactId>",
		"      <version>1.0</version>",
	}
	if scope != "" {
		lines = append(lines, "      <scope>"+string(scope)+"</scope>")
	}
	lines = append(lines, "    </dependency>")
	return strings.Join(lines, "\n")
}

func pomWith(entries ...string) string {
	var sb strings.Builder
	sb.WriteString("<project>\n  <artifactId>app</artifactId>\n  <dependencies>\n")
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	sb.WriteString("  </dependencies>\n</project>\n")
	return sb.String()
}

func planAndApply(t *testing.T, doc string, adds []Addition) string {
	t.Helper()
	m, err := pom.Parse([]byte(doc))
	require.NoError(t, err)
	buf := NewBuffer([]byte(doc))
	edits, err := PlanInsertions(m, adds, m.Managed)
	require.NoError(t, err)
	require.NoError(t, buf.Apply(edits))

	// The rewrite must still be a well-formed document.
	_, err = pom.Parse(buf.Bytes())
	require.NoError(t, err)
	return string(buf.Bytes())
}

var artifactRe = regexp.MustCompile(`<artifactId>([^<]+)</artifactId>`)

func artifactOrder(out string) []string {
	var order []string
	for _, match := range artifactRe.FindAllStringSubmatch(out, -1) {
		order = append(order, match[1])
	}
	return order
}

func TestPlanInsertions_BetweenGroupNeighbors(t *testing.T) {
	doc := pomWith(entry("a", "b", ""), entry("a", "c", ""))
	out := planAndApply(t, doc, []Addition{{GroupID: "a", ArtifactID: "bb", BaseVersion: "2.0"}})
	assert.Equal(t, []string{"app", "b", "bb", "c"}, artifactOrder(out))
}

func TestPlanInsertions_TestRegionEmptyFallsBackAfterPrimary(t *testing.T) {
	doc := pomWith(entry("x", "y", ""))
	out := planAndApply(t, doc, []Addition{
		{GroupID: "m", ArtifactID: "n", BaseVersion: "1.0", Scope: pom.ScopeTest},
	})
	assert.Equal(t, []string{"app", "y", "n"}, artifactOrder(out))
	assert.Contains(t, out, "<scope>test</scope>")
}

func TestPlanInsertions_PrimaryRegionEmptyGoesBeforeTests(t *testing.T) {
	doc := pomWith(entry("t", "tests", pom.ScopeTest))
	out := planAndApply(t, doc, []Addition{{GroupID: "p", ArtifactID: "prod", BaseVersion: "1.0"}})
	assert.Equal(t, []string{"app", "prod", "tests"}, artifactOrder(out))
}

func TestPlanInsertions_RegionSeparation(t *testing.T) {
	doc := pomWith(entry("a", "lib", ""), entry("z", "harness", pom.ScopeTest))
	out := planAndApply(t, doc, []Addition{
		{GroupID: "b", ArtifactID: "prod1", BaseVersion: "1"},
		{GroupID: "c", ArtifactID: "tst1", BaseVersion: "1", Scope: pom.ScopeTest},
		{GroupID: "d", ArtifactID: "prod2", BaseVersion: "1"},
		{GroupID: "e", ArtifactID: "tst2", BaseVersion: "1", Scope: pom.ScopeTest},
	})

	order := artifactOrder(out)
	lastPrimary, firstTest := -1, len(order)
	for i, a := range order {
		switch a {
		case "prod1", "prod2", "lib":
			if i > lastPrimary {
				lastPrimary = i
			}
		case "tst1", "tst2", "harness":
			if i < firstTest {
				firstTest = i
			}
		}
	}
	assert.Less(t, lastPrimary, firstTest, "every test entry below every primary entry: %v", order)
}

func TestPlanInsertions_SameAnchorStacksAscending(t *testing.T) {
	doc := pomWith(entry("x", "y", ""))
	out := planAndApply(t, doc, []Addition{
		{GroupID: "g", ArtifactID: "charlie", BaseVersion: "1", Scope: pom.ScopeTest},
		{GroupID: "g", ArtifactID: "alpha", BaseVersion: "1", Scope: pom.ScopeTest},
		{GroupID: "g", ArtifactID: "bravo", BaseVersion: "1", Scope: pom.ScopeTest},
	})
	assert.Equal(t, []string{"app", "y", "alpha", "bravo", "charlie"}, artifactOrder(out))
}

func TestPlanInsertions_GroupRunKeepsDocumentOrder(t *testing.T) {
	// The region is not sorted overall; the group run for "a" is scanned on
	// its own and the addition goes before its first greater sibling.
	doc := pomWith(entry("z", "zeta", ""), entry("a", "apple", ""), entry("a", "cherry", ""), entry("b", "beta", ""))
	out := planAndApply(t, doc, []Addition{{GroupID: "a", ArtifactID: "banana", BaseVersion: "1"}})
	assert.Equal(t, []string{"app", "zeta", "apple", "banana", "cherry", "beta"}, artifactOrder(out))
}

func TestPlanInsertions_AfterWholeGroupRunGoesToRunStart(t *testing.T) {
	doc := pomWith(entry("a", "apple", ""), entry("a", "banana", ""))
	out := planAndApply(t, doc, []Addition{{GroupID: "a", ArtifactID: "zucchini", BaseVersion: "1"}})
	assert.Equal(t, []string{"app", "zucchini", "apple", "banana"}, artifactOrder(out))
}

func TestPlanInsertions_FieldEmission(t *testing.T) {
	doc := pomWith(entry("x", "y", ""))
	m, err := pom.Parse([]byte(doc))
	require.NoError(t, err)

	managed := pom.ManagedSet{}
	managed.Add("g:managed:jar")

	adds := []Addition{
		{GroupID: "g", ArtifactID: "managed", BaseVersion: "9.9"},
		{GroupID: "g", ArtifactID: "full", BaseVersion: "1.0", Classifier: "sources", Scope: pom.ScopeRuntime},
		{GroupID: "g", ArtifactID: "plain", BaseVersion: "2.0"},
	}
	edits, err := PlanInsertions(m, adds, managed)
	require.NoError(t, err)

	blocks := map[string]string{}
	for _, e := range edits {
		block := strings.Join(e.Lines, "\n")
		blocks[artifactRe.FindStringSubmatch(block)[1]] = block
	}

	assert.NotContains(t, blocks["managed"], "<version>", "managed version suppressed")
	assert.Contains(t, blocks["plain"], "<version>2.0</version>")
	assert.NotContains(t, blocks["plain"], "<classifier>")
	assert.NotContains(t, blocks["plain"], "<scope>")
	assert.Contains(t, blocks["full"], "<classifier>sources</classifier>")
	assert.Contains(t, blocks["full"], "<scope>runtime</scope>")

	for _, block := range blocks {
		assert.True(t, strings.HasPrefix(block, "    <dependency>"))
		assert.True(t, strings.HasSuffix(block, "    </dependency>"))
	}
}

func TestPlanInsertions_DeclaredConflictIDsDropped(t *testing.T) {
	doc := pomWith(entry("a", "b", ""))
	m, err := pom.Parse([]byte(doc))
	require.NoError(t, err)

	edits, err := PlanInsertions(m, []Addition{
		{GroupID: "a", ArtifactID: "b", BaseVersion: "5.0"},
		{GroupID: "a", ArtifactID: "b", BaseVersion: "6.0"},
	}, m.Managed)
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestPlanInsertions_NoSection(t *testing.T) {
	m, err := pom.Parse([]byte("<project>\n  <artifactId>bare</artifactId>\n</project>\n"))
	require.NoError(t, err)

	_, err = PlanInsertions(m, []Addition{{GroupID: "g", ArtifactID: "a", BaseVersion: "1"}}, m.Managed)
	assert.ErrorIs(t, err, pom.ErrNoDependencySection)

	edits, err := PlanInsertions(m, nil, m.Managed)
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestPlanInsertions_EmptySectionTestsBelowPrimary(t *testing.T) {
	doc := pomWith()
	out := planAndApply(t, doc, []Addition{
		{GroupID: "t", ArtifactID: "tst", BaseVersion: "1", Scope: pom.ScopeTest},
		{GroupID: "p", ArtifactID: "prod", BaseVersion: "1"},
	})
	assert.Equal(t, []string{"app", "prod", "tst"}, artifactOrder(out))
}
