package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the fix command:
// - An analyzer report drives removals and additions end to end
// - --dry-run leaves the POM untouched
// - Invalid coordinates surface as command errors

const cliPOM = `<project>
  <artifactId>app</artifactId>
  <dependencies>
    <dependency>
      <groupId>commons-lang</groupId>
      <artifactId>commons-lang</artifactId>
      <version>2.6</version>
    </dependency>
  </dependencies>
</project>
`

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	resetFixFlags()
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	return rootCmd.Execute()
}

// resetFixFlags clears flag state left behind by a previous Execute, since
// cobra reuses the same command instances across test runs.
func resetFixFlags() {
	fixPomFlag = "pom.xml"
	fixAddFlag = nil
	fixRemoveFlag = nil
	fixReportFlag = ""
	fixDryRunFlag = false
	fixCheckpointFlag = false
	fixFailOnWarningFlag = false
	fixSkipFlag = false
	fixVerboseOutputFlag = false
	fixIgnoreUnusedFlag = nil
	fixIgnoreUsedFlag = nil
}

func TestFixCommand_AppliesReport(t *testing.T) {
	dir := t.TempDir()
	pomPath := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(pomPath, []byte(cliPOM), 0o644))

	reportPath := filepath.Join(dir, "analysis.json")
	require.NoError(t, os.WriteFile(reportPath, []byte(`{
	  "usedUndeclared": ["org.slf4j:slf4j-api:2.0.12"],
	  "unusedDeclared": ["commons-lang:commons-lang"]
	}`), 0o644))

	err := runCommand(t, "fix", "--pom", pomPath, "--report", reportPath)
	require.NoError(t, err)

	data, err := os.ReadFile(pomPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "commons-lang")
	assert.Contains(t, string(data), "slf4j-api")
}

func TestFixCommand_DryRunLeavesFile(t *testing.T) {
	dir := t.TempDir()
	pomPath := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(pomPath, []byte(cliPOM), 0o644))

	err := runCommand(t, "fix", "--pom", pomPath, "--dry-run",
		"--add", "org.slf4j:slf4j-api:2.0.12")
	require.NoError(t, err)

	data, err := os.ReadFile(pomPath)
	require.NoError(t, err)
	assert.Equal(t, cliPOM, string(data))
}

func TestFixCommand_InvalidCoordinate(t *testing.T) {
	dir := t.TempDir()
	pomPath := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(pomPath, []byte(cliPOM), 0o644))

	err := runCommand(t, "fix", "--pom", pomPath, "--add", "not-a-coordinate")
	assert.Error(t, err)
}
