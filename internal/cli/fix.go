package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scottrw93/maven-plugins/internal/analyze"
	"github.com/scottrw93/maven-plugins/internal/config"
	"github.com/scottrw93/maven-plugins/internal/fix"
	"github.com/scottrw93/maven-plugins/internal/pom"
)

var (
	fixPomFlag           string
	fixAddFlag           []string
	fixRemoveFlag        []string
	fixReportFlag        string
	fixDryRunFlag        bool
	fixCheckpointFlag    bool
	fixFailOnWarningFlag bool
	fixSkipFlag          bool
	fixVerboseOutputFlag bool
	fixIgnoreUnusedFlag  []string
	fixIgnoreUsedFlag    []string
)

// fixCmd represents the fix command
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply analyzer findings to pom.xml",
	Long: `Fix rewrites the POM so its declared dependencies match what the code
actually uses. Removals and additions can come from an analyzer report
(--report) or be given directly (--add, --remove); both sources combine.

Additions use groupId:artifactId:version[:classifier][:scope] notation,
removals groupId:artifactId[:type[:classifier]].

Examples:
  # Apply an analyzer report
  pomfix fix --report target/analysis.json

  # Add one test dependency, remove another declaration
  pomfix fix --add org.junit.jupiter:junit-jupiter:5.10.2:test --remove commons-lang:commons-lang

  # Preview the rewrite without touching the file
  pomfix fix --report target/analysis.json --dry-run
`,
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)
	fixCmd.Flags().StringVar(&fixPomFlag, "pom", "pom.xml", "POM file to rewrite")
	fixCmd.Flags().StringSliceVar(&fixAddFlag, "add", nil, "dependency coordinates to declare")
	fixCmd.Flags().StringSliceVar(&fixRemoveFlag, "remove", nil, "dependency coordinates to remove")
	fixCmd.Flags().StringVar(&fixReportFlag, "report", "", "analyzer report (JSON) to apply")
	fixCmd.Flags().BoolVar(&fixDryRunFlag, "dry-run", false, "print a diff instead of rewriting")
	fixCmd.Flags().BoolVar(&fixCheckpointFlag, "checkpoint", false, "write pom.xml.step1 after the removal phase")
	fixCmd.Flags().BoolVar(&fixFailOnWarningFlag, "fail-on-warning", false, "treat skipped removals as fatal")
	fixCmd.Flags().BoolVar(&fixSkipFlag, "skip", false, "do nothing")
	fixCmd.Flags().BoolVar(&fixVerboseOutputFlag, "verbose-output", false, "log generated declaration blocks")
	fixCmd.Flags().StringSliceVar(&fixIgnoreUnusedFlag, "ignore-unused", nil, "groupId:artifactId globs never removed")
	fixCmd.Flags().StringSliceVar(&fixIgnoreUsedFlag, "ignore-used", nil, "groupId:artifactId globs never added")
}

func runFix(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(filepath.Dir(fixPomFlag)).Load()
	if err != nil {
		return err
	}
	opts := cfg.Options()
	if cmd.Flags().Changed("fail-on-warning") {
		opts.FailOnWarning = fixFailOnWarningFlag
	}
	if cmd.Flags().Changed("verbose-output") {
		opts.VerboseOutput = fixVerboseOutputFlag
	}
	if cmd.Flags().Changed("skip") {
		opts.Skip = fixSkipFlag
	}
	if cmd.Flags().Changed("checkpoint") {
		opts.Checkpoint = fixCheckpointFlag
	}
	opts.DryRun = fixDryRunFlag

	adds, removals, err := collectChanges(cfg)
	if err != nil {
		return err
	}

	logger := slog.Default().With("run", uuid.NewString())
	fixer := fix.New(pom.NewFileLoader(), logger, opts)
	result, err := fixer.Fix(fixPomFlag, adds, removals)
	if err != nil {
		return err
	}

	if result.Diff != "" {
		fmt.Print(result.Diff)
	}
	switch {
	case !result.Changed:
		fmt.Printf("%s already up to date\n", fixPomFlag)
	case fixDryRunFlag:
		fmt.Printf("would remove %d and add %d dependencies in %s\n", result.Removed, result.Added, fixPomFlag)
	default:
		fmt.Printf("✓ Removed %d and added %d dependencies in %s\n", result.Removed, result.Added, fixPomFlag)
	}
	if n := len(result.Warnings); n > 0 {
		fmt.Printf("%d removals skipped (see warnings above)\n", n)
	}
	return nil
}

// collectChanges merges the analyzer report with direct flags, applying the
// configured ignore filters to the report's findings only; explicit flags
// always win.
func collectChanges(cfg *config.Config) ([]fix.Addition, map[string]struct{}, error) {
	ignoreUnused, err := analyze.NewFilter(append(cfg.Ignore.Unused, fixIgnoreUnusedFlag...))
	if err != nil {
		return nil, nil, err
	}
	ignoreUsed, err := analyze.NewFilter(append(cfg.Ignore.Used, fixIgnoreUsedFlag...))
	if err != nil {
		return nil, nil, err
	}

	var adds []fix.Addition
	removals := map[string]struct{}{}

	if fixReportFlag != "" {
		report, err := analyze.ReadReport(fixReportFlag)
		if err != nil {
			return nil, nil, err
		}
		if adds, err = report.Additions(ignoreUsed); err != nil {
			return nil, nil, err
		}
		if removals, err = report.Removals(ignoreUnused); err != nil {
			return nil, nil, err
		}
	}

	for _, coord := range fixAddFlag {
		a, err := analyze.ParseAddition(coord)
		if err != nil {
			return nil, nil, err
		}
		adds = append(adds, a)
	}
	for _, coord := range fixRemoveFlag {
		key, err := analyze.ParseRemovalKey(coord)
		if err != nil {
			return nil, nil, err
		}
		removals[key] = struct{}{}
	}
	return adds, removals, nil
}
