package fix

import (
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderDiff produces a line diff between two document states for dry-run
// previews. Inserted lines are prefixed with "+", removed lines with "-",
// unchanged lines with a space. Colors follow the fatih/color globals, so
// NO_COLOR and non-TTY output stay plain.
func RenderDiff(before, after []byte) string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)

	var sb strings.Builder
	for _, d := range diffs {
		for _, line := range splitDiffLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				sb.WriteString(add.Sprint("+" + line))
			case diffmatchpatch.DiffDelete:
				sb.WriteString(del.Sprint("-" + line))
			default:
				sb.WriteString(" " + line)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func splitDiffLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
