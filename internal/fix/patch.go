package fix

import "fmt"

// EditKind discriminates the two edit operations.
type EditKind int

const (
	// EditDelete removes the 0-based line span [Start,End).
	EditDelete EditKind = iota
	// EditInsert places Lines immediately before 0-based index Index.
	EditInsert
)

// Edit is one buffer operation. Indices are interpreted against the buffer
// state at the moment the edit is applied, not against the state the edit
// was planned from; callers sequence edits so the two agree (deletions in
// descending order, insertions phase-ordered).
type Edit struct {
	Kind  EditKind
	Start int
	End   int
	Index int
	Lines []string
}

// Deletion builds an edit removing the 0-based span [start,end).
func Deletion(start, end int) Edit {
	return Edit{Kind: EditDelete, Start: start, End: end}
}

// Insertion builds an edit placing lines before 0-based index.
func Insertion(index int, lines []string) Edit {
	return Edit{Kind: EditInsert, Index: index, Lines: lines}
}

// Apply executes edits in order. Every untouched line keeps its exact byte
// content; the line count changes by net inserted minus deleted lines.
func (b *Buffer) Apply(edits []Edit) error {
	for _, e := range edits {
		switch e.Kind {
		case EditDelete:
			if e.Start < 0 || e.End > len(b.lines) || e.Start > e.End {
				return fmt.Errorf("deletion span [%d,%d) out of range for %d lines", e.Start, e.End, len(b.lines))
			}
			b.lines = append(b.lines[:e.Start], b.lines[e.End:]...)
		case EditInsert:
			if e.Index < 0 || e.Index > len(b.lines) {
				return fmt.Errorf("insertion index %d out of range for %d lines", e.Index, len(b.lines))
			}
			inserted := make([]string, 0, len(b.lines)+len(e.Lines))
			inserted = append(inserted, b.lines[:e.Index]...)
			inserted = append(inserted, e.Lines...)
			inserted = append(inserted, b.lines[e.Index:]...)
			b.lines = inserted
		default:
			return fmt.Errorf("unknown edit kind %d", e.Kind)
		}
	}
	return nil
}
