// Package fix rewrites a POM's dependency declarations with a minimal line
// diff: it removes unused declarations and inserts missing ones in their
// conventional place, leaving every other byte of the document untouched.
//
// The package is split into a line buffer (the single mutable resource), two
// planners that turn identity sets into ordered edits, a patch applier that
// executes edits against the buffer, and an orchestrating Fixer that
// sequences the two phases with a structural re-parse in between.
package fix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Buffer holds the document as an ordered sequence of lines. Lines are split
// on '\n' only; a '\r' preceding the newline stays inside the line content,
// so lines the planners never touch round-trip byte-identically.
type Buffer struct {
	lines []string
	// trailingNewline records whether the original content ended with '\n',
	// so writing the buffer back reproduces the file's final byte exactly.
	trailingNewline bool
}

// NewBuffer creates a buffer from raw UTF-8 document bytes.
func NewBuffer(data []byte) *Buffer {
	s := string(data)
	trailing := strings.HasSuffix(s, "\n")
	if trailing {
		s = s[:len(s)-1]
	}
	var lines []string
	if len(s) > 0 || trailing {
		lines = strings.Split(s, "\n")
	}
	return &Buffer{lines: lines, trailingNewline: trailing}
}

// ReadFile loads the document at path into a buffer.
func ReadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return NewBuffer(data), nil
}

// Len returns the current number of lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Lines returns a copy of the current lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Line returns the line at 0-based index i.
func (b *Buffer) Line(i int) string {
	return b.lines[i]
}

// Bytes renders the buffer back to document bytes.
func (b *Buffer) Bytes() []byte {
	s := strings.Join(b.lines, "\n")
	if b.trailingNewline {
		s += "\n"
	}
	return []byte(s)
}

// WriteFile persists the buffer atomically: the content is written to a
// temporary file in the same directory and renamed over path only on
// success, so a failed write never leaves a half-rewritten document.
func (b *Buffer) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}

// WriteCheckpoint writes the buffer's current state to path without the
// atomic dance. Used for the optional between-phases diagnostic snapshot.
func (b *Buffer) WriteCheckpoint(path string) error {
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	return nil
}
