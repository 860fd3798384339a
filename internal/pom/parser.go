package pom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrNoDependencySection is returned when an operation needs the
// project-level <dependencies> block and the document has none.
var ErrNoDependencySection = errors.New("no project-level <dependencies> section found")

// ErrUnclosedDependencySection is returned when a <dependencies> block is
// opened but the document ends before its closing marker.
var ErrUnclosedDependencySection = errors.New("<dependencies> section has no closing marker")

// ParseError reports a document that is not well-formed enough to derive
// line positions from. It is always fatal; there is no best-effort recovery.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed POM at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed POM: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse derives the structural model from raw document bytes. It is strict:
// malformed XML is an error, never a partial model. The returned model's
// spans are valid only for this exact byte content.
//
// Only the project-level <dependencies> block contributes declarations.
// Blocks under <dependencyManagement> feed the managed set instead, and
// blocks nested anywhere else (profiles, build plugins) are ignored.
func Parse(data []byte) (*Model, error) {
	p := &parser{
		lineStarts: lineStarts(data),
		model: &Model{
			Managed:      ManagedSet{},
			SectionStart: -1,
			SectionEnd:   -1,
		},
	}
	if err := p.run(data); err != nil {
		return nil, err
	}
	return p.model, nil
}

type parser struct {
	lineStarts []int
	model      *Model

	// stack holds the local names of currently open elements.
	stack []string
	// sectionOpen is true between the project-level <dependencies> start
	// and its matching end marker.
	sectionOpen bool
}

func (p *parser) run(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		dep       *Dependency  // dependency currently being collected, if any
		depDepth  int          // stack depth of the open <dependency> element
		depInMgmt bool         // whether dep sits under <dependencyManagement>
		field     string       // direct child element of dep being read
		text      bytes.Buffer // accumulated character data for field
		parent    *ParentRef   // <parent> element being collected, if any
		parentFld string
	)

	for {
		// Tokens are contiguous, so the offset before reading one is
		// exactly where it begins in the input.
		tokStart := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := p.lineOf(dec.InputOffset()) + 1
			if p.sectionOpen {
				return fmt.Errorf("line %d: %w", line, ErrUnclosedDependencySection)
			}
			return &ParseError{Line: line, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.stack = append(p.stack, t.Name.Local)

			switch {
			case dep != nil && len(p.stack) == depDepth+1:
				field = t.Name.Local
				text.Reset()
			case parent != nil && p.pathIs("project", "parent", t.Name.Local):
				parentFld = t.Name.Local
				text.Reset()
			case p.pathIs("project", "dependencies"):
				if p.model.SectionStart < 0 {
					p.model.SectionStart = p.lineOf(tokStart)
					p.sectionOpen = true
				}
			case p.pathIs("project", "dependencies", "dependency"),
				p.pathIs("project", "dependencyManagement", "dependencies", "dependency"):
				dep = &Dependency{
					Origin: OriginProject,
					Span:   Span{Start: p.lineOf(tokStart) + 1},
				}
				depDepth = len(p.stack)
				depInMgmt = p.stack[1] == "dependencyManagement"
			case p.pathIs("project", "parent"):
				parent = &ParentRef{}
			}

		case xml.EndElement:
			endLine := p.lineOf(dec.InputOffset() - 1)

			switch {
			case dep != nil && field != "" && len(p.stack) == depDepth+1:
				dep.setField(field, strings.TrimSpace(text.String()))
				field = ""
			case dep != nil && t.Name.Local == "dependency" && len(p.stack) == depDepth:
				dep.Span.End = endLine + 2
				if depInMgmt {
					p.model.Managed.Add(dep.ConflictID())
				} else {
					p.model.Dependencies = append(p.model.Dependencies, *dep)
				}
				dep = nil
			case parent != nil && parentFld != "" && p.pathIs("project", "parent", parentFld):
				parent.setField(parentFld, strings.TrimSpace(text.String()))
				parentFld = ""
			case parent != nil && p.pathIs("project", "parent"):
				p.model.Parent = parent
				parent = nil
			case p.sectionOpen && p.pathIs("project", "dependencies"):
				p.model.SectionEnd = endLine
				p.sectionOpen = false
			}

			p.stack = p.stack[:len(p.stack)-1]

		case xml.CharData:
			if field != "" || parentFld != "" {
				text.Write(t)
			}
		}
	}

	if p.sectionOpen {
		return fmt.Errorf("line %d: %w", p.model.SectionStart+1, ErrUnclosedDependencySection)
	}
	return nil
}

// pathIs reports whether the open-element stack is exactly the given path.
func (p *parser) pathIs(path ...string) bool {
	if len(p.stack) != len(path) {
		return false
	}
	for i, name := range path {
		if p.stack[i] != name {
			return false
		}
	}
	return true
}

// lineOf maps a byte offset to its 0-based line index.
func (p *parser) lineOf(offset int64) int {
	return sort.Search(len(p.lineStarts), func(i int) bool {
		return int64(p.lineStarts[i]) > offset
	}) - 1
}

func lineStarts(data []byte) []int {
	starts := []int{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (d *Dependency) setField(name, value string) {
	switch name {
	case "groupId":
		d.GroupID = value
	case "artifactId":
		d.ArtifactID = value
	case "version":
		d.Version = value
	case "type":
		d.Type = value
	case "classifier":
		d.Classifier = value
	case "scope":
		d.Scope = Scope(value)
	}
}

func (p *ParentRef) setField(name, value string) {
	switch name {
	case "groupId":
		p.GroupID = value
	case "artifactId":
		p.ArtifactID = value
	case "version":
		p.Version = value
	case "relativePath":
		p.RelativePath = value
	}
}
