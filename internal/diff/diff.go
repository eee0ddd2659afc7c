// Package diff renders line diffs between the original and rewritten text of
// a Go file, using the sergi/go-diff library for the edit script.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Added line
	LineRemoved                 // Removed line
)

// Marker is the unified-diff prefix for the line type.
func (t LineType) Marker() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// Line represents a single line in the diff
type Line struct {
	Content string
	Type    LineType
}

// Hunk represents a group of changes
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Header returns the `@@ -a,b +c,d @@` line.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// FileDiff represents changes to a single file
type FileDiff struct {
	Path  string
	Hunks []Hunk
}

// Empty reports whether old and new were identical.
func (d *FileDiff) Empty() bool { return len(d.Hunks) == 0 }

// Stats counts added and removed lines.
func (d *FileDiff) Stats() (added, removed int) {
	for _, h := range d.Hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				added++
			case LineRemoved:
				removed++
			}
		}
	}
	return added, removed
}

// Unified renders the diff in unified format. Empty diffs render as "".
func (d *FileDiff) Unified() string {
	if d.Empty() {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", d.Path, d.Path)
	for _, h := range d.Hunks {
		sb.WriteString(h.Header())
		sb.WriteString("\n")
		for _, l := range h.Lines {
			sb.WriteString(l.Type.Marker())
			sb.WriteString(l.Content)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

// Compute diffs oldContent against newContent line by line.
func Compute(path, oldContent, newContent string) *FileDiff {
	fd := &FileDiff{Path: path}
	if oldContent == newContent {
		return fd
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	// Line-level reduction avoids newline boundary artifacts.
	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	fd.Hunks = groupIntoHunks(toOperations(diffs), ContextLines)
	return fd
}

// operation is one line with its 0-based position on each side (-1 if absent).
type operation struct {
	typ     LineType
	oldLine int
	newLine int
	content string
}

func toOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldLine, newLine := 0, 0

	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" && d.Text == "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, operation{LineContext, oldLine, newLine, line})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, operation{LineRemoved, oldLine, -1, line})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, operation{LineAdded, -1, newLine, line})
				newLine++
			}
		}
	}
	return ops
}

// groupIntoHunks groups operations into hunks with context. Changes closer
// than 2*contextLines share a hunk.
func groupIntoHunks(ops []operation, contextLines int) []Hunk {
	var hunks []Hunk
	i := 0
	for i < len(ops) {
		if ops[i].typ == LineContext {
			i++
			continue
		}

		start := max(i-contextLines, 0)
		end := i
		for j := i; j < len(ops); j++ {
			if ops[j].typ != LineContext {
				end = j
				continue
			}
			if j-end > 2*contextLines {
				break
			}
		}
		stop := min(end+contextLines+1, len(ops))

		h := Hunk{}
		for _, op := range ops[start:stop] {
			h.Lines = append(h.Lines, Line{Content: op.content, Type: op.typ})
			if op.typ != LineAdded {
				h.OldCount++
			}
			if op.typ != LineRemoved {
				h.NewCount++
			}
		}
		h.OldStart = firstPosition(ops[start:stop], func(op operation) int { return op.oldLine })
		h.NewStart = firstPosition(ops[start:stop], func(op operation) int { return op.newLine })
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

// firstPosition is the 1-based start line of a hunk side, or the line the
// side is anchored after when the hunk has no lines on that side.
func firstPosition(ops []operation, pos func(operation) int) int {
	for _, op := range ops {
		if p := pos(op); p >= 0 {
			return p + 1
		}
	}
	return 0
}
