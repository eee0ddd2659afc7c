// Package document applies the f-string pipeline to a whole Go source text:
// every f-string comment gets its generated statement inserted on the line
// below, or refreshed in place when it is already there.
package document

import (
	"context"
	"fmt"
	"strings"

	"gofstring/internal/fstring"
	"gofstring/internal/imports"
	"gofstring/internal/logging"
)

// EditKind says whether a generated line was added or rewritten.
type EditKind int

const (
	Insert EditKind = iota
	Replace
)

func (k EditKind) String() string {
	if k == Replace {
		return "replace"
	}
	return "insert"
}

// Edit is one generated line written into the document.
type Edit struct {
	Kind EditKind
	// CommentLine is the 0-based line of the f-string comment in the input.
	CommentLine int
	// Old is the replaced line, empty for inserts.
	Old       string
	New       string
	Variables []string
}

// Outcome is the result of processing a document.
type Outcome struct {
	Text        string
	Edits       []Edit
	Comments    int
	ImportAdded bool
}

// Changed reports whether Text differs from the input.
func (o *Outcome) Changed() bool {
	return len(o.Edits) > 0 || o.ImportAdded
}

// Options configure a Processor.
type Options struct {
	Generator fstring.Options
	// ImportPath is the package Generator.Call lives in. Empty disables
	// import bookkeeping.
	ImportPath string
}

// DefaultOptions generate fmt.Sprintf calls and keep "fmt" imported.
func DefaultOptions() Options {
	return Options{
		Generator:  fstring.Options{Call: fstring.DefaultCall, DefaultVerb: fstring.VerbAny},
		ImportPath: "fmt",
	}
}

// Processor rewrites documents. It holds only configuration and is safe for
// concurrent use.
type Processor struct {
	opts Options
}

// NewProcessor creates a processor.
func NewProcessor(opts Options) *Processor {
	return &Processor{opts: opts}
}

// Process scans text line by line. The whole input text is the type
// resolver's source for every comment, so the result does not depend on the
// order comments are handled in.
func (p *Processor) Process(ctx context.Context, text string) (*Outcome, error) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+4)
	outcome := &Outcome{}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		out = append(out, line)

		res, ok := fstring.Process(line, text, p.opts.Generator)
		if !ok {
			continue
		}
		outcome.Comments++
		p.logDecisions(i, res)

		// CRLF files keep their line endings on generated lines.
		eol := ""
		if strings.HasSuffix(line, "\r") {
			eol = "\r"
		}
		generated := indentation(line) + res.Statement + eol
		prefix := fstring.GeneratedPrefix(res.Template)

		if i+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i+1]), prefix) {
			old := lines[i+1]
			out = append(out, generated)
			i++
			if old != generated {
				outcome.Edits = append(outcome.Edits, Edit{
					Kind:        Replace,
					CommentLine: i - 1,
					Old:         old,
					New:         generated,
					Variables:   res.Variables,
				})
			}
			continue
		}

		out = append(out, generated)
		outcome.Edits = append(outcome.Edits, Edit{
			Kind:        Insert,
			CommentLine: i,
			New:         generated,
			Variables:   res.Variables,
		})
	}

	outcome.Text = strings.Join(out, "\n")

	if outcome.Comments > 0 && p.opts.ImportPath != "" {
		withImport, added, err := imports.Ensure(ctx, outcome.Text, p.opts.ImportPath)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure import %q: %w", p.opts.ImportPath, err)
		}
		outcome.Text = withImport
		outcome.ImportAdded = added
	}

	if outcome.Changed() {
		logging.Document("%d comments, %d edits, import added=%v", outcome.Comments, len(outcome.Edits), outcome.ImportAdded)
	} else {
		logging.DocumentDebug("processed %d lines: %d comments, up to date", len(lines), outcome.Comments)
	}
	return outcome, nil
}

func (p *Processor) logDecisions(line int, res *fstring.Result) {
	log := logging.Get(logging.CategoryGenerate)
	for i, d := range res.Decisions {
		log.Debug("line %d: {%s} -> %s (from %s, rule %s, type %q)",
			line+1, res.Template.References[i].Name, d.Verb, d.Source, d.Resolution.Rule, d.Resolution.Spelling)
	}
}

// indentation returns the leading whitespace of line.
func indentation(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
