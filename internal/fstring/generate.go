package fstring

import (
	"strings"
)

// DefaultCall is the formatting function the statement calls.
const DefaultCall = "fmt.Sprintf"

// Options tune generation. The zero value means fmt.Sprintf and %v.
type Options struct {
	Call        string
	DefaultVerb string
}

func (o Options) call() string {
	if o.Call == "" {
		return DefaultCall
	}
	return o.Call
}

// Result is one generated statement.
type Result struct {
	Statement string
	// Variables are the call arguments, in order, repeats included.
	Variables []string
	Template  *Template
	Decisions []Decision
}

// Process runs the whole pipeline on one comment line. The second return is
// false when the line is not a well-formed f-string comment.
func Process(line, source string, opts Options) (*Result, bool) {
	tmpl, ok := Parse(line)
	if !ok {
		return nil, false
	}
	return Generate(tmpl, source, opts), true
}

// Generate builds `target op call(quote format quote, args...)` for tmpl.
func Generate(tmpl *Template, source string, opts Options) *Result {
	escaped := []rune(escapeBraces(tmpl.Raw))
	toks := scanTokens(string(escaped))

	decisions := make([]Decision, len(toks))
	for i, tok := range toks {
		decisions[i] = SelectSpecifier(tok.ref, source, opts.DefaultVerb)
	}

	// Splice from the last token back so earlier offsets stay valid.
	var format string
	tail := len(escaped)
	for i := len(toks) - 1; i >= 0; i-- {
		format = decisions[i].Verb + escapePercent(string(escaped[toks[i].end:tail])) + format
		tail = toks[i].start
	}
	format = unescapeBraces(escapePercent(string(escaped[:tail])) + format)

	names := tmpl.Names()
	quote := tmpl.Quote.String()

	var sb strings.Builder
	sb.WriteString(tmpl.Target)
	sb.WriteString(" ")
	sb.WriteString(tmpl.Assign.Operator())
	sb.WriteString(" ")
	sb.WriteString(opts.call())
	sb.WriteString("(")
	sb.WriteString(quote)
	sb.WriteString(format)
	sb.WriteString(quote)
	for _, name := range names {
		sb.WriteString(", ")
		sb.WriteString(name)
	}
	sb.WriteString(")")

	return &Result{
		Statement: sb.String(),
		Variables: names,
		Template:  tmpl,
		Decisions: decisions,
	}
}

// escapePercent doubles literal percent signs so the format string prints them.
func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// GeneratedPrefix is what a previously generated line for tmpl starts with.
func GeneratedPrefix(tmpl *Template) string {
	return tmpl.Target + " " + tmpl.Assign.Operator()
}
