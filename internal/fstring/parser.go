// Package fstring turns f-string comments into formatted-print statements.
//
// A comment such as
//
//	// fstring message := "Hello {name}, you are {age:d} years old"
//
// is parsed into a Template, each variable reference gets a format verb (from
// its hint, from the type resolver, or from naming conventions), and the
// generator emits
//
//	message := fmt.Sprintf("Hello %v, you are %d years old", name, age)
//
// Every function in this package is a pure function of its inputs.
package fstring

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Prefixes are the recognized comment markers, longest first.
var Prefixes = []string{
	"// fstring ",
	"//fstring ",
	"// fs ",
	"//fs ",
}

// AssignKind distinguishes `:=` from `=`.
type AssignKind int

const (
	DeclareAssign AssignKind = iota // :=
	AssignExisting                  // =
)

// Operator returns the Go spelling of the assignment.
func (k AssignKind) Operator() string {
	if k == AssignExisting {
		return "="
	}
	return ":="
}

// QuoteStyle is the quote character that delimited the template.
type QuoteStyle rune

const (
	DoubleQuote QuoteStyle = '"'
	SingleQuote QuoteStyle = '\''
	Backtick    QuoteStyle = '`'
)

func (q QuoteStyle) String() string { return string(rune(q)) }

// Reference is one `{name}` or `{name:h}` token of a template.
type Reference struct {
	Name string
	// Hint is the single lowercase letter after the colon, or 0.
	Hint rune
}

// HasHint reports whether the reference carried an explicit hint letter.
func (r Reference) HasHint() bool { return r.Hint != 0 }

// Template is a parsed f-string comment.
type Template struct {
	Target string
	Assign AssignKind
	Quote  QuoteStyle
	// Raw is the body between the quotes, escapes untouched.
	Raw string
	// References in left-to-right order, repeats included.
	References []Reference
}

// Names returns the reference names in argument order.
func (t *Template) Names() []string {
	names := make([]string, len(t.References))
	for i, ref := range t.References {
		names[i] = ref.Name
	}
	return names
}

// Escaped braces are swapped for private-use runes while scanning so that
// `\{` and `\}` can never open or close a reference.
const (
	escapedOpen  = "\uE000"
	escapedClose = "\uE001"
)

// matchTimeout bounds every regexp2 evaluation in the pipeline.
const matchTimeout = 2 * time.Second

var (
	grammarRe = mustCompile("^(\\w+)\\s*(:=|=)\\s*([\"'`])(.+?)\\3$", regexp2.None)
	tokenRe   = mustCompile(`\{([^{}:]+)(?::([a-z]))?\}`, regexp2.None)
)

func mustCompile(expr string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, opts)
	re.MatchTimeout = matchTimeout
	return re
}

// StripPrefix removes a recognized comment marker from a trimmed line.
func StripPrefix(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, p := range Prefixes {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(line[len(p):]), true
		}
	}
	return "", false
}

// IsComment reports whether line starts with a recognized marker.
func IsComment(line string) bool {
	_, ok := StripPrefix(line)
	return ok
}

// Parse parses an f-string comment line. It returns false when the line does
// not start with a marker or the remainder is not `ident (:=|=) "body"`.
func Parse(line string) (*Template, bool) {
	content, ok := StripPrefix(line)
	if !ok {
		return nil, false
	}

	m, err := grammarRe.FindStringMatch(content)
	if err != nil || m == nil {
		return nil, false
	}

	groups := m.Groups()
	tmpl := &Template{
		Target: groups[1].String(),
		Assign: DeclareAssign,
		Quote:  QuoteStyle([]rune(groups[3].String())[0]),
		Raw:    groups[4].String(),
	}
	if groups[2].String() == "=" {
		tmpl.Assign = AssignExisting
	}

	for _, tok := range scanTokens(escapeBraces(tmpl.Raw)) {
		tmpl.References = append(tmpl.References, tok.ref)
	}
	return tmpl, true
}

// ExtractReferences returns the references of a raw template body.
func ExtractReferences(body string) []Reference {
	toks := scanTokens(escapeBraces(body))
	refs := make([]Reference, 0, len(toks))
	for _, tok := range toks {
		refs = append(refs, tok.ref)
	}
	return refs
}

// token is a reference plus its rune span inside the escaped body.
type token struct {
	ref        Reference
	start, end int
}

func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, `\{`, escapedOpen)
	return strings.ReplaceAll(s, `\}`, escapedClose)
}

func unescapeBraces(s string) string {
	s = strings.ReplaceAll(s, escapedOpen, "{")
	return strings.ReplaceAll(s, escapedClose, "}")
}

// scanTokens finds non-overlapping reference tokens with a non-blank name. Offsets are rune
// offsets, which is what regexp2 reports.
func scanTokens(escaped string) []token {
	var toks []token
	m, err := tokenRe.FindStringMatch(escaped)
	for err == nil && m != nil {
		groups := m.Groups()
		ref := Reference{Name: strings.TrimSpace(groups[1].String())}
		if ref.Name == "" {
			// Whitespace-only braces stay literal text.
			m, err = tokenRe.FindNextMatch(m)
			continue
		}
		if hint := groups[2]; len(hint.Captures) > 0 {
			ref.Hint = []rune(hint.String())[0]
		}
		toks = append(toks, token{ref: ref, start: m.Index, end: m.Index + m.Length})
		m, err = tokenRe.FindNextMatch(m)
	}
	return toks
}
