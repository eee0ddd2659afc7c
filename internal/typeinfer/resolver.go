// Package typeinfer guesses the type of a Go variable from the text of the
// document it appears in.
//
// The guess is textual: a handful of declaration patterns are tried against
// the whole document, in priority order, and the first hit wins. There is no
// scoping, so a same-named variable anywhere in the text can produce the
// answer.
package typeinfer

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Category is the semantic type bucket that drives verb selection.
type Category int

const (
	Unknown Category = iota
	Integer
	Float
	String
	Boolean
	Error
	// Compound covers slices, arrays, maps, channels, pointers, structs and interfaces.
	Compound
	// Named is any other resolved spelling, e.g. time.Duration.
	Named
)

var categoryNames = map[Category]string{
	Unknown:  "unknown",
	Integer:  "integer",
	Float:    "float",
	String:   "string",
	Boolean:  "boolean",
	Error:    "error",
	Compound: "compound",
	Named:    "named",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// Rule identifies the heuristic that produced a Resolution.
type Rule int

const (
	RuleNone Rule = iota
	RuleExplicitDecl
	RuleShortLiteral
	RuleCallName
	RuleErrorCheck
)

var ruleNames = map[Rule]string{
	RuleNone:         "none",
	RuleExplicitDecl: "explicit_decl",
	RuleShortLiteral: "short_literal",
	RuleCallName:     "call_name",
	RuleErrorCheck:   "error_check",
}

func (r Rule) String() string {
	if s, ok := ruleNames[r]; ok {
		return s
	}
	return "none"
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// Spelling is the Go type as written or guessed ("int", "[]string", ...).
	Spelling string
	Category Category
	Rule     Rule
}

// Resolved reports whether any heuristic matched.
func (r Resolution) Resolved() bool { return r.Rule != RuleNone }

const matchTimeout = 2 * time.Second

// typeExpr matches a type spelling on the right of `var name`.
const typeExpr = `((?:\[\d*\]|\*|map\[[^\]\s]+\]|chan\s+)*[\w.]+(?:\{\})?)`

// Resolve applies the declaration heuristics for name against source.
func Resolve(name, source string) Resolution {
	name = strings.TrimSpace(name)
	if name == "" || source == "" {
		return Resolution{}
	}
	quoted := regexp2.Escape(name)

	if spelling, ok := explicitDecl(quoted, source); ok {
		return resolution(spelling, RuleExplicitDecl)
	}
	if spelling, ok := shortLiteral(quoted, source); ok {
		return resolution(spelling, RuleShortLiteral)
	}
	if spelling, ok := callName(quoted, source); ok {
		return resolution(spelling, RuleCallName)
	}
	if errorCheck(quoted, source) {
		return resolution("error", RuleErrorCheck)
	}
	return Resolution{}
}

func resolution(spelling string, rule Rule) Resolution {
	return Resolution{Spelling: spelling, Category: Categorize(spelling), Rule: rule}
}

// explicitDecl: `var name T = value`.
func explicitDecl(quoted, source string) (string, bool) {
	re := compile(`(?<![\w.])var\s+`+quoted+`\s+`+typeExpr+`\s*=`, regexp2.IgnoreCase)
	m, err := re.FindStringMatch(source)
	if err != nil || m == nil {
		return "", false
	}
	return m.GroupByNumber(1).String(), true
}

// shortLiteral: `name := <literal>`, every occurrence in document order.
func shortLiteral(quoted, source string) (string, bool) {
	re := compile(`(?<![\w.])`+quoted+`\s*:=[ \t]*([^\n]*)`, regexp2.IgnoreCase)
	m, err := re.FindStringMatch(source)
	for err == nil && m != nil {
		if spelling, ok := ClassifyExpr(m.GroupByNumber(1).String()); ok {
			return spelling, true
		}
		m, err = re.FindNextMatch(m)
	}
	return "", false
}

// callName: `name[, other...] := someFunc(`, guessed from the function name.
// The name may follow a keyword (`if v := f(); ...`) but not a comma.
func callName(quoted, source string) (string, bool) {
	re := compile(`(?<![\w.]|,[ \t]*)`+quoted+`(?:\s*,\s*\w+)*\s*:=\s*(\w+)\(`, regexp2.IgnoreCase)
	m, err := re.FindStringMatch(source)
	for err == nil && m != nil {
		if spelling, ok := guessFromFuncName(m.GroupByNumber(1).String()); ok {
			return spelling, true
		}
		m, err = re.FindNextMatch(m)
	}
	return "", false
}

// errorCheck: `a, name := f(...)` followed by `if name != nil`.
func errorCheck(quoted, source string) bool {
	re := compile(`(?<![\w.])`+quoted+`(?:\s*,\s*\w+)*\s*:=\s*[\w.]+\([^)]*\)\s*;?\s*(?:if|switch)\s+`+quoted+`\s*(?:!=|==)\s*nil`, regexp2.IgnoreCase)
	ok, err := re.MatchString(source)
	return err == nil && ok
}

func guessFromFuncName(fn string) (string, bool) {
	fn = strings.ToLower(fn)
	switch {
	case strings.Contains(fn, "bool"):
		return "bool", true
	case strings.Contains(fn, "int"):
		return "int", true
	case strings.Contains(fn, "float"):
		return "float64", true
	case strings.Contains(fn, "str"):
		return "string", true
	case strings.Contains(fn, "err"):
		return "error", true
	}
	return "", false
}

func compile(expr string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, opts)
	re.MatchTimeout = matchTimeout
	return re
}
