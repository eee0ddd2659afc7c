package typeinfer

import (
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	intLitRe    = compile(`^-?(?:0[xX][0-9a-fA-F_]+|\d[\d_]*)$`, regexp2.None)
	floatLitRe  = compile(`^-?\d[\d_]*\.\d+(?:[eE][-+]?\d+)?$`, regexp2.None)
	stringLitRe = compile("^(?:\"(?:[^\"\\\\]|\\\\.)*\"|`[^`]*`|'(?:[^'\\\\]|\\\\.)+')$", regexp2.None)
	errorCtorRe = compile(`^(?:errors\.New|errors\.Join|fmt\.Errorf)\(`, regexp2.None)
	compositeRe = compile(`^((?:\[\d*\])+[\w.*\[\]]+|map\[[^\]\s]+\][\w.*\[\]]+)`, regexp2.None)
	makeOrNewRe = compile(`^(make|new)\(\s*((?:\[\d*\]|\*|map\[[^\]\s]+\]|chan\s+)*[\w.]+)`, regexp2.None)
)

// ClassifyExpr inspects the right-hand side of a short declaration and
// returns the spelling of its type when the expression shape gives it away.
func ClassifyExpr(rhs string) (string, bool) {
	expr := trimStatement(rhs)
	if expr == "" {
		return "", false
	}

	switch expr {
	case "true", "false":
		return "bool", true
	}
	if matches(intLitRe, expr) {
		return "int", true
	}
	if matches(floatLitRe, expr) {
		return "float64", true
	}
	if matches(stringLitRe, expr) {
		return "string", true
	}
	if matches(errorCtorRe, expr) {
		return "error", true
	}
	if m, err := compositeRe.FindStringMatch(expr); err == nil && m != nil {
		return m.GroupByNumber(1).String(), true
	}
	if m, err := makeOrNewRe.FindStringMatch(expr); err == nil && m != nil {
		spelling := m.GroupByNumber(2).String()
		if m.GroupByNumber(1).String() == "new" {
			return "*" + spelling, true
		}
		if Categorize(spelling) == Compound {
			return spelling, true
		}
	}
	return "", false
}

func matches(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// trimStatement cuts the expression where the statement ends: at the first
// `;`, `//`, `,` or unbalanced closer that is not inside a literal or a
// bracketed sub-expression.
func trimStatement(s string) string {
	var quote byte
	escaped := false
	depth := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if quote != 0 {
			switch {
			case ch == '\\' && quote != '`':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return strings.TrimSpace(s[:i])
			}
			depth--
		case ';', ',':
			if depth == 0 {
				return strings.TrimSpace(s[:i])
			}
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				return strings.TrimSpace(s[:i])
			}
		}
	}
	return strings.TrimSpace(s)
}

var integerSpellings = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
}

var compoundPrefixes = []string{"map", "[]", "[", "chan", "struct", "interface", "*"}

// Categorize maps a Go type spelling to its Category.
func Categorize(spelling string) Category {
	spelling = strings.TrimSpace(spelling)
	switch {
	case spelling == "":
		return Unknown
	case integerSpellings[spelling]:
		return Integer
	case spelling == "float32" || spelling == "float64":
		return Float
	case spelling == "string":
		return String
	case spelling == "bool":
		return Boolean
	case spelling == "error":
		return Error
	}
	for _, p := range compoundPrefixes {
		if strings.HasPrefix(spelling, p) {
			return Compound
		}
	}
	return Named
}
