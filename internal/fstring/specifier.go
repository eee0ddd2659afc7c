package fstring

import (
	"strings"

	"gofstring/internal/typeinfer"
)

// Verbs.
const (
	VerbInt     = "%d"
	VerbFloat   = "%f"
	VerbString  = "%s"
	VerbAny     = "%v"
	VerbBool    = "%t"
	VerbHex     = "%x"
	VerbWrapped = "%w"
)

// hintVerbs is the fixed hint-letter table.
var hintVerbs = map[rune]string{
	'd': VerbInt,
	'f': VerbFloat,
	's': VerbString,
	'v': VerbAny,
	't': VerbBool,
	'x': VerbHex,
	'w': VerbWrapped,
}

// HintLetters returns the recognized hint letters in a stable order.
func HintLetters() []rune {
	return []rune{'d', 'f', 's', 'v', 't', 'w', 'x'}
}

var categoryVerbs = map[typeinfer.Category]string{
	typeinfer.Integer:  VerbInt,
	typeinfer.Float:    VerbFloat,
	typeinfer.String:   VerbString,
	typeinfer.Boolean:  VerbBool,
	typeinfer.Error:    VerbWrapped,
	typeinfer.Compound: VerbAny,
	typeinfer.Named:    VerbAny,
}

// Decision records how a verb was chosen for one reference.
type Decision struct {
	Verb       string
	Source     DecisionSource
	Resolution typeinfer.Resolution
}

// DecisionSource says which step produced a verb.
type DecisionSource int

const (
	FromHint DecisionSource = iota
	FromType
	FromName
	FromDefault
)

func (s DecisionSource) String() string {
	switch s {
	case FromHint:
		return "hint"
	case FromType:
		return "type"
	case FromName:
		return "name"
	default:
		return "default"
	}
}

// SelectSpecifier picks the verb for ref: explicit hint, then the resolved
// type, then the error naming convention, then defaultVerb.
func SelectSpecifier(ref Reference, source, defaultVerb string) Decision {
	if defaultVerb == "" {
		defaultVerb = VerbAny
	}

	if ref.HasHint() {
		if verb, ok := hintVerbs[ref.Hint]; ok {
			return Decision{Verb: verb, Source: FromHint}
		}
		return Decision{Verb: VerbAny, Source: FromHint}
	}

	res := typeinfer.Resolve(ref.Name, source)
	if res.Resolved() {
		if verb, ok := categoryVerbs[res.Category]; ok {
			return Decision{Verb: verb, Source: FromType, Resolution: res}
		}
	}

	if LooksLikeError(ref.Name) {
		return Decision{Verb: VerbWrapped, Source: FromName, Resolution: res}
	}
	return Decision{Verb: defaultVerb, Source: FromDefault, Resolution: res}
}

// LooksLikeError reports whether name follows the err/error naming convention.
func LooksLikeError(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, "err") || strings.HasSuffix(lower, "error")
}
