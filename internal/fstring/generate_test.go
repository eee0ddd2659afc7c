package fstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func process(t *testing.T, line, source string) *Result {
	t.Helper()
	res, ok := Process(line, source, Options{})
	require.True(t, ok, "expected %q to parse", line)
	return res
}

func TestProcess_BaselineScenario(t *testing.T) {
	res := process(t, `// fstring message := "Hello {name}, you are {age} years old"`, "package main\n")

	assert.Equal(t, `message := fmt.Sprintf("Hello %v, you are %v years old", name, age)`, res.Statement)
	assert.Equal(t, []string{"name", "age"}, res.Variables)
}

func TestProcess_ResolvedTypes(t *testing.T) {
	source := `package main

func main() {
	var age int = 5
	name := "gopher"
	ratio := 0.75
	ok := true
}
`
	res := process(t, `// fs greeting = "You are {age}"`, source)
	assert.Equal(t, `greeting = fmt.Sprintf("You are %d", age)`, res.Statement)

	res = process(t, `// fs s := "{name} {ratio} {ok}"`, source)
	assert.Equal(t, `s := fmt.Sprintf("%s %f %t", name, ratio, ok)`, res.Statement)
}

func TestProcess_EscapedBraces(t *testing.T) {
	res := process(t, `// fs s := "\{literal\}"`, "")
	assert.Equal(t, `s := fmt.Sprintf("{literal}")`, res.Statement)
	assert.Empty(t, res.Variables)

	res = process(t, `// fs s := "\{{x}\} and {y}"`, "")
	assert.Equal(t, `s := fmt.Sprintf("{%v} and %v", x, y)`, res.Statement)
	assert.Equal(t, []string{"x", "y"}, res.Variables)
}

func TestProcess_OrderAndRepeats(t *testing.T) {
	res := process(t, `// fs s := "{b} {a} {b}"`, "")
	assert.Equal(t, `s := fmt.Sprintf("%v %v %v", b, a, b)`, res.Statement)
	assert.Equal(t, []string{"b", "a", "b"}, res.Variables)
}

func TestProcess_HintPrecedence(t *testing.T) {
	source := "var x string = \"ten\"\n"
	res := process(t, `// fs s := "{x:d}"`, source)
	assert.Equal(t, `s := fmt.Sprintf("%d", x)`, res.Statement)
	assert.Equal(t, FromHint, res.Decisions[0].Source)
}

func TestProcess_HintTable(t *testing.T) {
	res := process(t, `// fs s := "{a:d}{b:f}{c:s}{d:v}{e:t}{f:x}{g:w}{h:q}"`, "")
	assert.Equal(t, `s := fmt.Sprintf("%d%f%s%v%t%x%w%v", a, b, c, d, e, f, g, h)`, res.Statement)

	// Every recognized letter maps to the verb of the same letter.
	for _, h := range HintLetters() {
		res := process(t, `// fs s := "{v:`+string(h)+`}"`, "")
		assert.Equal(t, `s := fmt.Sprintf("%`+string(h)+`", v)`, res.Statement, "hint %c", h)
		assert.Equal(t, FromHint, res.Decisions[0].Source)
	}
}

func TestProcess_BlankBracesStayLiteral(t *testing.T) {
	res := process(t, `// fs s := "a { } b {x}"`, "")
	assert.Equal(t, `s := fmt.Sprintf("a { } b %v", x)`, res.Statement)
	assert.Equal(t, []string{"x"}, res.Variables)

	res = process(t, `// fs s := "{ }"`, "")
	assert.Equal(t, `s := fmt.Sprintf("{ }")`, res.Statement)
	assert.Empty(t, res.Variables)
}

func TestProcess_NamingFallback(t *testing.T) {
	res := process(t, `// fs msg := "failed: {lastErr}"`, "package main\n")
	assert.Equal(t, `msg := fmt.Sprintf("failed: %w", lastErr)`, res.Statement)
	assert.Equal(t, FromName, res.Decisions[0].Source)
}

func TestProcess_QuoteStylePreserved(t *testing.T) {
	res := process(t, "// fs s := `{dir}/{file}`", "")
	assert.Equal(t, "s := fmt.Sprintf(`%v/%v`, dir, file)", res.Statement)

	res = process(t, `// fs s := 'v={v}'`, "")
	assert.Equal(t, `s := fmt.Sprintf('v=%v', v)`, res.Statement)
}

func TestProcess_PercentIsEscaped(t *testing.T) {
	res := process(t, `// fs s := "{pct:d}% done"`, "")
	assert.Equal(t, `s := fmt.Sprintf("%d%% done", pct)`, res.Statement)
}

func TestProcess_Options(t *testing.T) {
	res, ok := Process(`// fs s := "{who}"`, "", Options{Call: "fmt.Errorf", DefaultVerb: VerbString})
	require.True(t, ok)
	assert.Equal(t, `s := fmt.Errorf("%s", who)`, res.Statement)
}

func TestProcess_NoMatch(t *testing.T) {
	res, ok := Process(`// just a comment`, "", Options{})
	assert.False(t, ok)
	assert.Nil(t, res)
}

func TestProcess_UnicodeOffsets(t *testing.T) {
	res := process(t, `// fs s := "héllo {name}, 日本 {n:d}!"`, "")
	assert.Equal(t, `s := fmt.Sprintf("héllo %v, 日本 %d!", name, n)`, res.Statement)
}

func TestSelectSpecifier(t *testing.T) {
	source := `
var count int64 = 3
items := []string{"a"}
failure := errors.New("boom")
`
	cases := []struct {
		ref    Reference
		verb   string
		source DecisionSource
	}{
		{Reference{Name: "count"}, VerbInt, FromType},
		{Reference{Name: "items"}, VerbAny, FromType},
		{Reference{Name: "failure"}, VerbWrapped, FromType},
		{Reference{Name: "err"}, VerbWrapped, FromName},
		{Reference{Name: "ParseError"}, VerbWrapped, FromName},
		{Reference{Name: "mystery"}, VerbAny, FromDefault},
		{Reference{Name: "count", Hint: 'x'}, VerbHex, FromHint},
	}

	for _, tc := range cases {
		got := SelectSpecifier(tc.ref, source, "")
		assert.Equal(t, tc.verb, got.Verb, "ref %+v", tc.ref)
		assert.Equal(t, tc.source, got.Source, "ref %+v", tc.ref)
	}
}

func TestLooksLikeError(t *testing.T) {
	assert.True(t, LooksLikeError("err"))
	assert.True(t, LooksLikeError("Error"))
	assert.True(t, LooksLikeError("lastErr"))
	assert.True(t, LooksLikeError("parseError"))
	assert.False(t, LooksLikeError("errCount"))
	assert.False(t, LooksLikeError("name"))
}
