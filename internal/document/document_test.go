package document

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func process(t *testing.T, text string) *Outcome {
	t.Helper()
	out, err := NewProcessor(DefaultOptions()).Process(context.Background(), text)
	require.NoError(t, err)
	return out
}

func TestProcess_InsertsGeneratedLine(t *testing.T) {
	src := `package main

func main() {
	var age int = 5
	name := "gopher"
	// fstring message := "Hello {name}, you are {age} years old"
}
`
	want := `package main

import "fmt"

func main() {
	var age int = 5
	name := "gopher"
	// fstring message := "Hello {name}, you are {age} years old"
	message := fmt.Sprintf("Hello %s, you are %d years old", name, age)
}
`
	out := process(t, src)
	if diff := cmp.Diff(want, out.Text); diff != "" {
		t.Fatalf("Process mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, out.Changed())
	assert.True(t, out.ImportAdded)
	require.Len(t, out.Edits, 1)
	assert.Equal(t, Insert, out.Edits[0].Kind)
	assert.Equal(t, 5, out.Edits[0].CommentLine)
	assert.Equal(t, []string{"name", "age"}, out.Edits[0].Variables)
}

func TestProcess_ReplacesStaleLine(t *testing.T) {
	src := `package main

import "fmt"

func main() {
	// fs greeting = "You are {age:d}"
	greeting = fmt.Sprintf("You are %v", age)
}
`
	out := process(t, src)
	require.Len(t, out.Edits, 1)
	assert.Equal(t, Replace, out.Edits[0].Kind)
	assert.Equal(t, "\tgreeting = fmt.Sprintf(\"You are %v\", age)", out.Edits[0].Old)
	assert.Equal(t, "\tgreeting = fmt.Sprintf(\"You are %d\", age)", out.Edits[0].New)
	assert.False(t, out.ImportAdded)
	assert.Contains(t, out.Text, "\tgreeting = fmt.Sprintf(\"You are %d\", age)\n}")
}

func TestProcess_Idempotent(t *testing.T) {
	src := `package main

func f(lastErr error, count int) string {
	// fs msg := "{count} failures, last: {lastErr}"
	return msg
}
`
	first := process(t, src)
	require.True(t, first.Changed())

	second := process(t, first.Text)
	assert.False(t, second.Changed())
	assert.Empty(t, second.Edits)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, second.Comments)
}

func TestProcess_IdempotentCRLF(t *testing.T) {
	src := "package main\r\n\r\nimport \"fmt\"\r\n\r\nfunc f() string {\r\n\tvar n int = 1\r\n\t// fs s := \"{n}\"\r\n\ts := fmt.Sprintf(\"%d\", n)\r\n\treturn s\r\n}\r\n"
	out := process(t, src)
	assert.False(t, out.Changed())
	assert.Empty(t, out.Edits)
	assert.Equal(t, src, out.Text)
}

func TestProcess_CRLFInsertKeepsLineEndings(t *testing.T) {
	src := "package main\r\n\r\nfunc f() {\r\n\t// fs s := \"{x}\"\r\n}\r\n"
	want := "package main\r\n\r\nimport \"fmt\"\r\n\r\nfunc f() {\r\n\t// fs s := \"{x}\"\r\n\ts := fmt.Sprintf(\"%v\", x)\r\n}\r\n"

	first := process(t, src)
	if diff := cmp.Diff(want, first.Text); diff != "" {
		t.Fatalf("Process mismatch (-want +got):\n%s", diff)
	}

	second := process(t, first.Text)
	assert.False(t, second.Changed())
	assert.Equal(t, want, second.Text)
}

func TestProcess_NoComments(t *testing.T) {
	src := "package main\n\n// an ordinary comment\nfunc main() {}\n"
	out := process(t, src)
	assert.False(t, out.Changed())
	assert.Equal(t, src, out.Text)
	assert.Zero(t, out.Comments)
}

func TestProcess_MalformedCommentIsIgnored(t *testing.T) {
	src := "package main\n\n// fs broken := \"unterminated\n"
	out := process(t, src)
	assert.False(t, out.Changed())
	assert.Equal(t, src, out.Text)
}

func TestProcess_KeepsIndentation(t *testing.T) {
	src := "package main\n\nfunc f() {\n\tif true {\n\t\t// fs s := \"{x}\"\n\t}\n}\n"
	out := process(t, src)
	assert.Contains(t, out.Text, "\t\t// fs s := \"{x}\"\n\t\ts := fmt.Sprintf(\"%v\", x)\n\t}")
}

func TestProcess_MultipleComments(t *testing.T) {
	src := `package main

import (
	"os"
)

func main() {
	// fs a := "{x}"
	// fs b := "{y}"
}
`
	out := process(t, src)
	require.Len(t, out.Edits, 2)
	assert.Equal(t, 7, out.Edits[0].CommentLine)
	assert.Equal(t, 8, out.Edits[1].CommentLine)
	assert.Contains(t, out.Text, "import (\n\t\"os\"\n\t\"fmt\"\n)")
	assert.Contains(t, out.Text, "\t// fs a := \"{x}\"\n\ta := fmt.Sprintf(\"%v\", x)\n\t// fs b := \"{y}\"\n\tb := fmt.Sprintf(\"%v\", y)\n")
}

func TestProcess_NoImportBookkeeping(t *testing.T) {
	opts := DefaultOptions()
	opts.ImportPath = ""
	out, err := NewProcessor(opts).Process(context.Background(), "package main\n// fs s := \"{x}\"\n")
	require.NoError(t, err)
	assert.False(t, out.ImportAdded)
	assert.Equal(t, "package main\n// fs s := \"{x}\"\ns := fmt.Sprintf(\"%v\", x)\n", out.Text)
}

func TestIndentation(t *testing.T) {
	assert.Equal(t, "\t  ", indentation("\t  // fs"))
	assert.Equal(t, "", indentation("x"))
	assert.Equal(t, "  ", indentation("  "))
}
