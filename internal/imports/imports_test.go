package imports

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	src := `// Package demo does things.
package demo

import "os"

import (
	"errors"
	str "strings"
)

func main() {}
`
	layout, err := Analyze(context.Background(), []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"os", "errors", "strings"}, layout.Paths)
	assert.Equal(t, 1, layout.PackageRow)
	assert.Equal(t, 5, layout.GroupOpenRow)
	assert.Equal(t, 8, layout.GroupCloseRow)
	assert.True(t, layout.Has("strings"))
	assert.False(t, layout.Has("fmt"))
}

func TestEnsure(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		want    string
		changed bool
	}{
		{
			name:    "already imported single",
			src:     "package main\n\nimport \"fmt\"\n",
			want:    "package main\n\nimport \"fmt\"\n",
			changed: false,
		},
		{
			name:    "already imported in group",
			src:     "package main\n\nimport (\n\t\"fmt\"\n\t\"os\"\n)\n",
			want:    "package main\n\nimport (\n\t\"fmt\"\n\t\"os\"\n)\n",
			changed: false,
		},
		{
			name:    "added to group",
			src:     "package main\n\nimport (\n\t\"os\"\n)\n\nfunc main() {}\n",
			want:    "package main\n\nimport (\n\t\"os\"\n\t\"fmt\"\n)\n\nfunc main() {}\n",
			changed: true,
		},
		{
			name:    "added after package",
			src:     "package main\n\nfunc main() {}\n",
			want:    "package main\n\nimport \"fmt\"\n\nfunc main() {}\n",
			changed: true,
		},
		{
			name:    "added after package with single import",
			src:     "package main\nimport \"os\"\n",
			want:    "package main\n\nimport \"fmt\"\nimport \"os\"\n",
			changed: true,
		},
		{
			name:    "added to group with CRLF",
			src:     "package main\r\n\r\nimport (\r\n\t\"os\"\r\n)\r\n",
			want:    "package main\r\n\r\nimport (\r\n\t\"os\"\r\n\t\"fmt\"\r\n)\r\n",
			changed: true,
		},
		{
			name:    "added after package with CRLF",
			src:     "package main\r\n\r\nfunc main() {}\r\n",
			want:    "package main\r\n\r\nimport \"fmt\"\r\n\r\nfunc main() {}\r\n",
			changed: true,
		},
		{
			name:    "no package clause",
			src:     "x := 1\n",
			want:    "x := 1\n",
			changed: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed, err := Ensure(context.Background(), tc.src, "fmt")
			require.NoError(t, err)
			assert.Equal(t, tc.changed, changed)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Ensure mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnsure_Idempotent(t *testing.T) {
	src := "package main\n\nfunc main() {}\n"
	once, changed, err := Ensure(context.Background(), src, "fmt")
	require.NoError(t, err)
	require.True(t, changed)

	twice, changed, err := Ensure(context.Background(), once, "fmt")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}
