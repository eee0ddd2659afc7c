// Package imports keeps the import that generated statements depend on
// present in a Go file.
package imports

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gofstring/internal/logging"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Layout is what the import inserter needs to know about a file.
type Layout struct {
	// Paths are the imported package paths, in source order.
	Paths []string
	// PackageRow is the 0-based row of the package clause, or -1.
	PackageRow int
	// GroupOpenRow and GroupCloseRow are the rows of the parentheses of the
	// first grouped import declaration, or -1.
	GroupOpenRow  int
	GroupCloseRow int
}

// Has reports whether path is imported.
func (l *Layout) Has(path string) bool {
	for _, p := range l.Paths {
		if p == path {
			return true
		}
	}
	return false
}

// Analyze parses source with the tree-sitter Go grammar and collects its
// import layout.
func Analyze(ctx context.Context, source []byte) (*Layout, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}
	defer tree.Close()

	layout := &Layout{PackageRow: -1, GroupOpenRow: -1, GroupCloseRow: -1}
	root := tree.RootNode()

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "package_clause":
			if layout.PackageRow < 0 {
				layout.PackageRow = int(node.StartPoint().Row)
			}
		case "import_declaration":
			collectImports(node, source, layout)
		}
	}

	logging.ImportsDebug("analyzed %d bytes: %d imports, package row %d", len(source), len(layout.Paths), layout.PackageRow)
	return layout, nil
}

func collectImports(decl *sitter.Node, source []byte, layout *Layout) {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		switch child.Type() {
		case "import_spec":
			addSpec(child, source, layout)
		case "import_spec_list":
			if layout.GroupOpenRow < 0 {
				layout.GroupOpenRow = int(child.StartPoint().Row)
				layout.GroupCloseRow = int(child.EndPoint().Row)
			}
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if spec := child.NamedChild(j); spec.Type() == "import_spec" {
					addSpec(spec, source, layout)
				}
			}
		}
	}
}

func addSpec(spec *sitter.Node, source []byte, layout *Layout) {
	pathNode := spec.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	raw := pathNode.Content(source)
	path, err := strconv.Unquote(raw)
	if err != nil {
		path = strings.Trim(raw, "\"`")
	}
	layout.Paths = append(layout.Paths, path)
}

// Ensure returns source with path imported. The second result is false when
// source was returned unchanged, either because the import already exists
// or because the file has no package clause to anchor it to.
func Ensure(ctx context.Context, source, path string) (string, bool, error) {
	layout, err := Analyze(ctx, []byte(source))
	if err != nil {
		return source, false, err
	}
	if layout.Has(path) {
		return source, false, nil
	}

	lines := strings.Split(source, "\n")
	spec := strconv.Quote(path)
	eol := ""
	if strings.Contains(source, "\r\n") {
		eol = "\r"
	}

	// Multi-line grouped block: add the spec just above the closing paren.
	if layout.GroupOpenRow >= 0 && layout.GroupCloseRow > layout.GroupOpenRow {
		row := layout.GroupCloseRow
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:row]...)
		out = append(out, "\t"+spec+eol)
		out = append(out, lines[row:]...)
		logging.ImportsDebug("added %s to grouped import block at row %d", spec, row)
		return strings.Join(out, "\n"), true, nil
	}

	if layout.PackageRow < 0 {
		logging.ImportsDebug("no package clause, cannot add %s", spec)
		return source, false, nil
	}

	row := layout.PackageRow + 1
	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[:row]...)
	out = append(out, eol, "import "+spec+eol)
	out = append(out, lines[row:]...)
	logging.ImportsDebug("added import %s after package clause", spec)
	return strings.Join(out, "\n"), true, nil
}
