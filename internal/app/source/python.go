package source

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// DemosVariable is the module-level list naming the demo functions of a file.
const DemosVariable = "__demos__"

// pyModule is a parsed Python source file.
type pyModule struct {
	src  []byte
	tree *sitter.Tree
}

// parsePython parses Python source. The caller must Close the module.
func parsePython(ctx context.Context, src []byte) (*pyModule, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse python source")
	}
	return &pyModule{src: src, tree: tree}, nil
}

// Close releases the syntax tree.
func (m *pyModule) Close() {
	m.tree.Close()
}

func (m *pyModule) text(n *sitter.Node) string {
	return n.Content(m.src)
}

// functions returns the module-level function definitions by name,
// looking through decorators.
func (m *pyModule) functions() map[string]*sitter.Node {
	root := m.tree.RootNode()
	funcs := make(map[string]*sitter.Node)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "decorated_definition" {
			child = child.ChildByFieldName("definition")
			if child == nil {
				continue
			}
		}
		if child.Type() != "function_definition" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			funcs[m.text(name)] = child
		}
	}
	return funcs
}

// demoNames returns the identifiers listed in __demos__, and false when the
// module does not define it.
func (m *pyModule) demoNames() ([]string, bool) {
	root := m.tree.RootNode()

	var names []string
	found := false
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign.Type() != "assignment" {
			continue
		}
		left := assign.ChildByFieldName("left")
		right := assign.ChildByFieldName("right")
		if left == nil || right == nil || m.text(left) != DemosVariable {
			continue
		}

		// Last assignment wins, as at runtime.
		found = true
		names = names[:0]
		if right.Type() != "list" && right.Type() != "tuple" {
			continue
		}
		for j := 0; j < int(right.NamedChildCount()); j++ {
			if item := right.NamedChild(j); item.Type() == "identifier" {
				names = append(names, m.text(item))
			}
		}
	}
	return names, found
}

// docstringNode returns the docstring statement of a function, or nil.
func (m *pyModule) docstringNode(fn *sitter.Node) *sitter.Node {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() == "expression_statement" && stmt.NamedChildCount() > 0 &&
			stmt.NamedChild(0).Type() == "string" {
			return stmt
		}
		return nil
	}
	return nil
}

// docstring returns the function docstring collapsed onto one line.
func (m *pyModule) docstring(fn *sitter.Node) string {
	stmt := m.docstringNode(fn)
	if stmt == nil {
		return ""
	}

	raw := strings.TrimLeft(m.text(stmt.NamedChild(0)), "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			raw = raw[len(q) : len(raw)-len(q)]
			break
		}
	}
	return strings.Join(strings.Fields(raw), " ")
}

// body returns the source lines of a function after its signature and docstring.
func (m *pyModule) body(fn *sitter.Node) string {
	lines := strings.Split(string(m.src), "\n")

	// Signature ends at the parameters or the return annotation.
	start := fn.StartPoint().Row + 1
	for _, field := range []string{"parameters", "return_type"} {
		if n := fn.ChildByFieldName(field); n != nil && n.EndPoint().Row+1 > start {
			start = n.EndPoint().Row + 1
		}
	}
	if doc := m.docstringNode(fn); doc != nil {
		start = doc.EndPoint().Row + 1
	}

	end := fn.EndPoint().Row
	if fn.EndPoint().Column == 0 && end > 0 {
		end--
	}
	if int(end) >= len(lines) {
		end = uint32(len(lines) - 1)
	}
	for end > start && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	if start > end {
		return ""
	}

	return strings.Join(lines[start:end+1], "\n") + "\n"
}
