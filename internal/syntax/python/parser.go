// Package python converts Python sources into the generic syntax tree using tree-sitter.
package python

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	pygrammar "github.com/smacker/go-tree-sitter/python"

	"github.com/imyousuf/schemascan/internal/syntax"
)

// PythonParser parses Python source files.
type PythonParser struct{}

// NewParser creates a new Python parser.
func NewParser() *PythonParser {
	return &PythonParser{}
}

func (p *PythonParser) Language() syntax.Language {
	return syntax.LangPython
}

func (p *PythonParser) Extensions() []string {
	return syntax.FileExtensions[syntax.LangPython]
}

func (p *PythonParser) Parse(filePath string, content []byte) (*syntax.Tree, error) {
	psr := sitter.NewParser()
	psr.SetLanguage(pygrammar.GetLanguage())

	tree, err := psr.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	c := &converter{content: content}
	return &syntax.Tree{
		Path: filePath,
		Root: c.convert(tree.RootNode(), ""),
	}, nil
}

type converter struct {
	content []byte
}

func (c *converter) convert(node *sitter.Node, class string) *syntax.Node {
	out := &syntax.Node{Pos: position(node), Class: class}

	switch node.Type() {
	case "call":
		out.Kind = syntax.KindCall
		if fn := node.ChildByFieldName("function"); fn != nil {
			out.Callee = c.convert(fn, class)
		}
		if args := node.ChildByFieldName("arguments"); args != nil {
			out.Args = c.convertNamed(args, class)
		}
	case "attribute":
		out.Kind = syntax.KindMember
		if obj := node.ChildByFieldName("object"); obj != nil {
			out.Object = c.convert(obj, class)
		}
		if attr := node.ChildByFieldName("attribute"); attr != nil {
			out.Property = c.nodeText(attr)
		}
	case "identifier":
		name := c.nodeText(node)
		if name == "self" {
			out.Kind = syntax.KindSelf
		} else {
			out.Kind = syntax.KindIdent
			out.Name = name
		}
	case "string":
		start, end := c.stringBody(node)
		var interpolations []*sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if child := node.NamedChild(i); child.Type() == "interpolation" {
				interpolations = append(interpolations, child)
			}
		}
		if len(interpolations) == 0 {
			out.Kind = syntax.KindString
			out.Value = string(c.content[start:end])
			break
		}
		out.Kind = syntax.KindTemplate
		cursor := start
		for _, interp := range interpolations {
			if interp.StartByte() >= cursor {
				out.Segments = append(out.Segments, string(c.content[cursor:interp.StartByte()]))
			}
			cursor = interp.EndByte()
			out.Children = append(out.Children, c.convertNamed(interp, class)...)
		}
		if cursor <= end {
			out.Segments = append(out.Segments, string(c.content[cursor:end]))
		}
	case "class_definition":
		out.Kind = syntax.KindOther
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			class = c.nodeText(nameNode)
		}
		out.Children = c.convertNamed(node, class)
	default:
		out.Kind = syntax.KindOther
		out.Children = c.convertNamed(node, class)
	}
	return out
}

func (c *converter) convertNamed(node *sitter.Node, class string) []*syntax.Node {
	count := int(node.NamedChildCount())
	if count == 0 {
		return nil
	}
	out := make([]*syntax.Node, 0, count)
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "comment", "string_start", "string_content", "string_end", "escape_sequence":
			continue
		}
		out = append(out, c.convert(child, class))
	}
	return out
}

// stringBody returns the byte range of a string literal between its delimiters,
// excluding any prefix (f, r, b, u) and the quotes.
func (c *converter) stringBody(node *sitter.Node) (start, end uint32) {
	start, end = node.StartByte(), node.EndByte()
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "string_start":
			start = child.EndByte()
		case "string_end":
			end = child.StartByte()
		}
	}
	if start != node.StartByte() || end != node.EndByte() {
		return start, end
	}

	// Older grammars expose no delimiter nodes; strip them from the text.
	text := c.nodeText(node)
	prefix := len(text) - len(strings.TrimLeft(text, "rRbBuUfF"))
	quote := 1
	rest := text[prefix:]
	if strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, `'''`) {
		quote = 3
	}
	if len(text) < prefix+2*quote {
		return node.StartByte(), node.StartByte()
	}
	return node.StartByte() + uint32(prefix+quote), node.EndByte() - uint32(quote)
}

func (c *converter) nodeText(node *sitter.Node) string {
	return node.Content(c.content)
}

func position(node *sitter.Node) syntax.Position {
	p := node.StartPoint()
	return syntax.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}
