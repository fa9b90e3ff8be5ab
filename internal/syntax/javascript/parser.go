// Package javascript converts JavaScript and TypeScript sources into the generic
// syntax tree using tree-sitter.
package javascript

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	jsgrammar "github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	tsgrammar "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/imyousuf/schemascan/internal/syntax"
)

// JavaScriptParser parses JavaScript source files.
type JavaScriptParser struct{}

// NewParser creates a new JavaScript parser.
func NewParser() *JavaScriptParser {
	return &JavaScriptParser{}
}

func (p *JavaScriptParser) Language() syntax.Language {
	return syntax.LangJavaScript
}

func (p *JavaScriptParser) Extensions() []string {
	return syntax.FileExtensions[syntax.LangJavaScript]
}

func (p *JavaScriptParser) Parse(filePath string, content []byte) (*syntax.Tree, error) {
	return parse(jsgrammar.GetLanguage(), filePath, content)
}

// TypeScriptParser parses TypeScript source files. .tsx files use the TSX grammar.
type TypeScriptParser struct{}

// NewTypeScriptParser creates a new TypeScript parser.
func NewTypeScriptParser() *TypeScriptParser {
	return &TypeScriptParser{}
}

func (p *TypeScriptParser) Language() syntax.Language {
	return syntax.LangTypeScript
}

func (p *TypeScriptParser) Extensions() []string {
	return syntax.FileExtensions[syntax.LangTypeScript]
}

func (p *TypeScriptParser) Parse(filePath string, content []byte) (*syntax.Tree, error) {
	lang := tsgrammar.GetLanguage()
	if strings.EqualFold(filepath.Ext(filePath), ".tsx") {
		lang = tsx.GetLanguage()
	}
	return parse(lang, filePath, content)
}

func parse(lang *sitter.Language, filePath string, content []byte) (*syntax.Tree, error) {
	psr := sitter.NewParser()
	psr.SetLanguage(lang)

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

// converter maps tree-sitter JavaScript/TypeScript nodes onto syntax.Node.
type converter struct {
	content []byte
}

func (c *converter) convert(node *sitter.Node, class string) *syntax.Node {
	out := &syntax.Node{Pos: position(node), Class: class}

	switch node.Type() {
	case "call_expression":
		out.Kind = syntax.KindCall
		if fn := node.ChildByFieldName("function"); fn != nil {
			out.Callee = c.convert(fn, class)
		}
		if args := node.ChildByFieldName("arguments"); args != nil {
			if args.Type() == "template_string" {
				// Tagged template: sql`...`
				out.Args = []*syntax.Node{c.convert(args, class)}
			} else {
				out.Args = c.convertNamed(args, class)
			}
		}
	case "member_expression":
		out.Kind = syntax.KindMember
		if obj := node.ChildByFieldName("object"); obj != nil {
			out.Object = c.convert(obj, class)
		}
		if prop := node.ChildByFieldName("property"); prop != nil {
			out.Property = c.nodeText(prop)
		}
	case "identifier":
		out.Kind = syntax.KindIdent
		out.Name = c.nodeText(node)
	case "this":
		out.Kind = syntax.KindSelf
	case "string":
		out.Kind = syntax.KindString
		out.Value = stripQuotes(c.nodeText(node))
	case "template_string":
		out.Kind = syntax.KindTemplate
		out.Segments = c.templateSegments(node)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "template_substitution" {
				out.Children = append(out.Children, c.convertNamed(child, class)...)
			}
		}
	case "class_declaration", "class", "abstract_class_declaration":
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

// convertNamed converts the named children of node, skipping comments.
func (c *converter) convertNamed(node *sitter.Node, class string) []*syntax.Node {
	count := int(node.NamedChildCount())
	if count == 0 {
		return nil
	}
	out := make([]*syntax.Node, 0, count)
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, c.convert(child, class))
	}
	return out
}

// templateSegments returns the literal text between the backticks of a
// template string, split around each ${...} substitution.
func (c *converter) templateSegments(node *sitter.Node) []string {
	start := node.StartByte() + 1
	end := node.EndByte() - 1
	if end < start {
		return nil
	}
	var segments []string
	cursor := start
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "template_substitution" {
			continue
		}
		if child.StartByte() >= cursor {
			segments = append(segments, string(c.content[cursor:child.StartByte()]))
		}
		cursor = child.EndByte()
	}
	if cursor <= end {
		segments = append(segments, string(c.content[cursor:end]))
	}
	return segments
}

func (c *converter) nodeText(node *sitter.Node) string {
	return node.Content(c.content)
}

func position(node *sitter.Node) syntax.Position {
	p := node.StartPoint()
	return syntax.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
