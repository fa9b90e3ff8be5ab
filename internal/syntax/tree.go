package syntax

import "strings"

// Kind tags the shape of a Node.
type Kind int

const (
	// KindOther is any node the extractors do not inspect; only its children matter.
	KindOther Kind = iota
	// KindCall is a call expression: Callee(Args...).
	KindCall
	// KindMember is a member access: Object.Property.
	KindMember
	// KindIdent is a bare identifier.
	KindIdent
	// KindSelf is the receiver keyword of the enclosing class (this, self).
	KindSelf
	// KindString is a plain string literal.
	KindString
	// KindTemplate is an interpolated string literal.
	KindTemplate
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindMember:
		return "member"
	case KindIdent:
		return "ident"
	case KindSelf:
		return "self"
	case KindString:
		return "string"
	case KindTemplate:
		return "template"
	default:
		return "other"
	}
}

// Position is a source location. Line is 1-based, Column is 0-based.
type Position struct {
	Line   int
	Column int
}

// Node is a language-neutral syntax tree node. Which fields are set depends on Kind:
//
//	KindCall:     Callee, Args
//	KindMember:   Object, Property
//	KindIdent:    Name
//	KindString:   Value
//	KindTemplate: Segments (literal text), Children (interpolated expressions)
//	KindOther:    Children
type Node struct {
	Kind Kind
	Pos  Position

	Callee *Node
	Args   []*Node

	Object   *Node
	Property string

	Name     string
	Value    string
	Segments []string

	Children []*Node

	// Class is the name of the enclosing class declaration, if any.
	Class string
}

// Tree is the parsed form of one file.
type Tree struct {
	Path string
	Root *Node
}

// Text returns the literal text of a String or Template node. Interpolated
// expressions of a Template are dropped and the literal segments concatenated.
func (n *Node) Text() (string, bool) {
	switch n.Kind {
	case KindString:
		return n.Value, true
	case KindTemplate:
		return strings.Join(n.Segments, ""), true
	default:
		return "", false
	}
}

// MethodName returns the name being invoked by a call: the property of a member
// callee or the identifier of a direct call. direct reports the latter.
func (n *Node) MethodName() (name string, direct bool) {
	if n.Kind != KindCall || n.Callee == nil {
		return "", false
	}
	switch n.Callee.Kind {
	case KindMember:
		return n.Callee.Property, false
	case KindIdent:
		return n.Callee.Name, true
	default:
		return "", false
	}
}

// FirstArg returns the first call argument, or nil.
func (n *Node) FirstArg() *Node {
	if len(n.Args) == 0 {
		return nil
	}
	return n.Args[0]
}

// Nodes returns the direct children of n in source order.
func (n *Node) Nodes() []*Node {
	switch n.Kind {
	case KindCall:
		out := make([]*Node, 0, len(n.Args)+1)
		if n.Callee != nil {
			out = append(out, n.Callee)
		}
		return append(out, n.Args...)
	case KindMember:
		if n.Object == nil {
			return nil
		}
		return []*Node{n.Object}
	default:
		return n.Children
	}
}

// Walk visits root and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		children := n.Nodes()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] != nil {
				stack = append(stack, children[i])
			}
		}
	}
}
