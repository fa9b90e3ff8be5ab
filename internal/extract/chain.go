package extract

import (
	"strings"

	"github.com/imyousuf/schemascan/internal/sqltext"
	"github.com/imyousuf/schemascan/internal/syntax"
)

// DefaultMaxChainSteps bounds the receiver-chain walk.
const DefaultMaxChainSteps = 64

// methodKinds maps lowercased query-builder/ORM method names to operation kinds.
var methodKinds = map[string]sqltext.Kind{
	"select":     sqltext.Select,
	"from":       sqltext.Select,
	"join":       sqltext.Select,
	"leftjoin":   sqltext.Select,
	"rightjoin":  sqltext.Select,
	"innerjoin":  sqltext.Select,
	"findall":    sqltext.Select,
	"findone":    sqltext.Select,
	"findmany":   sqltext.Select,
	"findunique": sqltext.Select,
	"findfirst":  sqltext.Select,
	"findbypk":   sqltext.Select,
	"insert":     sqltext.Insert,
	"create":     sqltext.Insert,
	"createmany": sqltext.Insert,
	"bulkcreate": sqltext.Insert,
	"insertmany": sqltext.Insert,
	"update":     sqltext.Update,
	"updatemany": sqltext.Update,
	"delete":     sqltext.Delete,
	"del":        sqltext.Delete,
	"destroy":    sqltext.Delete,
	"deletemany": sqltext.Delete,
	"upsert":     sqltext.Upsert,
}

// directCalls are the only bare function names considered by the fluent
// resolver. query and execute carry no kind of their own.
var directCalls = map[string]bool{
	"query":   true,
	"execute": true,
	"select":  true,
	"insert":  true,
	"update":  true,
	"delete":  true,
}

// MethodKind returns the operation kind of a query-builder method name,
// matched case-insensitively.
func MethodKind(name string) (sqltext.Kind, bool) {
	kind, ok := methodKinds[strings.ToLower(name)]
	return kind, ok
}

// ChainKind tells how a receiver-chain walk terminated.
type ChainKind int

const (
	Unresolved ChainKind = iota
	ResolvedTable
	ResolvedModelSelf
)

// ChainResult is the outcome of WalkChain. Table is set for ResolvedTable and
// Class (the enclosing class, if known) for ResolvedModelSelf.
type ChainResult struct {
	Kind  ChainKind
	Table string
	Class string
}

// WalkChain walks from call up its receiver chain, unwrapping call and
// member-access layers, until it finds a call whose first argument is a string
// literal or identifier (the table), or a member access on this/self (the
// model itself). The walk gives up after maxSteps layers.
func WalkChain(call *syntax.Node, maxSteps int) ChainResult {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxChainSteps
	}
	current := call
	for step := 0; current != nil && step < maxSteps; step++ {
		switch current.Kind {
		case syntax.KindCall:
			if name, ok := tableArgument(current.FirstArg()); ok {
				return ChainResult{Kind: ResolvedTable, Table: name}
			}
			current = current.Callee
		case syntax.KindMember:
			if obj := current.Object; obj != nil && obj.Kind == syntax.KindSelf {
				return ChainResult{Kind: ResolvedModelSelf, Class: obj.Class}
			}
			current = current.Object
		default:
			return ChainResult{Kind: Unresolved}
		}
	}
	return ChainResult{Kind: Unresolved}
}

// tableArgument accepts a string literal or bare identifier as a table name.
func tableArgument(arg *syntax.Node) (string, bool) {
	if arg == nil {
		return "", false
	}
	switch arg.Kind {
	case syntax.KindString:
		return arg.Value, true
	case syntax.KindIdent:
		return arg.Name, true
	default:
		return "", false
	}
}

// fallbackTable treats the first argument of a direct call as the table name
// when the chain walk found nothing.
func fallbackTable(call *syntax.Node) (string, bool) {
	arg := call.FirstArg()
	if arg == nil {
		return "", false
	}
	if name, ok := tableArgument(arg); ok {
		return name, true
	}
	if arg.Kind == syntax.KindTemplate {
		text, _ := arg.Text()
		if text = strings.TrimSpace(text); text != "" {
			return text, true
		}
	}
	return "", false
}

// foldChain marks the calls in the receiver chain of call.
func foldChain(call *syntax.Node, folded map[*syntax.Node]bool, maxSteps int) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxChainSteps
	}
	current := call.Callee
	for step := 0; current != nil && step < maxSteps; step++ {
		switch current.Kind {
		case syntax.KindCall:
			folded[current] = true
			current = current.Callee
		case syntax.KindMember:
			current = current.Object
		default:
			return
		}
	}
}
