// Package extract finds database operations in parsed source files and SQL
// scripts. The extractors are pure: given a node they return a Finding or nil.
package extract

import (
	"strings"

	"github.com/imyousuf/schemascan/internal/catalog"
	"github.com/imyousuf/schemascan/internal/sqltext"
	"github.com/imyousuf/schemascan/internal/syntax"
)

// Finding is a single discovered operation. Query is set when the operation
// was classified from SQL text.
type Finding struct {
	Operation catalog.Operation
	Query     *catalog.Query
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModelResolver sets the resolver used for this/self receivers.
func WithModelResolver(r ModelResolver) Option {
	return func(x *Extractor) {
		if r != nil {
			x.models = r
		}
	}
}

// WithMaxChainSteps bounds the receiver-chain walk. Non-positive values keep the default.
func WithMaxChainSteps(n int) Option {
	return func(x *Extractor) {
		if n > 0 {
			x.maxSteps = n
		}
	}
}

// Extractor holds the fluent, raw and literal extractors.
type Extractor struct {
	models   ModelResolver
	maxSteps int
}

// NewExtractor creates an Extractor with the placeholder model resolver.
func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{
		models:   PlaceholderResolver{},
		maxSteps: DefaultMaxChainSteps,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ResolveFluent recognises query-builder and ORM calls such as
// db.select().from('orders') or User.findAll().
func (x *Extractor) ResolveFluent(file string, call *syntax.Node) *Finding {
	if call == nil || call.Kind != syntax.KindCall {
		return nil
	}
	name, direct := call.MethodName()
	if name == "" {
		return nil
	}
	if direct && !directCalls[strings.ToLower(name)] {
		return nil
	}
	kind, ok := MethodKind(name)
	if !ok {
		return nil
	}

	table := sqltext.UnknownTable
	res := WalkChain(call, x.maxSteps)
	switch res.Kind {
	case ResolvedTable:
		table = res.Table
	case ResolvedModelSelf:
		table = x.models.ResolveModel(ModelContext{File: file, Class: res.Class})
	case Unresolved:
		if direct {
			if name, ok := fallbackTable(call); ok {
				table = name
			}
		}
	}

	return &Finding{Operation: catalog.Operation{
		Kind:   kind,
		Table:  table,
		File:   file,
		Line:   call.Pos.Line,
		Column: call.Pos.Column,
	}}
}

// ResolveRaw recognises calls to a method named exactly raw or query whose
// first argument is a string or template literal.
func (x *Extractor) ResolveRaw(file string, call *syntax.Node) *Finding {
	if call == nil || call.Kind != syntax.KindCall {
		return nil
	}
	name, _ := call.MethodName()
	if name != "raw" && name != "query" {
		return nil
	}
	arg := call.FirstArg()
	if arg == nil {
		return nil
	}
	text, ok := arg.Text()
	if !ok {
		return nil
	}
	return fromSQL(file, text, call.Pos)
}

// ResolveLiteral classifies a string or template literal that looks like SQL.
func (x *Extractor) ResolveLiteral(file string, lit *syntax.Node) *Finding {
	if lit == nil {
		return nil
	}
	text, ok := lit.Text()
	if !ok || !sqltext.LooksLikeSQL(text) {
		return nil
	}
	return fromSQL(file, text, lit.Pos)
}

func fromSQL(file, text string, pos syntax.Position) *Finding {
	stmt := sqltext.Classify(text)
	q := newQuery(text, stmt, file, pos.Line, pos.Column)
	return &Finding{Operation: q.Operation(), Query: &q}
}

func newQuery(text string, stmt sqltext.Statement, file string, line, column int) catalog.Query {
	refs := []string{}
	if stmt.Table != sqltext.UnknownTable {
		refs = append(refs, stmt.Table)
	}
	return catalog.Query{
		Text:             text,
		Kind:             stmt.Kind,
		ReferencedTables: refs,
		ReferencedViews:  []string{},
		File:             file,
		Line:             line,
		Column:           column,
	}
}
