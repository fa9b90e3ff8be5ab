package catalog

import (
	"github.com/imyousuf/schemascan/internal/sqltext"
)

// entitySet is an insertion-ordered set of entities keyed by name.
type entitySet struct {
	kind  EntityKind
	order []*Entity
	index map[string]*Entity
}

func newEntitySet(kind EntityKind) *entitySet {
	return &entitySet{kind: kind, index: make(map[string]*Entity)}
}

// getOrCreate returns the entity named name, creating it at the given first-seen
// location if absent.
func (s *entitySet) getOrCreate(name, file string, line, column int) *Entity {
	if e, ok := s.index[name]; ok {
		return e
	}
	e := &Entity{
		Name:          name,
		Kind:          s.kind,
		File:          file,
		Line:          line,
		Column:        column,
		Operations:    []Operation{},
		LiveCodeScore: ScoreLive,
	}
	s.index[name] = e
	s.order = append(s.order, e)
	return e
}

func (s *entitySet) has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Build folds the operations and queries of a run into table and view entities.
//
// Names defined by CREATE VIEW (and any knownViews) are collected first and never
// become tables, regardless of how many table-style operations reference them.
// Tables are created from operations, each appending its operation, and then from
// query table references, which create the entity without appending anything.
// Views come from queries only.
func Build(operations []Operation, queries []Query, knownViews []string) *Analysis {
	excluded := viewNames(queries, knownViews)

	tables := newEntitySet(KindTable)
	for _, op := range operations {
		if !op.HasTable() || excluded[op.Table] {
			continue
		}
		e := tables.getOrCreate(op.Table, op.File, op.Line, op.Column)
		e.Operations = append(e.Operations, op)
	}
	for _, q := range queries {
		for _, name := range q.ReferencedTables {
			if name == "" || name == sqltext.UnknownTable || excluded[name] || tables.has(name) {
				continue
			}
			tables.getOrCreate(name, q.File, q.Line, q.Column)
		}
	}

	views := newEntitySet(KindView)
	for _, q := range queries {
		if name, ok := sqltext.CreatedView(q.Text); ok {
			v := views.getOrCreate(name, q.File, q.Line, q.Column)
			v.Operations = append(v.Operations, Operation{
				Kind: q.Kind, Table: name, File: q.File, Line: q.Line, Column: q.Column,
			})
		}
		for _, name := range q.ReferencedViews {
			v := views.getOrCreate(name, q.File, q.Line, q.Column)
			v.Operations = append(v.Operations, Operation{
				Kind: q.Kind, Table: name, File: q.File, Line: q.Line, Column: q.Column,
			})
		}
	}

	a := &Analysis{
		Tables:          tables.order,
		Views:           views.order,
		Operations:      operations,
		Queries:         queries,
		TotalOperations: len(operations),
	}
	if a.Tables == nil {
		a.Tables = []*Entity{}
	}
	if a.Views == nil {
		a.Views = []*Entity{}
	}
	if a.Operations == nil {
		a.Operations = []Operation{}
	}
	if a.Queries == nil {
		a.Queries = []Query{}
	}
	partition(a)
	return a
}

// viewNames returns the set of names defined by CREATE VIEW statements in queries,
// plus knownViews.
func viewNames(queries []Query, knownViews []string) map[string]bool {
	names := make(map[string]bool, len(knownViews))
	for _, name := range knownViews {
		if name != "" {
			names[name] = true
		}
	}
	for _, q := range queries {
		if name, ok := sqltext.CreatedView(q.Text); ok {
			names[name] = true
		}
	}
	return names
}

// ViewNames returns the names defined by CREATE VIEW statements in queries, in
// first-seen order, followed by any knownViews not already listed.
func ViewNames(queries []Query, knownViews []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, q := range queries {
		if name, ok := sqltext.CreatedView(q.Text); ok {
			add(name)
		}
	}
	for _, name := range knownViews {
		add(name)
	}
	return out
}
