// Package catalog folds discovered database operations into table and view
// entities, scores them against observed usage, and projects them into graph nodes.
package catalog

import "github.com/imyousuf/schemascan/internal/sqltext"

// EntityKind distinguishes tables from views.
type EntityKind string

const (
	KindTable EntityKind = "table"
	KindView  EntityKind = "view"
)

// Live/dead scores. The score is binary despite the numeric range.
const (
	ScoreLive = 100
	ScoreDead = 0
)

// Operation is one discovered database access. Line and Column are zero when unknown.
type Operation struct {
	Kind   sqltext.Kind `json:"kind"`
	Table  string       `json:"table"`
	File   string       `json:"file,omitempty"`
	Line   int          `json:"line,omitempty"`
	Column int          `json:"column,omitempty"`
}

// HasTable reports whether the operation resolved a table name.
func (o Operation) HasTable() bool {
	return o.Table != "" && o.Table != sqltext.UnknownTable
}

// Query is an operation that carries the SQL text it was classified from.
type Query struct {
	Text             string       `json:"text"`
	Kind             sqltext.Kind `json:"kind"`
	ReferencedTables []string     `json:"referenced_tables"`
	ReferencedViews  []string     `json:"referenced_views"`
	File             string       `json:"file,omitempty"`
	Line             int          `json:"line,omitempty"`
	Column           int          `json:"column,omitempty"`
}

// Operation returns the operation form of q, naming its first referenced table.
func (q Query) Operation() Operation {
	table := sqltext.UnknownTable
	if len(q.ReferencedTables) > 0 {
		table = q.ReferencedTables[0]
	}
	return Operation{Kind: q.Kind, Table: table, File: q.File, Line: q.Line, Column: q.Column}
}

// Entity is a catalogued table or view.
type Entity struct {
	Name          string      `json:"name"`
	Kind          EntityKind  `json:"kind"`
	File          string      `json:"file"`
	Line          int         `json:"line,omitempty"`
	Column        int         `json:"column,omitempty"`
	Operations    []Operation `json:"operations"`
	LiveCodeScore int         `json:"live_code_score"`
}

// IsDead reports whether no observed usage references the entity.
func (e *Entity) IsDead() bool {
	return e.LiveCodeScore == ScoreDead
}

// OperationKinds lists the distinct kinds of the entity's operations in
// first-seen order.
func (e *Entity) OperationKinds() []string {
	return operationKinds(e.Operations)
}

// Analysis is the aggregate result of one run.
type Analysis struct {
	Tables     []*Entity   `json:"tables"`
	Views      []*Entity   `json:"views"`
	Operations []Operation `json:"operations"`
	Queries    []Query     `json:"queries"`

	UsedTables   []*Entity `json:"used_tables"`
	UnusedTables []*Entity `json:"unused_tables"`
	UsedViews    []*Entity `json:"used_views"`
	UnusedViews  []*Entity `json:"unused_views"`

	TotalOperations    int     `json:"total_operations"`
	DeadCodePercentage float64 `json:"dead_code_percentage"`

	// Libraries lists database libraries declared by project manifests.
	Libraries []string `json:"libraries,omitempty"`
}
