package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/schemascan/internal/sqltext"
)

func op(kind sqltext.Kind, table, file string, line int) Operation {
	return Operation{Kind: kind, Table: table, File: file, Line: line}
}

func names(entities []*Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func TestBuild_TablesFromOperations(t *testing.T) {
	ops := []Operation{
		op(sqltext.Select, "orders", "a.js", 3),
		op(sqltext.Insert, "users", "a.js", 5),
		op(sqltext.Update, "orders", "b.js", 1),
		op(sqltext.Select, sqltext.UnknownTable, "b.js", 9),
	}
	a := Build(ops, nil, nil)

	assert.Equal(t, []string{"orders", "users"}, names(a.Tables))
	assert.Empty(t, a.Views)
	assert.Equal(t, 4, a.TotalOperations)

	orders := a.Tables[0]
	assert.Equal(t, KindTable, orders.Kind)
	assert.Equal(t, "a.js", orders.File)
	assert.Equal(t, 3, orders.Line)
	assert.Len(t, orders.Operations, 2)
	assert.Equal(t, ScoreLive, orders.LiveCodeScore)
}

func TestBuild_CreateViewExcludesTable(t *testing.T) {
	queries := []Query{
		{Text: "SELECT * FROM active_users", Kind: sqltext.Select, ReferencedTables: []string{"active_users"}, File: "q.js", Line: 1},
		{Text: "CREATE VIEW active_users AS SELECT * FROM users", Kind: sqltext.Create, ReferencedTables: []string{"active_users"}, File: "schema.sql", Line: 2},
	}
	ops := []Operation{
		op(sqltext.Select, "active_users", "q.js", 1),
		op(sqltext.Create, "active_users", "schema.sql", 2),
		op(sqltext.Update, "active_users", "r.js", 7),
		op(sqltext.Select, "users", "r.js", 8),
	}
	a := Build(ops, queries, nil)

	assert.Equal(t, []string{"users"}, names(a.Tables))
	require.Equal(t, []string{"active_users"}, names(a.Views))
	view := a.Views[0]
	assert.Equal(t, KindView, view.Kind)
	assert.Equal(t, "schema.sql", view.File)
	require.Len(t, view.Operations, 1)
	assert.Equal(t, sqltext.Create, view.Operations[0].Kind)
}

func TestBuild_QueryReferencedTablesDoNotAppendOperations(t *testing.T) {
	queries := []Query{
		{Text: "DELETE FROM carts", Kind: sqltext.Delete, ReferencedTables: []string{"carts"}, File: "c.py", Line: 4},
	}
	a := Build(nil, queries, nil)

	require.Equal(t, []string{"carts"}, names(a.Tables))
	assert.Empty(t, a.Tables[0].Operations)
	assert.Equal(t, "c.py", a.Tables[0].File)
	assert.Equal(t, 0, a.TotalOperations)
}

func TestBuild_ReferencedViews(t *testing.T) {
	queries := []Query{
		{Text: "SELECT * FROM monthly_totals", Kind: sqltext.Select, ReferencedTables: []string{"monthly_totals"}, ReferencedViews: []string{"monthly_totals"}, File: "r.js", Line: 2},
	}
	ops := []Operation{op(sqltext.Select, "monthly_totals", "r.js", 2)}

	a := Build(ops, queries, []string{"monthly_totals"})

	assert.Empty(t, a.Tables)
	require.Equal(t, []string{"monthly_totals"}, names(a.Views))
	assert.Len(t, a.Views[0].Operations, 1)
}

func TestBuild_ViewOperationsCountReferencingQueries(t *testing.T) {
	queries := []Query{
		{Text: "CREATE VIEW active_users AS SELECT * FROM users", Kind: sqltext.Create, ReferencedTables: []string{"users"}, ReferencedViews: []string{}, File: "v.sql", Line: 1},
		{Text: "SELECT * FROM active_users", Kind: sqltext.Select, ReferencedTables: []string{"active_users"}, ReferencedViews: []string{"active_users"}, File: "a.js", Line: 3},
		{Text: "SELECT id FROM active_users", Kind: sqltext.Select, ReferencedTables: []string{"active_users"}, ReferencedViews: []string{"active_users"}, File: "b.js", Line: 8},
	}

	a := Build(nil, queries, nil)

	require.Equal(t, []string{"users"}, names(a.Tables))
	assert.Empty(t, a.Tables[0].Operations)
	require.Equal(t, []string{"active_users"}, names(a.Views))
	assert.Len(t, a.Views[0].Operations, 3)
}

func TestBuild_Empty(t *testing.T) {
	a := Build(nil, nil, nil)
	assert.NotNil(t, a.Tables)
	assert.NotNil(t, a.Views)
	assert.Equal(t, 0.0, a.DeadCodePercentage)
	assert.NoError(t, Verify(a))
}

func TestViewNames(t *testing.T) {
	queries := []Query{
		{Text: "CREATE VIEW b AS SELECT 1"},
		{Text: "create view a as select 1"},
		{Text: "CREATE VIEW b AS SELECT 2"},
	}
	assert.Equal(t, []string{"b", "a", "c"}, ViewNames(queries, []string{"a", "c"}))
}
