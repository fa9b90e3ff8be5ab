package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/schemascan/internal/catalog"
	"github.com/imyousuf/schemascan/internal/sqltext"
	"github.com/imyousuf/schemascan/internal/syntax"
)

func tmpl(segments ...string) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindTemplate, Segments: segments}
}

func TestResolveFluent(t *testing.T) {
	x := NewExtractor()

	f := x.ResolveFluent("a.js", call(member(call(member(ident("db"), "select"), 1), "from"), 3, str("orders")))
	require.NotNil(t, f)
	assert.Equal(t, catalog.Operation{Kind: sqltext.Select, Table: "orders", File: "a.js", Line: 3}, f.Operation)
	assert.Nil(t, f.Query)
}

func TestResolveFluent_UnknownTable(t *testing.T) {
	f := NewExtractor().ResolveFluent("a.js", call(member(ident("User"), "destroy"), 1))
	require.NotNil(t, f)
	assert.Equal(t, sqltext.Delete, f.Operation.Kind)
	assert.Equal(t, sqltext.UnknownTable, f.Operation.Table)
}

func TestResolveFluent_UnmappedMethod(t *testing.T) {
	x := NewExtractor()
	assert.Nil(t, x.ResolveFluent("a.js", call(member(ident("db"), "where"), 1, str("x"))))
	assert.Nil(t, x.ResolveFluent("a.js", call(member(ident("db"), "query"), 1, str("SELECT 1"))))
	assert.Nil(t, x.ResolveFluent("a.js", str("x")))
}

func TestResolveFluent_DirectCalls(t *testing.T) {
	x := NewExtractor()

	f := x.ResolveFluent("a.js", call(ident("select"), 1, tmpl("users")))
	require.NotNil(t, f)
	assert.Equal(t, "users", f.Operation.Table)

	f = x.ResolveFluent("a.js", call(ident("insert"), 1, str("logs")))
	require.NotNil(t, f)
	assert.Equal(t, catalog.Operation{Kind: sqltext.Insert, Table: "logs", File: "a.js", Line: 1}, f.Operation)

	f = x.ResolveFluent("a.js", call(ident("delete"), 1))
	require.NotNil(t, f)
	assert.Equal(t, sqltext.UnknownTable, f.Operation.Table)

	// Outside the direct-call set even though the name is mapped.
	assert.Nil(t, x.ResolveFluent("a.js", call(ident("create"), 1, str("users"))))
	// In the direct-call set but carries no kind.
	assert.Nil(t, x.ResolveFluent("a.js", call(ident("execute"), 1, str("users"))))
}

func TestResolveFluent_ModelResolvers(t *testing.T) {
	node := call(member(&syntax.Node{Kind: syntax.KindSelf, Class: "Invoice"}, "findOne"), 2)

	f := NewExtractor().ResolveFluent("m.js", node)
	require.NotNil(t, f)
	assert.Equal(t, DefaultModelName, f.Operation.Table)

	f = NewExtractor(WithModelResolver(PlaceholderResolver{Name: "self"})).ResolveFluent("m.js", node)
	assert.Equal(t, "self", f.Operation.Table)

	f = NewExtractor(WithModelResolver(ClassResolver{})).ResolveFluent("m.js", node)
	assert.Equal(t, "Invoice", f.Operation.Table)

	bare := call(member(&syntax.Node{Kind: syntax.KindSelf}, "findOne"), 2)
	f = NewExtractor(WithModelResolver(ClassResolver{Fallback: PlaceholderResolver{Name: "row"}})).ResolveFluent("m.js", bare)
	assert.Equal(t, "row", f.Operation.Table)
}

func TestResolverByName(t *testing.T) {
	r, err := ResolverByName("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModelName, r.ResolveModel(ModelContext{Class: "User"}))

	r, err = ResolverByName(ResolverClass, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "User", r.ResolveModel(ModelContext{Class: "User"}))
	assert.Equal(t, "fallback", r.ResolveModel(ModelContext{}))

	_, err = ResolverByName("guess", "")
	assert.Error(t, err)
}

func TestResolveRaw(t *testing.T) {
	x := NewExtractor()

	f := x.ResolveRaw("a.js", call(member(ident("knex"), "raw"), 4, str("DELETE FROM sessions WHERE expired")))
	require.NotNil(t, f)
	assert.Equal(t, catalog.Operation{Kind: sqltext.Delete, Table: "sessions", File: "a.js", Line: 4}, f.Operation)
	require.NotNil(t, f.Query)
	assert.Equal(t, []string{"sessions"}, f.Query.ReferencedTables)
	assert.Equal(t, []string{}, f.Query.ReferencedViews)

	f = x.ResolveRaw("a.js", call(member(ident("db"), "query"), 5, tmpl("UPDATE accounts SET x = ", " WHERE id = ", "")))
	require.NotNil(t, f)
	assert.Equal(t, sqltext.Update, f.Operation.Kind)
	assert.Equal(t, "accounts", f.Operation.Table)
	assert.Equal(t, "UPDATE accounts SET x =  WHERE id = ", f.Query.Text)

	f = x.ResolveRaw("a.js", call(ident("query"), 6, str("VACUUM")))
	require.NotNil(t, f)
	assert.Equal(t, sqltext.Statement{Kind: sqltext.Select, Table: sqltext.UnknownTable}, sqltext.Statement{Kind: f.Operation.Kind, Table: f.Operation.Table})
	assert.Empty(t, f.Query.ReferencedTables)
}

func TestResolveRaw_Rejects(t *testing.T) {
	x := NewExtractor()
	assert.Nil(t, x.ResolveRaw("a.js", call(member(ident("db"), "Raw"), 1, str("SELECT 1"))))
	assert.Nil(t, x.ResolveRaw("a.js", call(member(ident("db"), "raw"), 1, ident("sql"))))
	assert.Nil(t, x.ResolveRaw("a.js", call(member(ident("db"), "raw"), 1)))
}

func TestResolveLiteral(t *testing.T) {
	x := NewExtractor()

	lit := str("SELECT id FROM users")
	lit.Pos = syntax.Position{Line: 7, Column: 12}
	f := x.ResolveLiteral("a.py", lit)
	require.NotNil(t, f)
	assert.Equal(t, catalog.Operation{Kind: sqltext.Select, Table: "users", File: "a.py", Line: 7, Column: 12}, f.Operation)
	assert.Equal(t, "SELECT id FROM users", f.Query.Text)

	assert.Nil(t, x.ResolveLiteral("a.py", str("hello world")))
	assert.Nil(t, x.ResolveLiteral("a.py", ident("SELECT")))

	// Substring match: an identifier-like literal still qualifies.
	f = x.ResolveLiteral("a.py", str("lastUpdated"))
	require.NotNil(t, f)
	assert.Equal(t, sqltext.UnknownTable, f.Operation.Table)
}
