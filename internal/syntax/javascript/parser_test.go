package javascript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/schemascan/internal/syntax"
)

const testSource = `
const db = require('./db');

async function listOrders(id) {
  await db.select().from('orders');
  return db.query(` + "`SELECT * FROM orders WHERE id = ${id}`" + `);
}

class UserRepository {
  findActive() {
    return this.findAll({ where: { active: true } });
  }
}
`

func collect(root *syntax.Node, kind syntax.Kind) []*syntax.Node {
	var out []*syntax.Node
	syntax.Walk(root, func(n *syntax.Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

func TestParse_Calls(t *testing.T) {
	tree, err := NewParser().Parse("src/orders.js", []byte(testSource))
	require.NoError(t, err)
	assert.Equal(t, "src/orders.js", tree.Path)

	var methods []string
	for _, call := range collect(tree.Root, syntax.KindCall) {
		name, _ := call.MethodName()
		methods = append(methods, name)
	}
	assert.Equal(t, []string{"require", "from", "select", "query", "findAll"}, methods)
}

func TestParse_FluentChainShape(t *testing.T) {
	tree, err := NewParser().Parse("a.js", []byte("db.select().from('orders');\n"))
	require.NoError(t, err)

	calls := collect(tree.Root, syntax.KindCall)
	require.Len(t, calls, 2)

	outer := calls[0]
	assert.Equal(t, 1, outer.Pos.Line)
	require.Equal(t, syntax.KindMember, outer.Callee.Kind)
	assert.Equal(t, "from", outer.Callee.Property)
	require.Len(t, outer.Args, 1)
	assert.Equal(t, syntax.KindString, outer.Args[0].Kind)
	assert.Equal(t, "orders", outer.Args[0].Value)

	inner := outer.Callee.Object
	require.Equal(t, syntax.KindCall, inner.Kind)
	assert.Equal(t, "select", inner.Callee.Property)
	assert.Equal(t, syntax.KindIdent, inner.Callee.Object.Kind)
	assert.Equal(t, "db", inner.Callee.Object.Name)
}

func TestParse_TemplateLiteral(t *testing.T) {
	tree, err := NewParser().Parse("a.js", []byte(testSource))
	require.NoError(t, err)

	templates := collect(tree.Root, syntax.KindTemplate)
	require.Len(t, templates, 1)
	text, ok := templates[0].Text()
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM orders WHERE id = ", text)
	require.Len(t, templates[0].Children, 1)
	assert.Equal(t, "id", templates[0].Children[0].Name)
}

func TestParse_SelfAndClass(t *testing.T) {
	tree, err := NewParser().Parse("a.js", []byte(testSource))
	require.NoError(t, err)

	selves := collect(tree.Root, syntax.KindSelf)
	require.Len(t, selves, 1)
	assert.Equal(t, "UserRepository", selves[0].Class)
	assert.Equal(t, 11, selves[0].Pos.Line)
}

func TestParse_TypeScriptAndTSX(t *testing.T) {
	ts := `
export class OrderService {
  async load(id: number): Promise<Order[]> {
    return this.repo.query<Order>("SELECT * FROM orders");
  }
}
`
	tree, err := NewTypeScriptParser().Parse("svc.ts", []byte(ts))
	require.NoError(t, err)
	strs := collect(tree.Root, syntax.KindString)
	require.Len(t, strs, 1)
	assert.Equal(t, "SELECT * FROM orders", strs[0].Value)
	assert.Equal(t, "OrderService", strs[0].Class)

	tsxSrc := `
export const List = () => {
  const rows = db.raw('SELECT * FROM items');
  return <ul>{rows.map(r => <li>{r.name}</li>)}</ul>;
};
`
	tree, err = NewTypeScriptParser().Parse("List.tsx", []byte(tsxSrc))
	require.NoError(t, err)
	strs = collect(tree.Root, syntax.KindString)
	require.Len(t, strs, 1)
	assert.Equal(t, "SELECT * FROM items", strs[0].Value)
}

func TestParse_TaggedTemplate(t *testing.T) {
	tree, err := NewParser().Parse("a.js", []byte("const r = sql`DELETE FROM carts`;\n"))
	require.NoError(t, err)

	calls := collect(tree.Root, syntax.KindCall)
	require.Len(t, calls, 1)
	name, direct := calls[0].MethodName()
	assert.Equal(t, "sql", name)
	assert.True(t, direct)
	require.Len(t, calls[0].Args, 1)
	assert.Equal(t, syntax.KindTemplate, calls[0].Args[0].Kind)
}

func TestExtensions(t *testing.T) {
	assert.Contains(t, NewParser().Extensions(), ".mjs")
	assert.Contains(t, NewTypeScriptParser().Extensions(), ".tsx")
	assert.Equal(t, syntax.LangTypeScript, NewTypeScriptParser().Language())
}
