package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/schemascan/internal/syntax"
)

const testSource = `from app.db import session

class InvoiceStore:
    def unpaid(self, customer_id):
        cursor.execute(f"SELECT * FROM invoices WHERE customer = {customer_id}")
        return self.filter(paid=False)

def purge():
    session.query("DELETE FROM invoices")
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
	tree, err := NewParser().Parse("app/models.py", []byte(testSource))
	require.NoError(t, err)

	var methods []string
	for _, call := range collect(tree.Root, syntax.KindCall) {
		name, _ := call.MethodName()
		methods = append(methods, name)
	}
	assert.Equal(t, []string{"execute", "filter", "query"}, methods)
}

func TestParse_FString(t *testing.T) {
	tree, err := NewParser().Parse("app/models.py", []byte(testSource))
	require.NoError(t, err)

	templates := collect(tree.Root, syntax.KindTemplate)
	require.Len(t, templates, 1)
	text, _ := templates[0].Text()
	assert.Equal(t, "SELECT * FROM invoices WHERE customer = ", text)
	assert.Equal(t, "InvoiceStore", templates[0].Class)
	assert.Equal(t, 5, templates[0].Pos.Line)
}

func TestParse_PlainString(t *testing.T) {
	tree, err := NewParser().Parse("app/models.py", []byte(testSource))
	require.NoError(t, err)

	strs := collect(tree.Root, syntax.KindString)
	require.Len(t, strs, 1)
	assert.Equal(t, "DELETE FROM invoices", strs[0].Value)
	assert.Empty(t, strs[0].Class)
}

func TestParse_Self(t *testing.T) {
	tree, err := NewParser().Parse("app/models.py", []byte(testSource))
	require.NoError(t, err)

	selves := collect(tree.Root, syntax.KindSelf)
	// the parameter and the receiver of self.filter
	require.Len(t, selves, 2)
	for _, s := range selves {
		assert.Equal(t, "InvoiceStore", s.Class)
	}
}
