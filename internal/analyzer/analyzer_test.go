package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/schemascan/internal/catalog"
	"github.com/imyousuf/schemascan/internal/extract"
	"github.com/imyousuf/schemascan/internal/loader"
	"github.com/imyousuf/schemascan/internal/sqltext"
	"github.com/imyousuf/schemascan/internal/syntax"
	"github.com/imyousuf/schemascan/internal/syntax/python"
)

func file(path, content string) loader.File {
	return loader.File{Path: path, Content: []byte(content)}
}

func entityNames(entities []*catalog.Entity) []string {
	out := []string{}
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func opKinds(ops []catalog.Operation) []string {
	out := []string{}
	for _, op := range ops {
		out = append(out, fmt.Sprintf("%s %s", op.Kind, op.Table))
	}
	return out
}

func TestAnalyze_FluentChain(t *testing.T) {
	res, err := New().Analyze([]loader.File{file("src/db.js", "db.select().from('orders');\n")}, nil)
	require.NoError(t, err)

	a := res.Analysis
	assert.Equal(t, []string{"SELECT orders"}, opKinds(a.Operations))
	require.Len(t, a.Tables, 1)
	assert.Equal(t, "orders", a.Tables[0].Name)
	assert.Equal(t, catalog.ScoreDead, a.Tables[0].LiveCodeScore)
	assert.Equal(t, 100.0, a.DeadCodePercentage)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, "table_orders", res.Nodes[0].ID)
	assert.NotEmpty(t, res.RunID)
}

func TestAnalyze_ScriptKeepRule(t *testing.T) {
	res, err := New().Analyze([]loader.File{file("seed.sql", "INSERT INTO users (id) VALUES (1); SELECT 1;")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT users"}, opKinds(res.Analysis.Operations))
	assert.Equal(t, 1, res.Analysis.TotalOperations)
	assert.Equal(t, 1, res.Stats.Scripts)
}

func TestAnalyze_UsageReclassifies(t *testing.T) {
	files := []loader.File{file("src/db.js", "db.select().from('orders');\n")}

	before, err := New().Analyze(files, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, entityNames(before.Analysis.UnusedTables))

	after, err := New().Analyze(files, []catalog.Operation{{Kind: sqltext.Select, Table: "orders"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, entityNames(after.Analysis.UsedTables))
	assert.Empty(t, after.Analysis.UnusedTables)
	assert.Equal(t, catalog.ScoreLive, after.Analysis.Tables[0].LiveCodeScore)
	assert.Equal(t, 0.0, after.Analysis.DeadCodePercentage)
}

var viewFixture = []loader.File{
	file("db/views.sql", "CREATE VIEW recent_orders AS SELECT * FROM orders;\nCREATE TABLE orders (id int);"),
	file("src/db/report.js", `db.select().from('recent_orders');
const q = "SELECT * FROM recent_orders";
knex('orders').insert({ id: 1 });
`),
}

func TestAnalyze_ViewsNeverBecomeTables(t *testing.T) {
	res, err := New().Analyze(viewFixture, nil)
	require.NoError(t, err)
	a := res.Analysis

	assert.Equal(t, 5, a.TotalOperations)
	assert.Equal(t, []string{"orders"}, entityNames(a.Tables))
	assert.Equal(t, []string{"CREATE orders", "INSERT orders"}, opKinds(a.Tables[0].Operations))
	assert.Equal(t, "db/views.sql", a.Tables[0].File)
	assert.Equal(t, 2, a.Tables[0].Line)

	require.Equal(t, []string{"recent_orders"}, entityNames(a.Views))
	assert.Equal(t, []string{"CREATE recent_orders", "SELECT recent_orders"}, opKinds(a.Views[0].Operations))
	assert.Equal(t, []string{"recent_orders"}, a.Queries[2].ReferencedViews)
	assert.Empty(t, a.Queries[0].ReferencedViews)
}

func TestAnalyze_PartitionLaw(t *testing.T) {
	res, err := New().Analyze(viewFixture, []catalog.Operation{{Table: "orders"}})
	require.NoError(t, err)
	a := res.Analysis

	assert.Len(t, a.Tables, len(a.UsedTables)+len(a.UnusedTables))
	assert.Len(t, a.Views, len(a.UsedViews)+len(a.UnusedViews))
	assert.Equal(t, []string{"orders"}, entityNames(a.UsedTables))
	assert.Equal(t, []string{"recent_orders"}, entityNames(a.UnusedViews))
	assert.Equal(t, 50.0, a.DeadCodePercentage)
	assert.Len(t, res.Nodes, 2)
}

func TestAnalyze_Empty(t *testing.T) {
	res, err := New().Analyze(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Analysis.Tables)
	assert.Empty(t, res.Analysis.Views)
	assert.Equal(t, 0.0, res.Analysis.DeadCodePercentage)
	assert.Empty(t, res.Nodes)
}

func TestAnalyze_Deterministic(t *testing.T) {
	files := append([]loader.File{
		file("models/user.py", "class User:\n    def all(self, cur):\n        cur.execute(\"SELECT * FROM users\")\n"),
	}, viewFixture...)

	first, err := New().Analyze(files, nil)
	require.NoError(t, err)
	second, err := New().Analyze(files, nil)
	require.NoError(t, err)

	a, err := json.Marshal(first.Analysis)
	require.NoError(t, err)
	b, err := json.Marshal(second.Analysis)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestAnalyze_DedupWithinFile(t *testing.T) {
	src := "db.query(`SELECT * FROM orders WHERE id = ${id}`);\n"
	res, err := New().Analyze([]loader.File{file("src/db/orders.js", src)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT orders"}, opKinds(res.Analysis.Operations))
	assert.Len(t, res.Analysis.Queries, 1)
}

func TestAnalyze_SkipsIrrelevantAndAbsent(t *testing.T) {
	files := []loader.File{
		{Path: "models/empty.js"},
		file("src/ui/button.js", "export const label = 'hello';\n"),
		file("README.md", "SELECT * FROM docs"),
		file("src/db/a.js", "knex('users').del();\n"),
	}
	res, err := New().Analyze(files, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"DELETE users"}, opKinds(res.Analysis.Operations))
	assert.Equal(t, 1, res.Stats.FilesScanned)
	assert.Equal(t, 3, res.Stats.FilesSkipped)
}

func TestAnalyze_LowercaseSQLOutsideDatabasePaths(t *testing.T) {
	files := []loader.File{
		file("app/report.py", "cur.execute(\"delete from sessions where expired\")\n"),
		file("src/orders.js", "db.select().from('orders');\n"),
		file("src/users.js", "conn.query('select * from users where id = 1');\n"),
	}
	res, err := New().Analyze(files, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.FilesScanned)
	assert.Equal(t, 0, res.Stats.FilesSkipped)
	assert.ElementsMatch(t, []string{"sessions", "orders", "users"}, entityNames(res.Analysis.Tables))
}

type panickingParser struct{}

func (panickingParser) Language() syntax.Language { return syntax.LangJavaScript }
func (panickingParser) Extensions() []string     { return []string{".js"} }
func (panickingParser) Parse(string, []byte) (*syntax.Tree, error) {
	panic("parser crashed")
}

func TestAnalyze_FileFailureIsIsolated(t *testing.T) {
	reg := syntax.NewRegistry()
	reg.Register(panickingParser{})
	reg.Register(python.NewParser())

	var buf bytes.Buffer
	a := New(WithRegistry(reg), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	res, err := a.Analyze([]loader.File{
		file("models/a.js", "db.from('orders');"),
		file("models/b.py", "cur.execute('DELETE FROM carts')\n"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"DELETE carts"}, opKinds(res.Analysis.Operations))
	assert.Equal(t, 1, res.Stats.FilesFailed)
	assert.Contains(t, buf.String(), "parser crashed")
	assert.Contains(t, buf.String(), "run_id="+res.RunID)
}

func TestAnalyze_KnownViews(t *testing.T) {
	src := "db.from('legacy_report');\nconst q = 'SELECT * FROM legacy_report';\n"
	res, err := New(WithKnownViews([]string{"legacy_report"})).Analyze([]loader.File{file("src/db/r.js", src)}, nil)
	require.NoError(t, err)

	assert.Empty(t, res.Analysis.Tables)
	require.Equal(t, []string{"legacy_report"}, entityNames(res.Analysis.Views))
	assert.Equal(t, []string{"SELECT legacy_report"}, opKinds(res.Analysis.Views[0].Operations))
	assert.Equal(t, 2, res.Analysis.Views[0].Line)
}

func TestAnalyze_ManifestLibrariesWidenRelevance(t *testing.T) {
	app := file("src/app.js", "import { createPool } from 'slonik';\npool.one(raw('select * from users'));\n")

	res, err := New().Analyze([]loader.File{app}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Analysis.Operations)

	pkg := file("package.json", `{"dependencies": {"slonik": "^37.0.0"}}`)
	res, err = New().Analyze([]loader.File{pkg, app}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"slonik"}, res.Analysis.Libraries)
	assert.Equal(t, []string{"SELECT users"}, opKinds(res.Analysis.Operations))
}

func TestAnalyze_ClassModelResolver(t *testing.T) {
	src := "class Invoice extends Model {\n  static open() { return this.findAll(); }\n}\n"
	a := New(WithExtractorOptions(extract.WithModelResolver(extract.ClassResolver{})))
	res, err := a.Analyze([]loader.File{file("models/invoice.js", src)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice"}, entityNames(res.Analysis.Tables))
}

func TestAccepts(t *testing.T) {
	a := New()
	assert.True(t, a.Accepts("src/a.ts"))
	assert.True(t, a.Accepts("schema.sql"))
	assert.True(t, a.Accepts("go.mod"))
	assert.False(t, a.Accepts("main.go"))
}

func TestAnalysisError(t *testing.T) {
	cause := errors.New("tables: 1 used + 0 unused != 2 total")
	aerr := newValidationError(cause)

	assert.Equal(t, KindValidation, aerr.Kind)
	assert.Equal(t, cause.Error(), aerr.Message)
	assert.Contains(t, aerr.Stack, "newValidationError")
	assert.Equal(t, "validation error: "+cause.Error(), aerr.Error())
	assert.ErrorIs(t, aerr, cause)

	var target *AnalysisError
	wrapped := fmt.Errorf("running: %w", aerr)
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, KindValidation, target.Kind)
}
