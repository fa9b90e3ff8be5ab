package extract

import (
	"path/filepath"
	"strings"

	"github.com/imyousuf/schemascan/internal/run"
	"github.com/imyousuf/schemascan/internal/sqltext"
)

// IsScript reports whether path is a standalone SQL script.
func IsScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}

// ScanScript splits a SQL script on semicolons and classifies each statement.
// Statements that classify as a SELECT on the unknown table are dropped. The
// line of each operation is the 1-based position of its statement among the
// non-empty statements of the script.
func ScanScript(rc *run.Context, path string, content []byte) FileResult {
	res := FileResult{}
	for i, text := range sqltext.SplitStatements(string(content)) {
		stmt := sqltext.Classify(text)
		if stmt.IsFallback() {
			continue
		}
		q := newQuery(text, stmt, path, i+1, 0)
		rc.NextOperation()
		res.Operations = append(res.Operations, q.Operation())
		res.Queries = append(res.Queries, q)
	}
	rc.Stats.Scripts++
	rc.Debug("script scanned", "file", path, "statements", len(res.Queries))
	return res
}
