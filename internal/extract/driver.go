package extract

import (
	"fmt"

	"github.com/imyousuf/schemascan/internal/catalog"
	"github.com/imyousuf/schemascan/internal/run"
	"github.com/imyousuf/schemascan/internal/sqltext"
	"github.com/imyousuf/schemascan/internal/syntax"
)

// FileResult holds what was found in one file.
type FileResult struct {
	Operations []catalog.Operation
	Queries    []catalog.Query
}

// Empty reports whether nothing was found.
func (r FileResult) Empty() bool {
	return len(r.Operations) == 0 && len(r.Queries) == 0
}

type dedupKey struct {
	kind  sqltext.Kind
	table string
	line  int
}

// Driver runs the extractors over whole files.
type Driver struct {
	x *Extractor
}

// NewDriver creates a Driver around x. A nil x uses NewExtractor().
func NewDriver(x *Extractor) *Driver {
	if x == nil {
		x = NewExtractor()
	}
	return &Driver{x: x}
}

// ScanFile parses content with p and extracts its operations. A parse error or
// a panic anywhere in the file is logged and yields an empty result; it never
// escapes to the caller.
func (d *Driver) ScanFile(rc *run.Context, p syntax.Parser, path string, content []byte) (res FileResult) {
	defer func() {
		if r := recover(); r != nil {
			rc.Error("file analysis failed", "file", path, "error", fmt.Sprint(r))
			rc.Stats.FilesFailed++
			res = FileResult{}
		}
	}()

	tree, err := p.Parse(path, content)
	if err != nil {
		rc.Error("file analysis failed", "file", path, "error", err)
		rc.Stats.FilesFailed++
		return FileResult{}
	}
	return d.ScanTree(rc, tree)
}

// ScanTree walks tree once in pre-order. Operations with the same kind, table
// and line are recorded once, first occurrence wins.
func (d *Driver) ScanTree(rc *run.Context, tree *syntax.Tree) FileResult {
	res := FileResult{}
	if tree == nil {
		return res
	}

	seen := make(map[dedupKey]bool)
	folded := make(map[*syntax.Node]bool)
	record := func(f *Finding) {
		if f == nil {
			return
		}
		key := dedupKey{kind: f.Operation.Kind, table: f.Operation.Table, line: f.Operation.Line}
		if seen[key] {
			return
		}
		seen[key] = true
		rc.NextOperation()
		res.Operations = append(res.Operations, f.Operation)
		if f.Query != nil {
			res.Queries = append(res.Queries, *f.Query)
		}
	}

	syntax.Walk(tree.Root, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindCall:
			if !folded[n] {
				if f := d.x.ResolveFluent(tree.Path, n); f != nil {
					record(f)
					foldChain(n, folded, d.x.maxSteps)
				}
			}
			record(d.x.ResolveRaw(tree.Path, n))
		case syntax.KindString, syntax.KindTemplate:
			record(d.x.ResolveLiteral(tree.Path, n))
		case syntax.KindMember, syntax.KindIdent, syntax.KindSelf, syntax.KindOther:
		default:
			panic(fmt.Sprintf("unhandled node kind %v", n.Kind))
		}
		return true
	})

	if !res.Empty() {
		rc.Debug("operations found", "file", tree.Path, "count", len(res.Operations))
	}
	return res
}
