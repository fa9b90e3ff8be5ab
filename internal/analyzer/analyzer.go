// Package analyzer runs a complete scan: it extracts operations from every
// input file, builds the table and view catalog, scores it against usage
// evidence and maps it to graph nodes.
package analyzer

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/imyousuf/schemascan/internal/catalog"
	"github.com/imyousuf/schemascan/internal/extract"
	"github.com/imyousuf/schemascan/internal/graph"
	"github.com/imyousuf/schemascan/internal/loader"
	"github.com/imyousuf/schemascan/internal/manifest"
	"github.com/imyousuf/schemascan/internal/run"
	"github.com/imyousuf/schemascan/internal/sqltext"
	"github.com/imyousuf/schemascan/internal/syntax"
	"github.com/imyousuf/schemascan/internal/syntax/javascript"
	"github.com/imyousuf/schemascan/internal/syntax/python"
)

// Result is the output of one run.
type Result struct {
	RunID    string            `json:"run_id"`
	Analysis *catalog.Analysis `json:"analysis"`
	Nodes    []graph.Node      `json:"nodes"`
	Stats    run.Stats         `json:"stats"`
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. Without one the analyzer is silent.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithRegistry replaces the default parser registry.
func WithRegistry(r *syntax.Registry) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.parsers = r
		}
	}
}

// WithExtractorOptions configures the extractors.
func WithExtractorOptions(opts ...extract.Option) Option {
	return func(a *Analyzer) { a.extractOpts = append(a.extractOpts, opts...) }
}

// WithKnownViews declares view names that exist outside the scanned files.
func WithKnownViews(names []string) Option {
	return func(a *Analyzer) { a.knownViews = append(a.knownViews, names...) }
}

// Analyzer runs analyses. It holds configuration only; all per-run state lives
// in a run.Context created by Analyze.
type Analyzer struct {
	logger      *slog.Logger
	parsers     *syntax.Registry
	extractOpts []extract.Option
	knownViews  []string
	driver      *extract.Driver
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{parsers: DefaultRegistry()}
	for _, opt := range opts {
		opt(a)
	}
	a.driver = extract.NewDriver(extract.NewExtractor(a.extractOpts...))
	return a
}

// DefaultRegistry returns a registry with the JavaScript, TypeScript and
// Python parsers.
func DefaultRegistry() *syntax.Registry {
	r := syntax.NewRegistry()
	r.Register(javascript.NewParser())
	r.Register(javascript.NewTypeScriptParser())
	r.Register(python.NewParser())
	return r
}

// Accepts reports whether path is something the analyzer reads: a parseable
// source file, a SQL script or a manifest.
func (a *Analyzer) Accepts(path string) bool {
	if extract.IsScript(path) || manifest.IsManifest(path) {
		return true
	}
	_, ok := a.parsers.ForPath(path)
	return ok
}

// Analyze scans files in order and builds the catalog. usage is the observed
// usage evidence for the usage classifier. Failures within a file are logged
// and that file contributes nothing; any other failure aborts the run with an
// *AnalysisError.
func (a *Analyzer) Analyze(files []loader.File, usage []catalog.Operation) (res *Result, err error) {
	rc := run.New(a.logger)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, a.fail(rc, errors.Errorf("analysis aborted: %v", r))
		}
	}()

	rc.Info("analysis started", "files", len(files))

	libs, manifestErr := manifest.Detect(files)
	if manifestErr != nil {
		rc.Error("manifest parsing failed", "error", manifestErr)
	}
	tokens := manifest.Names(libs)

	var (
		operations []catalog.Operation
		queries    []catalog.Query
	)
	for _, f := range files {
		fr := a.scanFile(rc, f, tokens)
		operations = append(operations, fr.Operations...)
		queries = append(queries, fr.Queries...)
	}

	linkViews(queries, catalog.ViewNames(queries, a.knownViews))

	analysis := catalog.Build(operations, queries, a.knownViews)
	analysis.Libraries = tokens
	analysis = catalog.ClassifyUsage(analysis, usage)
	if verr := catalog.Verify(analysis); verr != nil {
		return nil, a.fail(rc, verr)
	}

	rc.Info("analysis complete",
		"files_scanned", rc.Stats.FilesScanned,
		"files_skipped", rc.Stats.FilesSkipped,
		"files_failed", rc.Stats.FilesFailed,
		"operations", analysis.TotalOperations,
		"tables", len(analysis.Tables),
		"views", len(analysis.Views),
		"dead_code_percentage", analysis.DeadCodePercentage,
		"duration", time.Since(start),
	)

	return &Result{
		RunID:    rc.ID,
		Analysis: analysis,
		Nodes:    catalog.MapNodes(analysis),
		Stats:    rc.Stats,
	}, nil
}

// scanFile extracts the operations of one file. It never fails: a panic is
// logged and the file yields nothing.
func (a *Analyzer) scanFile(rc *run.Context, f loader.File, tokens []string) (fr extract.FileResult) {
	defer func() {
		if r := recover(); r != nil {
			rc.Error("file analysis failed", "file", f.Path, "error", fmt.Sprint(r))
			rc.Stats.FilesFailed++
			fr = extract.FileResult{}
		}
	}()

	if len(f.Content) == 0 {
		rc.Stats.FilesSkipped++
		return extract.FileResult{}
	}
	if extract.IsScript(f.Path) {
		rc.Stats.FilesScanned++
		return extract.ScanScript(rc, f.Path, f.Content)
	}
	p, ok := a.parsers.ForPath(f.Path)
	if !ok || !extract.IsRelevant(f.Path, f.Content, tokens) {
		rc.Stats.FilesSkipped++
		return extract.FileResult{}
	}
	rc.Stats.FilesScanned++
	return a.driver.ScanFile(rc, p, f.Path, f.Content)
}

// fail converts err into an AnalysisError and logs it.
func (a *Analyzer) fail(rc *run.Context, err error) error {
	aerr := newValidationError(err)
	rc.Error("analysis failed", "kind", aerr.Kind, "error", aerr.Message)
	return aerr
}

// linkViews records in each query the view names it references, either as a
// table reference or as a word in its text. A CREATE VIEW query does not
// reference the view it creates.
func linkViews(queries []catalog.Query, views []string) {
	if len(views) == 0 {
		return
	}
	patterns := make([]*regexp.Regexp, len(views))
	for i, v := range views {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(v) + `\b`)
	}
	for i := range queries {
		q := &queries[i]
		created, _ := sqltext.CreatedView(q.Text)
		for j, v := range views {
			if v == created || slices.Contains(q.ReferencedViews, v) {
				continue
			}
			if slices.Contains(q.ReferencedTables, v) || patterns[j].MatchString(q.Text) {
				q.ReferencedViews = append(q.ReferencedViews, v)
			}
		}
	}
}
