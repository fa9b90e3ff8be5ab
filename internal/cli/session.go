package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/imyousuf/schemascan/internal/analyzer"
	"github.com/imyousuf/schemascan/internal/catalog"
	"github.com/imyousuf/schemascan/internal/config"
	"github.com/imyousuf/schemascan/internal/graph"
	"github.com/imyousuf/schemascan/internal/extract"
	"github.com/imyousuf/schemascan/internal/graph/embedded"
	"github.com/imyousuf/schemascan/internal/loader"
)

// session holds everything one command needs to run analyses.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	analyzer *analyzer.Analyzer
}

// loadConfig reads the config file, lets the command override paths, and
// validates the result.
func loadConfig(paths []string) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		cfg.Paths = paths
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newSession(cfg *config.Config) (*session, error) {
	logger := newLogger(cfg.Log, verbose, os.Stderr)

	resolver, err := extract.ResolverByName(cfg.Analysis.ModelResolver, cfg.Analysis.ModelPlaceholder)
	if err != nil {
		return nil, err
	}
	a := analyzer.New(
		analyzer.WithLogger(logger),
		analyzer.WithKnownViews(cfg.Analysis.KnownViews),
		analyzer.WithExtractorOptions(
			extract.WithModelResolver(resolver),
			extract.WithMaxChainSteps(cfg.Analysis.MaxChainDepth),
		),
	)
	return &session{cfg: cfg, logger: logger, analyzer: a}, nil
}

// report is one analysis result plus, when nodes were stored, the store's
// contents after the run.
type report struct {
	*analyzer.Result
	Store *graph.GraphStats `json:"store,omitempty"`
}

// run loads the configured paths, analyzes them, and stores the nodes when a
// store is configured.
func (s *session) run(ctx context.Context) (*report, error) {
	files, err := loader.Load(s.cfg.Paths, loader.Options{
		Exclude:     s.cfg.Exclude,
		MaxFileSize: s.cfg.Analysis.MaxFileSize,
		Accept:      s.analyzer.Accepts,
	})
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}

	usage, err := loadUsage(s.cfg.Analysis.UsageFile)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.Analyze(files, usage)
	if err != nil {
		return nil, err
	}

	rep := &report{Result: res}
	if s.cfg.Output.Store != "" {
		if rep.Store, err = storeNodes(ctx, s.cfg.Output.Store, res.Nodes); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// storeNodes replaces the store's contents with nodes and returns the
// resulting store statistics.
func storeNodes(ctx context.Context, path string, nodes []graph.Node) (*graph.GraphStats, error) {
	store, err := embedded.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.Replace(ctx, nodes); err != nil {
		return nil, fmt.Errorf("store nodes: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("store stats: %w", err)
	}
	return stats, nil
}

// loadUsage reads the usage evidence file, a JSON array of operations. An
// empty path means no evidence.
func loadUsage(path string) ([]catalog.Operation, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read usage file: %w", err)
	}
	var ops []catalog.Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("parse usage file %s: %w", path, err)
	}
	return ops, nil
}
