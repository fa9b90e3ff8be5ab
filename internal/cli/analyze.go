package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		format     string
		storePath  string
		usageFile  string
		resolver   string
		knownViews []string
	)

	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Scan paths and report tables, views and dead code",
		Long: `Scan source files and SQL scripts for database operations and report the
tables and views they touch.

Paths default to the configured paths (or the current directory). With --usage,
entities that no observed operation references are scored as dead code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = format
			}
			if cmd.Flags().Changed("store") {
				cfg.Output.Store = storePath
			}
			if cmd.Flags().Changed("usage") {
				cfg.Analysis.UsageFile = usageFile
			}
			if cmd.Flags().Changed("model-resolver") {
				cfg.Analysis.ModelResolver = resolver
			}
			cfg.Analysis.KnownViews = append(cfg.Analysis.KnownViews, knownViews...)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			s, err := newSession(cfg)
			if err != nil {
				return err
			}
			res, err := s.run(cmd.Context())
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), res, cfg.Output.Format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	cmd.Flags().StringVar(&storePath, "store", "", "directory of the node store to replace with this run")
	cmd.Flags().StringVar(&usageFile, "usage", "", "JSON file of observed usage operations")
	cmd.Flags().StringVar(&resolver, "model-resolver", "placeholder", "table name for this/self receivers: placeholder or class")
	cmd.Flags().StringSliceVar(&knownViews, "known-view", nil, "view defined outside the scanned files (repeatable)")

	return cmd
}
