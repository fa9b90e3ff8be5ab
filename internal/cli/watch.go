package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imyousuf/schemascan/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-run the analysis whenever sources change",
		Long: `Run the analysis once, then watch the scanned paths and run it again after
each batch of changes to source files, SQL scripts or dependency manifests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args)
			if err != nil {
				return err
			}
			s, err := newSession(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Handle graceful shutdown.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			out := cmd.OutOrStdout()
			res, err := s.run(ctx)
			if err != nil {
				return err
			}
			if err := renderResult(out, res, cfg.Output.Format); err != nil {
				return err
			}

			w, err := watcher.New(watcher.Config{
				Paths:   cfg.Paths,
				Exclude: cfg.Exclude,
				Accept:  s.analyzer.Accepts,
				Logger:  s.logger,
			})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer w.Close()

			batches, err := w.Start(ctx)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			fmt.Fprintf(out, "\nWatching %d paths...\n", len(cfg.Paths))
			for batch := range batches {
				fmt.Fprintf(out, "\n%d files changed, re-running analysis\n", len(batch))
				res, err := s.run(ctx)
				if err != nil {
					// Keep watching; the next change may fix it.
					s.logger.Error("analysis failed", "error", err)
					continue
				}
				if err := renderResult(out, res, cfg.Output.Format); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}
