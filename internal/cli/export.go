package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/imyousuf/schemascan/internal/graph"
	"github.com/imyousuf/schemascan/internal/graph/embedded"
)

func newExportCmd() *cobra.Command {
	var (
		storePath string
		output    string
		nodeType  string
		nodeID    string
		deadOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored nodes as JSON lines",
		Long: `Export the nodes stored by the last 'analyze --store' run as JSON lines.

With --type or --dead-only, only matching nodes are written, one JSON node per line.
With --id, only the node with that ID (for example table_orders) is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if storePath == "" {
				cfg, err := loadConfig(nil)
				if err != nil {
					return err
				}
				storePath = cfg.Output.Store
			}
			if storePath == "" {
				return fmt.Errorf("no store configured; pass --store or set output.store")
			}
			if _, err := os.Stat(storePath); err != nil {
				return fmt.Errorf("store %s: %w", storePath, err)
			}

			store, err := embedded.NewStore(storePath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if nodeID != "" {
				node, err := store.GetNode(cmd.Context(), nodeID)
				if err != nil {
					return err
				}
				return writeNodes(w, []*graph.Node{node})
			}
			if nodeType == "" && !deadOnly {
				return store.Export(cmd.Context(), w)
			}
			nodes, err := store.QueryNodes(cmd.Context(), graph.NodeFilter{
				Type:     graph.NodeType(nodeType),
				DeadOnly: deadOnly,
			})
			if err != nil {
				return fmt.Errorf("query nodes: %w", err)
			}
			return writeNodes(w, nodes)
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "node store directory (default: output.store)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&nodeType, "type", "", "only export nodes of this type (DatabaseTable or DatabaseView)")
	cmd.Flags().StringVar(&nodeID, "id", "", "only export the node with this ID")
	cmd.Flags().BoolVar(&deadOnly, "dead-only", false, "only export dead-code nodes")

	return cmd
}

func writeNodes(w io.Writer, nodes []*graph.Node) error {
	enc := json.NewEncoder(w)
	for _, n := range nodes {
		if err := enc.Encode(n); err != nil {
			return fmt.Errorf("encode node %s: %w", n.ID, err)
		}
	}
	return nil
}
