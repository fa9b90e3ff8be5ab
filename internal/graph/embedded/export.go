package embedded

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"

	"github.com/imyousuf/schemascan/internal/graph"
)

// exportRecord is one line of the JSON-lines export.
type exportRecord struct {
	Kind string          `json:"kind"` // always "node"
	Data json.RawMessage `json:"data"`
}

// Export writes every stored node to w as JSON lines, ordered by ID.
func (s *Store) Export(_ context.Context, w io.Writer) error {
	enc := json.NewEncoder(w)
	return s.db.View(func(txn *badger.Txn) error {
		var encErr error
		err := scanNodes(txn, func(node *graph.Node) bool {
			data, err := json.Marshal(node)
			if err != nil {
				return true // skip bad nodes
			}
			if err := enc.Encode(exportRecord{Kind: "node", Data: data}); err != nil {
				encErr = fmt.Errorf("encode node %s: %w", node.ID, err)
				return false
			}
			return true
		})
		if err != nil {
			return fmt.Errorf("export nodes: %w", err)
		}
		return encErr
	})
}
