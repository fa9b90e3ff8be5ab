// Package graph defines the generic node schema handed to the graph renderer and
// the store interface that persists it.
package graph

import (
	"context"
	"io"
)

// NodeFilter specifies criteria for querying nodes.
type NodeFilter struct {
	Type        NodeType
	FilePath    string
	NamePattern string // glob pattern matched against Label
	DeadOnly    bool
}

// Store is the interface for node persistence.
type Store interface {
	// Replace drops all stored nodes and stores nodes in their place.
	Replace(ctx context.Context, nodes []Node) error

	// GetNode retrieves a single node by ID.
	GetNode(ctx context.Context, id string) (*Node, error)

	// QueryNodes returns all nodes matching the given filter, ordered by ID.
	QueryNodes(ctx context.Context, filter NodeFilter) ([]*Node, error)

	// Stats returns aggregate statistics about the stored nodes.
	Stats(ctx context.Context) (*GraphStats, error)

	// Close releases resources held by the store.
	Close() error
}

// Exporter can serialize all stored nodes to a writer.
type Exporter interface {
	Export(ctx context.Context, w io.Writer) error
}
