// Package embedded implements graph.Store on BadgerDB.
package embedded

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/imyousuf/schemascan/internal/graph"
)

// Key prefixes for the BadgerDB key scheme.
const (
	prefixNode    = "n:"
	prefixIdxType = "idx:type:"
	prefixIdxFile = "idx:file:"
)

// Store persists the nodes of the most recent analysis.
type Store struct {
	db *badger.DB
}

// NewStore opens (or creates) a store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // suppress badger logs
	return open(opts)
}

// NewMemoryStore opens a store that lives only in memory.
func NewMemoryStore() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

func nodeKey(id string) []byte { return []byte(prefixNode + id) }

func indexTypeKey(nodeType graph.NodeType, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefixIdxType, nodeType, id))
}

func indexFileKey(filePath, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefixIdxFile, filePath, id))
}

// Replace drops everything stored and writes nodes in its place.
func (s *Store) Replace(ctx context.Context, nodes []graph.Node) error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		node := &nodes[i]
		data, err := json.Marshal(node)
		if err != nil {
			return fmt.Errorf("marshal node %s: %w", node.ID, err)
		}
		if err := wb.Set(nodeKey(node.ID), data); err != nil {
			return fmt.Errorf("write node %s: %w", node.ID, err)
		}
		if err := wb.Set(indexTypeKey(node.Type, node.ID), nil); err != nil {
			return fmt.Errorf("write type index %s: %w", node.ID, err)
		}
		if node.FilePath != "" {
			if err := wb.Set(indexFileKey(node.FilePath, node.ID), nil); err != nil {
				return fmt.Errorf("write file index %s: %w", node.ID, err)
			}
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush nodes: %w", err)
	}
	return nil
}

// GetNode returns the node with the given ID.
func (s *Store) GetNode(_ context.Context, id string) (*graph.Node, error) {
	var node *graph.Node
	err := s.db.View(func(txn *badger.Txn) error {
		n, err := getNodeInTxn(txn, id)
		node = n
		return err
	})
	return node, err
}

func getNodeInTxn(txn *badger.Txn, id string) (*graph.Node, error) {
	item, err := txn.Get(nodeKey(id))
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	var node graph.Node
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &node)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal node %s: %w", id, err)
	}
	return &node, nil
}

// QueryNodes returns the nodes matching filter, ordered by ID. Type and file
// filters are served from their indexes.
func (s *Store) QueryNodes(_ context.Context, filter graph.NodeFilter) ([]*graph.Node, error) {
	var results []*graph.Node
	err := s.db.View(func(txn *badger.Txn) error {
		var prefix []byte
		switch {
		case filter.FilePath != "":
			prefix = []byte(prefixIdxFile + filter.FilePath + ":")
		case filter.Type != "":
			prefix = []byte(prefixIdxType + string(filter.Type) + ":")
		default:
			return scanNodes(txn, func(node *graph.Node) bool {
				if matchesFilter(node, filter) {
					results = append(results, node)
				}
				return true
			})
		}

		for _, id := range scanIndexPrefix(txn, prefix) {
			node, err := getNodeInTxn(txn, id)
			if err != nil {
				continue // stale index entry
			}
			if matchesFilter(node, filter) {
				results = append(results, node)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// Stats counts the stored nodes.
func (s *Store) Stats(_ context.Context) (*graph.GraphStats, error) {
	stats := &graph.GraphStats{NodesByType: make(map[graph.NodeType]int64)}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanNodes(txn, func(node *graph.Node) bool {
			stats.NodeCount++
			stats.NodesByType[node.Type]++
			if node.IsDead() {
				stats.DeadCount++
			}
			return true
		})
	})
	return stats, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// scanIndexPrefix returns the IDs stored under an index prefix. The ID is the
// part of the key after the prefix.
func scanIndexPrefix(txn *badger.Txn, prefix []byte) []string {
	var ids []string
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(prefix); it.Valid(); it.Next() {
		if id := strings.TrimPrefix(string(it.Item().Key()), string(prefix)); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// scanNodes calls fn for every stored node in key order. Return false from fn
// to stop.
func scanNodes(txn *badger.Txn, fn func(*graph.Node) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	prefix := []byte(prefixNode)
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(prefix); it.Valid(); it.Next() {
		var node graph.Node
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		})
		if err != nil {
			continue
		}
		if !fn(&node) {
			break
		}
	}
	return nil
}

// matchesFilter checks whether a node matches all non-zero fields in the filter.
func matchesFilter(node *graph.Node, filter graph.NodeFilter) bool {
	if filter.Type != "" && node.Type != filter.Type {
		return false
	}
	if filter.FilePath != "" && node.FilePath != filter.FilePath {
		return false
	}
	if filter.NamePattern != "" {
		matched, err := filepath.Match(filter.NamePattern, node.Label)
		if err != nil || !matched {
			return false
		}
	}
	if filter.DeadOnly && !node.IsDead() {
		return false
	}
	return true
}
