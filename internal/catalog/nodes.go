package catalog

import (
	"github.com/imyousuf/schemascan/internal/graph"
	"github.com/imyousuf/schemascan/internal/sqltext"
)

// MapNodes projects the tables and then the views of a into graph nodes.
func MapNodes(a *Analysis) []graph.Node {
	nodes := make([]graph.Node, 0, len(a.Tables)+len(a.Views))
	for _, e := range a.Tables {
		nodes = append(nodes, MapNode(e))
	}
	for _, e := range a.Views {
		nodes = append(nodes, MapNode(e))
	}
	return nodes
}

// MapNode projects a single entity into a graph node.
func MapNode(e *Entity) graph.Node {
	props := map[string]any{
		graph.PropOperations:     operationKinds(e.Operations),
		graph.PropOperationCount: len(e.Operations),
		graph.PropIsDeadCode:     e.LiveCodeScore == ScoreDead,
	}

	nodeType := graph.NodeTable
	if e.Kind == KindView {
		nodeType = graph.NodeView
		props[graph.PropViewName] = e.Name
	} else {
		props[graph.PropTableName] = e.Name
	}

	return graph.Node{
		ID:            graph.NewNodeID(string(e.Kind), e.Name),
		Label:         e.Name,
		Type:          nodeType,
		Category:      graph.CategoryDatabase,
		LiveCodeScore: e.LiveCodeScore,
		FilePath:      e.File,
		Line:          e.Line,
		Column:        e.Column,
		Ownership:     graph.OwnershipInternal,
		Properties:    props,
	}
}

// operationKinds lists the distinct operation kinds in first-seen order.
func operationKinds(ops []Operation) []string {
	seen := make(map[sqltext.Kind]bool, len(ops))
	kinds := make([]string, 0, len(ops))
	for _, op := range ops {
		if seen[op.Kind] {
			continue
		}
		seen[op.Kind] = true
		kinds = append(kinds, string(op.Kind))
	}
	return kinds
}
