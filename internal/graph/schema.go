package graph

// NodeType represents the kind of entity in the dependency graph.
type NodeType string

const (
	NodeTable NodeType = "DatabaseTable"
	NodeView  NodeType = "DatabaseView"
)

// CategoryDatabase is the category shared by all schema nodes.
const CategoryDatabase = "database"

// Ownership tells first-party nodes apart from third-party ones.
type Ownership string

const (
	OwnershipInternal Ownership = "internal"
	OwnershipExternal Ownership = "external"
)

// Property keys for Node.Properties.
const (
	// PropOperations is the list of operation kinds seen on the entity.
	PropOperations = "operations"
	// PropOperationCount is the number of operations attached to the entity.
	PropOperationCount = "operation_count"
	// PropIsDeadCode is true when no observed usage references the entity.
	PropIsDeadCode = "is_dead_code"
	// PropTableName is set on table nodes.
	PropTableName = "table_name"
	// PropViewName is set on view nodes.
	PropViewName = "view_name"
)

// Node is the renderer-facing form of a catalogued entity.
type Node struct {
	ID            string         `json:"id"`
	Label         string         `json:"label"`
	Type          NodeType       `json:"type"`
	Category      string         `json:"category"`
	LiveCodeScore int            `json:"live_code_score"`
	FilePath      string         `json:"file_path"`
	Line          int            `json:"line,omitempty"`
	Column        int            `json:"column,omitempty"`
	Ownership     Ownership      `json:"ownership"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// IsDead reports whether the node is marked as dead code.
func (n *Node) IsDead() bool {
	if dead, ok := n.Properties[PropIsDeadCode].(bool); ok {
		return dead
	}
	return n.LiveCodeScore == 0
}

// GraphStats holds aggregate statistics about stored nodes.
type GraphStats struct {
	NodeCount   int64              `json:"node_count"`
	DeadCount   int64              `json:"dead_count"`
	NodesByType map[NodeType]int64 `json:"nodes_by_type"`
}

// NewNodeID builds the node ID of an entity: "<kind>_<name>".
func NewNodeID(kind, name string) string {
	return kind + "_" + name
}
