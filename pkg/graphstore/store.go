// Package graphstore defines the graph store contract (§4.1 of the
// specification) and the bounded query algorithms built on top of it.
// Two backends implement Store with identical external behavior: an
// in-memory backend (pkg/graphstore/memstore) and a persistent,
// Badger-backed backend (pkg/graphstore/badgerstore). Callers that only
// depend on Store are backend-agnostic.
package graphstore

import "github.com/TyKolt/kremis/pkg/kremis"

// Neighbor is one outgoing edge from a node, as returned by Neighbors.
type Neighbor struct {
	To     kremis.NodeId
	Weight kremis.EdgeWeight
}

// Store is the abstract graph store contract. Both backends implement it
// with identical semantics; see the table in spec §4.1 for the guarantee
// each method carries.
type Store interface {
	// InsertNode returns the existing NodeId if entity is already present;
	// otherwise it assigns the next id and persists the node.
	InsertNode(entity kremis.EntityId) (kremis.NodeId, error)

	// InsertEdge overwrites any existing weight between from and to. It is
	// a silent no-op if either endpoint is absent.
	InsertEdge(from, to kremis.NodeId, weight kremis.EdgeWeight) error

	// IncrementEdge creates the edge at weight 1 if absent, otherwise adds
	// 1 with saturation. Dangling endpoints are silently ignored.
	IncrementEdge(from, to kremis.NodeId) error

	// DecrementEdge subtracts 1 with a floor of 0. Returns an
	// EdgeNotFoundError if the edge does not exist.
	DecrementEdge(from, to kremis.NodeId) error

	// GetEdge reports the current weight and whether the edge exists.
	GetEdge(from, to kremis.NodeId) (weight kremis.EdgeWeight, ok bool, err error)

	// Neighbors returns the out-edges of node, ascending by NodeId.
	Neighbors(node kremis.NodeId) ([]Neighbor, error)

	// Lookup returns the node and whether it exists.
	Lookup(node kremis.NodeId) (kremis.Node, bool, error)

	// GetNodeByEntity resolves the entity index.
	GetNodeByEntity(entity kremis.EntityId) (kremis.NodeId, bool, error)

	// ContainsNode reports whether node exists.
	ContainsNode(node kremis.NodeId) (bool, error)

	// Traverse runs a bounded BFS from start, clamping depth to
	// kremis.MaxTraversalDepth. ok is false if start does not exist.
	Traverse(start kremis.NodeId, depth int) (artifact kremis.Artifact, ok bool, err error)

	// TraverseFiltered is Traverse with edges below minWeight pruned from
	// both the subgraph and the BFS frontier.
	TraverseFiltered(start kremis.NodeId, depth int, minWeight kremis.EdgeWeight) (artifact kremis.Artifact, ok bool, err error)

	// TraverseDFS is the depth-first analogue of Traverse, visiting
	// neighbors in ascending NodeId order.
	TraverseDFS(start kremis.NodeId, depth int) (artifact kremis.Artifact, ok bool, err error)

	// Intersect returns the out-neighbors common to every input node,
	// ascending by NodeId. Empty input returns an empty, non-nil slice.
	Intersect(nodes []kremis.NodeId) ([]kremis.NodeId, error)

	// StrongestPath runs inverted-cost Dijkstra between start and end.
	// ok is false if either endpoint is missing or end is unreachable.
	StrongestPath(start, end kremis.NodeId) (path []kremis.NodeId, ok bool, err error)

	// StoreProperty appends (attribute, value) to node's property list.
	// Returns a NodeNotFoundError if node does not exist.
	StoreProperty(node kremis.NodeId, attribute kremis.Attribute, value kremis.Value) error

	// GetProperties returns every property of node, ordered by
	// (attribute, insertion order). Returns a NodeNotFoundError if node
	// does not exist; an empty, non-nil slice if the node has none.
	GetProperties(node kremis.NodeId) ([]kremis.Property, error)

	// NodeCount and EdgeCount report the current store size.
	NodeCount() (int, error)
	EdgeCount() (int, error)

	// Nodes and Edges return every node/edge in deterministic order
	// (ascending NodeId; ascending (From, To) respectively).
	Nodes() ([]kremis.Node, error)
	Edges() ([]kremis.Edge, error)

	// Close releases any resources held by the backend.
	Close() error
}
