// Package query defines a structured, data-only description of a graph
// query. It exists purely as a convenience for collaborators that want to
// describe or log a query without calling session methods directly; the
// core itself never interprets a Query — in particular it ignores
// Timeout, since §5 states the core has no internal cancellation.
package query

import "github.com/TyKolt/kremis/pkg/kremis"

// Kind identifies which traversal or lookup a Query describes.
type Kind int

const (
	KindLookup Kind = iota
	KindTraverse
	KindTraverseFiltered
	KindStrongestPath
	KindIntersect
	KindTraverseDFS
)

// Query is a structured, serializable description of one query operation.
// Only the fields relevant to Kind are meaningful; the zero value of the
// rest is ignored.
type Query struct {
	Kind Kind

	// Lookup
	Entity kremis.EntityId

	// Traverse, TraverseFiltered, TraverseDFS
	Start kremis.NodeId
	Depth int

	// TraverseFiltered
	MinWeight kremis.EdgeWeight

	// StrongestPath
	End kremis.NodeId

	// Intersect
	Nodes []kremis.NodeId

	// TimeoutMs is advisory; the core never reads it (§5).
	TimeoutMs *uint64
}

// Lookup builds a Lookup query.
func Lookup(entity kremis.EntityId) Query {
	return Query{Kind: KindLookup, Entity: entity}
}

// Traverse builds a Traverse query.
func Traverse(start kremis.NodeId, depth int) Query {
	return Query{Kind: KindTraverse, Start: start, Depth: depth}
}

// TraverseFiltered builds a TraverseFiltered query.
func TraverseFiltered(start kremis.NodeId, depth int, minWeight kremis.EdgeWeight) Query {
	return Query{Kind: KindTraverseFiltered, Start: start, Depth: depth, MinWeight: minWeight}
}

// TraverseDFS builds a TraverseDfs query.
func TraverseDFS(start kremis.NodeId, depth int) Query {
	return Query{Kind: KindTraverseDFS, Start: start, Depth: depth}
}

// StrongestPath builds a StrongestPath query.
func StrongestPath(start, end kremis.NodeId) Query {
	return Query{Kind: KindStrongestPath, Start: start, End: end}
}

// Intersect builds an Intersect query.
func Intersect(nodes []kremis.NodeId) Query {
	return Query{Kind: KindIntersect, Nodes: nodes}
}

// WithTimeout returns a copy of q carrying an advisory timeout.
func (q Query) WithTimeout(ms uint64) Query {
	q.TimeoutMs = &ms
	return q
}
