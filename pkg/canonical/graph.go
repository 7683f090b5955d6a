package canonical

import "github.com/TyKolt/kremis/pkg/kremis"

// Graph is the canonical, backend-agnostic snapshot of a graph's full
// state: every node, every edge, every property, and the next node id a
// store would assign. It is what pkg/session's ExportGraphSnapshot
// produces and what Export/Import serialize and reconstruct (§4.7, §4.6).
type Graph struct {
	Nodes      []kremis.Node
	Edges      []kremis.Edge
	NextNodeID kremis.NodeId
	Properties []PropertyRecord
}

// PropertyRecord is one (node, attribute, value) triple, the flattened
// form properties take in the canonical body and checksum.
type PropertyRecord struct {
	Node      kremis.NodeId
	Attribute kremis.Attribute
	Value     kremis.Value
}
