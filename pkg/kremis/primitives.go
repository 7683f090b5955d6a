// Package kremis defines the core types, constants, and error taxonomy of
// the Kremis deterministic graph substrate. It has no storage or query
// logic of its own; see pkg/graphstore, pkg/ingest, pkg/canonical, and
// pkg/session for the engine subsystems built on top of these types.
package kremis

// Compiled-in limits. These are the ceilings a deployment may only narrow
// via configuration (see pkg/config); they are never exceeded regardless
// of caller input.
const (
	// AssociationWindow is the number of signal positions back from each
	// signal that receive an incremented edge during sequence ingestion.
	AssociationWindow = 1

	// MaxTraversalDepth bounds BFS/DFS traversal depth. Strongest-path
	// search is not depth-bounded.
	MaxTraversalDepth = 100

	// MaxSequenceLength bounds the number of signals in one ingestion batch.
	MaxSequenceLength = 10_000

	// MaxIntersectNodes bounds the fan-in of an intersection query.
	MaxIntersectNodes = 100

	// MaxAttributeLength is the maximum byte length of a property attribute.
	MaxAttributeLength = 256

	// MaxValueLength is the maximum byte length of a property value.
	MaxValueLength = 65_536

	// MaxImportNodeCount bounds node_count on canonical import.
	MaxImportNodeCount = 1_000_000

	// MaxImportEdgeCount bounds edge_count on canonical import.
	MaxImportEdgeCount = 10_000_000

	// PromotionThreshold is the advisory weight at which an edge is
	// considered "stable" by external stage-assessment tools. The core
	// exposes the check but never acts on it.
	PromotionThreshold = 10
)

// IsStableEdge reports whether weight meets the advisory promotion
// threshold. The core does not use this for any decision of its own;
// it exists so collaborators do not need to hardcode PromotionThreshold.
func IsStableEdge(weight EdgeWeight) bool {
	return weight >= PromotionThreshold
}
