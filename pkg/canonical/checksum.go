package canonical

import (
	"sort"

	"github.com/TyKolt/kremis/pkg/kremis"
)

// rol is a 64-bit rotate-left, the primitive the §4.6 checksum is built
// from. It is deliberately not collision-resistant; it exists to catch
// accidental corruption cheaply, not to authenticate anything.
func rol(x uint64, bits uint) uint64 {
	bits &= 63
	if bits == 0 {
		return x
	}
	return (x << bits) | (x >> (64 - bits))
}

func sortedNodes(nodes []kremis.Node) []kremis.Node {
	out := make([]kremis.Node, len(nodes))
	copy(out, nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedEdges(edges []kremis.Edge) []kremis.Edge {
	out := make([]kremis.Edge, len(edges))
	copy(out, edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

func sortedProperties(props []PropertyRecord) []PropertyRecord {
	out := make([]PropertyRecord, len(props))
	copy(out, props)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node != out[j].Node {
			return out[i].Node < out[j].Node
		}
		if out[i].Attribute != out[j].Attribute {
			return out[i].Attribute < out[j].Attribute
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// checksum computes the XOR-rotation checksum of §4.6. includeProperties
// is false for the v1 view (v1 bodies carry no properties) and true for
// v2, matching the header's recorded version.
func checksum(g Graph, includeProperties bool) uint64 {
	var hash uint64

	for _, n := range sortedNodes(g.Nodes) {
		hash ^= rol(uint64(n.ID), 13)
		hash ^= rol(uint64(n.Entity), 7)
	}
	for _, e := range sortedEdges(g.Edges) {
		hash ^= rol(uint64(e.From), 17)
		hash ^= rol(uint64(e.To), 11)
		hash ^= rol(uint64(e.Weight), 5)
	}
	if includeProperties {
		for _, p := range sortedProperties(g.Properties) {
			hash ^= rol(uint64(p.Node), 19)
			for _, b := range []byte(p.Attribute) {
				hash ^= rol(uint64(b), 23)
			}
			for _, b := range []byte(p.Value) {
				hash ^= rol(uint64(b), 29)
			}
		}
	}
	hash ^= rol(uint64(g.NextNodeID), 3)
	return hash
}

// Checksum computes the §4.6 checksum over the v2 (current) view of g,
// including properties. It is exported so callers can verify a graph
// against a previously recorded checksum without a full export.
func Checksum(g Graph) uint64 {
	return checksum(g, true)
}
