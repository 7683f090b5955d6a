package graphstore

import (
	"sort"

	"github.com/TyKolt/kremis/pkg/canonical"
	"github.com/TyKolt/kremis/pkg/kremis"
)

// Load rehydrates a canonical.Graph into store: every node is inserted
// first (in ascending NodeId order, so a store that assigns ids
// sequentially reproduces the same ids the snapshot was taken with),
// then every edge, then every property. Nodes-before-edges matters
// because InsertEdge is a silent no-op against a missing endpoint —
// inserting edges against an empty store would drop all of them.
//
// Load is how canonical export/import serves cross-backend migration:
// export one backend's snapshot, decode it with canonical.Import, and
// Load it into a freshly opened store of the other backend.
func Load(store Store, g canonical.Graph) error {
	nodes := make([]kremis.Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for _, n := range nodes {
		if _, err := store.InsertNode(n.Entity); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		if err := store.InsertEdge(e.From, e.To, e.Weight); err != nil {
			return err
		}
	}
	for _, p := range g.Properties {
		if err := store.StoreProperty(p.Node, p.Attribute, p.Value); err != nil {
			return err
		}
	}
	return nil
}
