// Package memstore implements graphstore.Store as a volatile, in-process
// backend. It holds three logical maps — nodes, adjacency, and properties
// — plus the entity index, all iterated in key order at read time: Go's
// built-in maps give no iteration-order guarantee, so every method that
// walks one sorts its keys first, which is the "explicit sort-on-iterate"
// option the design notes (§9) call out as an acceptable substitute for a
// tree-backed ordered map. There is no locking at this layer; the session
// layer (pkg/session) owns exclusive-access discipline (§5).
package memstore

import (
	"sort"

	"github.com/TyKolt/kremis/pkg/graphstore"
	"github.com/TyKolt/kremis/pkg/kremis"
)

// Store is the in-memory graphstore.Store implementation.
type Store struct {
	nodes       map[kremis.NodeId]kremis.Node
	edges       map[kremis.NodeId]map[kremis.NodeId]kremis.EdgeWeight
	entityIndex map[kremis.EntityId]kremis.NodeId
	properties  map[kremis.NodeId][]kremis.Property
	nextNodeID  kremis.NodeId
}

var _ graphstore.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nodes:       make(map[kremis.NodeId]kremis.Node),
		edges:       make(map[kremis.NodeId]map[kremis.NodeId]kremis.EdgeWeight),
		entityIndex: make(map[kremis.EntityId]kremis.NodeId),
		properties:  make(map[kremis.NodeId][]kremis.Property),
	}
}

func (s *Store) InsertNode(entity kremis.EntityId) (kremis.NodeId, error) {
	if id, ok := s.entityIndex[entity]; ok {
		return id, nil
	}
	id := s.nextNodeID
	s.nextNodeID++
	s.nodes[id] = kremis.Node{ID: id, Entity: entity}
	s.entityIndex[entity] = id
	return id, nil
}

func (s *Store) InsertEdge(from, to kremis.NodeId, weight kremis.EdgeWeight) error {
	if _, ok := s.nodes[from]; !ok {
		return nil
	}
	if _, ok := s.nodes[to]; !ok {
		return nil
	}
	s.adjacency(from)[to] = weight
	return nil
}

func (s *Store) IncrementEdge(from, to kremis.NodeId) error {
	if _, ok := s.nodes[from]; !ok {
		return nil
	}
	if _, ok := s.nodes[to]; !ok {
		return nil
	}
	adj := s.adjacency(from)
	adj[to] = adj[to].SaturatingIncrement()
	return nil
}

func (s *Store) DecrementEdge(from, to kremis.NodeId) error {
	adj, ok := s.edges[from]
	if !ok {
		return &kremis.EdgeNotFoundError{From: from, To: to}
	}
	w, ok := adj[to]
	if !ok {
		return &kremis.EdgeNotFoundError{From: from, To: to}
	}
	adj[to] = w.SaturatingDecrement()
	return nil
}

func (s *Store) GetEdge(from, to kremis.NodeId) (kremis.EdgeWeight, bool, error) {
	adj, ok := s.edges[from]
	if !ok {
		return 0, false, nil
	}
	w, ok := adj[to]
	return w, ok, nil
}

func (s *Store) Neighbors(node kremis.NodeId) ([]graphstore.Neighbor, error) {
	adj, ok := s.edges[node]
	if !ok {
		return []graphstore.Neighbor{}, nil
	}
	result := make([]graphstore.Neighbor, 0, len(adj))
	for to, w := range adj {
		result = append(result, graphstore.Neighbor{To: to, Weight: w})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].To < result[j].To })
	return result, nil
}

func (s *Store) Lookup(node kremis.NodeId) (kremis.Node, bool, error) {
	n, ok := s.nodes[node]
	return n, ok, nil
}

func (s *Store) GetNodeByEntity(entity kremis.EntityId) (kremis.NodeId, bool, error) {
	id, ok := s.entityIndex[entity]
	return id, ok, nil
}

func (s *Store) ContainsNode(node kremis.NodeId) (bool, error) {
	_, ok := s.nodes[node]
	return ok, nil
}

func (s *Store) StoreProperty(node kremis.NodeId, attribute kremis.Attribute, value kremis.Value) error {
	if _, ok := s.nodes[node]; !ok {
		return &kremis.NodeNotFoundError{Node: node}
	}
	s.properties[node] = append(s.properties[node], kremis.Property{Attribute: attribute, Value: value})
	return nil
}

func (s *Store) GetProperties(node kremis.NodeId) ([]kremis.Property, error) {
	if _, ok := s.nodes[node]; !ok {
		return nil, &kremis.NodeNotFoundError{Node: node}
	}
	props := s.properties[node]
	result := make([]kremis.Property, len(props))
	copy(result, props)
	sort.SliceStable(result, func(i, j int) bool { return result[i].Attribute < result[j].Attribute })
	return result, nil
}

func (s *Store) NodeCount() (int, error) { return len(s.nodes), nil }

func (s *Store) EdgeCount() (int, error) {
	count := 0
	for _, adj := range s.edges {
		count += len(adj)
	}
	return count, nil
}

func (s *Store) Nodes() ([]kremis.Node, error) {
	ids := make([]kremis.NodeId, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]kremis.Node, len(ids))
	for i, id := range ids {
		result[i] = s.nodes[id]
	}
	return result, nil
}

func (s *Store) Edges() ([]kremis.Edge, error) {
	var result []kremis.Edge
	froms := make([]kremis.NodeId, 0, len(s.edges))
	for from := range s.edges {
		froms = append(froms, from)
	}
	sort.Slice(froms, func(i, j int) bool { return froms[i] < froms[j] })
	for _, from := range froms {
		tos := make([]kremis.NodeId, 0, len(s.edges[from]))
		for to := range s.edges[from] {
			tos = append(tos, to)
		}
		sort.Slice(tos, func(i, j int) bool { return tos[i] < tos[j] })
		for _, to := range tos {
			result = append(result, kremis.Edge{From: from, To: to, Weight: s.edges[from][to]})
		}
	}
	if result == nil {
		result = []kremis.Edge{}
	}
	return result, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) Traverse(start kremis.NodeId, depth int) (kremis.Artifact, bool, error) {
	return graphstore.BFS(s, start, depth, nil)
}

func (s *Store) TraverseFiltered(start kremis.NodeId, depth int, minWeight kremis.EdgeWeight) (kremis.Artifact, bool, error) {
	return graphstore.BFS(s, start, depth, &minWeight)
}

func (s *Store) TraverseDFS(start kremis.NodeId, depth int) (kremis.Artifact, bool, error) {
	return graphstore.DFS(s, start, depth)
}

func (s *Store) Intersect(nodes []kremis.NodeId) ([]kremis.NodeId, error) {
	return graphstore.Intersect(s, nodes)
}

func (s *Store) StrongestPath(start, end kremis.NodeId) ([]kremis.NodeId, bool, error) {
	return graphstore.StrongestPath(s, start, end)
}

// adjacency returns (creating if necessary) the adjacency map for from.
// Only called after the caller has confirmed from exists.
func (s *Store) adjacency(from kremis.NodeId) map[kremis.NodeId]kremis.EdgeWeight {
	adj, ok := s.edges[from]
	if !ok {
		adj = make(map[kremis.NodeId]kremis.EdgeWeight)
		s.edges[from] = adj
	}
	return adj
}

// Clone returns a deep, structurally independent copy of the store. Clone
// is only meaningful for in-memory backends (§4.7); the persistent backend
// does not implement it because a Badger handle cannot be safely shared
// this way.
func (s *Store) Clone() *Store {
	clone := New()
	clone.nextNodeID = s.nextNodeID
	for id, n := range s.nodes {
		clone.nodes[id] = n
	}
	for entity, id := range s.entityIndex {
		clone.entityIndex[entity] = id
	}
	for from, adj := range s.edges {
		cloneAdj := make(map[kremis.NodeId]kremis.EdgeWeight, len(adj))
		for to, w := range adj {
			cloneAdj[to] = w
		}
		clone.edges[from] = cloneAdj
	}
	for node, props := range s.properties {
		cloned := make([]kremis.Property, len(props))
		copy(cloned, props)
		clone.properties[node] = cloned
	}
	return clone
}
