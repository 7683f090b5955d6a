// Package session implements the §4.7 session facade: one backend plus one
// volatile active-context set, unified behind a single handle so
// collaborators stay backend-agnostic. Mutations are serialized through a
// read/write lock (§5: "many concurrent readers, at most one writer"),
// guarding storage access with a single sync.RWMutex rather than pushing
// locking into the backend.
package session

import (
	"sort"
	"sync"

	"github.com/TyKolt/kremis/pkg/canonical"
	"github.com/TyKolt/kremis/pkg/config"
	"github.com/TyKolt/kremis/pkg/graphstore"
	"github.com/TyKolt/kremis/pkg/graphstore/badgerstore"
	"github.com/TyKolt/kremis/pkg/graphstore/memstore"
	"github.com/TyKolt/kremis/pkg/ingest"
	"github.com/TyKolt/kremis/pkg/kremis"
	"github.com/TyKolt/kremis/pkg/query"
)

// Session wraps one graphstore.Store and one active-context set. All
// methods are safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	store   graphstore.Store
	active  map[kremis.NodeId]struct{}
	metrics *Metrics

	// maxSequenceLength, maxTraversalDepth and maxIntersectNodes are the
	// bounds a deployment's Config narrowed to (or the compiled-in
	// kremis.Max* ceiling, for a Session opened without one). Every
	// entry point a collaborator can reach goes through these fields
	// rather than the package constants directly, so a narrowed Config
	// bound has actual runtime effect.
	maxSequenceLength int
	maxTraversalDepth int
	maxIntersectNodes int
}

// Open constructs a Session from cfg: an in-memory backend for
// config.BackendMemory, a Badger-backed one (opened at cfg.DataDir, with
// cfg.SyncWrites applied) for config.BackendBadger. cfg is validated first,
// and its MaxSequenceLength/MaxTraversalDepth/MaxIntersectNodes bounds are
// carried onto the Session so they govern ingestion and query calls made
// through it.
func Open(cfg *config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var store graphstore.Store
	switch cfg.Backend {
	case config.BackendMemory:
		store = memstore.New()
	case config.BackendBadger:
		s, err := badgerstore.OpenWithOptions(badgerstore.Options{
			DataDir:    cfg.DataDir,
			SyncWrites: cfg.SyncWrites,
		})
		if err != nil {
			return nil, err
		}
		store = s
	}
	session := newSession(store)
	session.maxSequenceLength = cfg.MaxSequenceLength
	session.maxTraversalDepth = cfg.MaxTraversalDepth
	session.maxIntersectNodes = cfg.MaxIntersectNodes
	return session, nil
}

// OpenMemory returns a Session backed by a fresh in-memory store.
func OpenMemory() *Session {
	return newSession(memstore.New())
}

// OpenBadger returns a Session backed by a Badger store at dataDir.
func OpenBadger(dataDir string) (*Session, error) {
	s, err := badgerstore.Open(dataDir)
	if err != nil {
		return nil, err
	}
	return newSession(s), nil
}

func newSession(store graphstore.Store) *Session {
	return &Session{
		store:             store,
		active:            make(map[kremis.NodeId]struct{}),
		metrics:           newMetrics(),
		maxSequenceLength: kremis.MaxSequenceLength,
		maxTraversalDepth: kremis.MaxTraversalDepth,
		maxIntersectNodes: kremis.MaxIntersectNodes,
	}
}

// Close releases the underlying backend's resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Close()
}

// Metrics returns the session's Prometheus metrics holder (§6).
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Ingest validates and ingests a single signal, adding the resulting
// NodeId to the active context (§4.7).
func (s *Session) Ingest(signal kremis.Signal) (kremis.NodeId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ingest.Signal(s.store, signal)
	s.metrics.recordIngest("signal", err)
	if err != nil {
		return 0, err
	}
	s.active[id] = struct{}{}
	s.refreshSizeLocked()
	return id, nil
}

// IngestSequence validates and ingests an ordered signal sequence, adding
// every resulting NodeId to the active context.
func (s *Session) IngestSequence(signals []kremis.Signal) ([]kremis.NodeId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(signals) > s.maxSequenceLength {
		s.metrics.recordIngest("sequence", kremis.ErrInvalidSignal)
		return nil, kremis.ErrInvalidSignal
	}

	ids, err := ingest.Sequence(s.store, signals)
	s.metrics.recordIngest("sequence", err)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		s.active[id] = struct{}{}
	}
	s.refreshSizeLocked()
	return ids, nil
}

// Retract decrements the weight of an existing edge.
func (s *Session) Retract(from, to kremis.NodeId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := ingest.Retract(s.store, from, to)
	s.metrics.recordIngest("retract", err)
	return err
}

// Activate, Deactivate, IsActive and ClearContext never touch the backend
// (§4.7): the active context is purely a session-local bookkeeping set.

func (s *Session) Activate(node kremis.NodeId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[node] = struct{}{}
}

func (s *Session) Deactivate(node kremis.NodeId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, node)
}

func (s *Session) IsActive(node kremis.NodeId) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[node]
	return ok
}

func (s *Session) ClearContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = make(map[kremis.NodeId]struct{})
}

// ActiveContext returns the active NodeIds, ascending.
func (s *Session) ActiveContext() []kremis.NodeId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]kremis.NodeId, 0, len(s.active))
	for id := range s.active {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Lookup, GetNodeByEntity, GetProperties, NodeCount, EdgeCount,
// Traverse/TraverseFiltered/TraverseDFS, Intersect and StrongestPath all
// delegate straight to the backend under a read lock. GetEdge, Neighbors,
// ContainsNode, Nodes and Edges do the same; InsertNode, InsertEdge,
// IncrementEdge, DecrementEdge and StoreProperty delegate under the write
// lock. Every graphstore.Store operation is reachable through the session
// handle without a collaborator needing the backend directly.

func (s *Session) Lookup(node kremis.NodeId) (kremis.Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Lookup(node)
}

func (s *Session) GetNodeByEntity(entity kremis.EntityId) (kremis.NodeId, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.GetNodeByEntity(entity)
}

// InsertNode returns the existing NodeId if entity is already present,
// otherwise creates it. It does not touch the active context; callers that
// want the result activated should use Ingest instead.
func (s *Session) InsertNode(entity kremis.EntityId) (kremis.NodeId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.store.InsertNode(entity)
	if err == nil {
		s.refreshSizeLocked()
	}
	return id, err
}

// InsertEdge sets the weight of the edge from->to, overwriting any
// existing weight. A silent no-op if either endpoint is absent.
func (s *Session) InsertEdge(from, to kremis.NodeId, weight kremis.EdgeWeight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.store.InsertEdge(from, to, weight)
	if err == nil {
		s.refreshSizeLocked()
	}
	return err
}

// IncrementEdge creates the edge at weight 1 if absent, otherwise adds 1
// with saturation. Dangling endpoints are silently ignored.
func (s *Session) IncrementEdge(from, to kremis.NodeId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.store.IncrementEdge(from, to)
	if err == nil {
		s.refreshSizeLocked()
	}
	return err
}

// DecrementEdge subtracts 1 from an existing edge's weight with a floor of
// 0. Unlike Retract this does not go through the ingest package, so no
// ingest metric is recorded.
func (s *Session) DecrementEdge(from, to kremis.NodeId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DecrementEdge(from, to)
}

func (s *Session) GetEdge(from, to kremis.NodeId) (kremis.EdgeWeight, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.GetEdge(from, to)
}

func (s *Session) Neighbors(node kremis.NodeId) ([]graphstore.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Neighbors(node)
}

func (s *Session) ContainsNode(node kremis.NodeId) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ContainsNode(node)
}

// StoreProperty appends (attribute, value) to node's property list
// directly, bypassing signal validation. Most callers want Ingest instead.
func (s *Session) StoreProperty(node kremis.NodeId, attribute kremis.Attribute, value kremis.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.StoreProperty(node, attribute, value)
}

func (s *Session) Nodes() ([]kremis.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Nodes()
}

func (s *Session) Edges() ([]kremis.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Edges()
}

func (s *Session) GetProperties(node kremis.NodeId) ([]kremis.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.GetProperties(node)
}

func (s *Session) NodeCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.NodeCount()
}

func (s *Session) EdgeCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.EdgeCount()
}

func (s *Session) Traverse(start kremis.NodeId, depth int) (kremis.Artifact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok, err := s.store.Traverse(start, s.clampDepthLocked(depth))
	s.metrics.recordQuery("traverse", err)
	return a, ok, err
}

func (s *Session) TraverseFiltered(start kremis.NodeId, depth int, minWeight kremis.EdgeWeight) (kremis.Artifact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok, err := s.store.TraverseFiltered(start, s.clampDepthLocked(depth), minWeight)
	s.metrics.recordQuery("traverse_filtered", err)
	return a, ok, err
}

func (s *Session) TraverseDFS(start kremis.NodeId, depth int) (kremis.Artifact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok, err := s.store.TraverseDFS(start, s.clampDepthLocked(depth))
	s.metrics.recordQuery("traverse_dfs", err)
	return a, ok, err
}

// clampDepthLocked narrows depth to the session's configured traversal
// bound. Callers hold s.mu already.
func (s *Session) clampDepthLocked(depth int) int {
	if depth > s.maxTraversalDepth {
		return s.maxTraversalDepth
	}
	return depth
}

func (s *Session) Intersect(nodes []kremis.NodeId) ([]kremis.NodeId, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(nodes) > s.maxIntersectNodes {
		nodes = nodes[:s.maxIntersectNodes]
	}
	result, err := s.store.Intersect(nodes)
	s.metrics.recordQuery("intersect", err)
	return result, err
}

func (s *Session) StrongestPath(start, end kremis.NodeId) ([]kremis.NodeId, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok, err := s.store.StrongestPath(start, end)
	s.metrics.recordQuery("strongest_path", err)
	return path, ok, err
}

// Execute dispatches a query.Query to the matching store method. It exists
// so a collaborator that only has a structured Query value (e.g. replayed
// from a log) does not need a type switch of its own.
func (s *Session) Execute(q query.Query) (interface{}, error) {
	switch q.Kind {
	case query.KindLookup:
		id, ok, err := s.GetNodeByEntity(q.Entity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return id, nil
	case query.KindTraverse:
		a, ok, err := s.Traverse(q.Start, q.Depth)
		if err != nil || !ok {
			return nil, err
		}
		return a, nil
	case query.KindTraverseFiltered:
		a, ok, err := s.TraverseFiltered(q.Start, q.Depth, q.MinWeight)
		if err != nil || !ok {
			return nil, err
		}
		return a, nil
	case query.KindTraverseDFS:
		a, ok, err := s.TraverseDFS(q.Start, q.Depth)
		if err != nil || !ok {
			return nil, err
		}
		return a, nil
	case query.KindStrongestPath:
		path, ok, err := s.StrongestPath(q.Start, q.End)
		if err != nil || !ok {
			return nil, err
		}
		return path, nil
	case query.KindIntersect:
		return s.Intersect(q.Nodes)
	default:
		return nil, nil
	}
}

// ExportGraphSnapshot returns an in-memory canonical.Graph containing
// every node, edge and property of the session's graph (§4.7). For the
// persistent backend this is a linear scan; for the in-memory backend it
// is a structural clone by way of the same read path.
func (s *Session) ExportGraphSnapshot() (canonical.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() (canonical.Graph, error) {
	nodes, err := s.store.Nodes()
	if err != nil {
		return canonical.Graph{}, err
	}
	edges, err := s.store.Edges()
	if err != nil {
		return canonical.Graph{}, err
	}

	var nextID kremis.NodeId
	for _, n := range nodes {
		if n.ID >= nextID {
			nextID = n.ID + 1
		}
	}

	var props []canonical.PropertyRecord
	for _, n := range nodes {
		nodeProps, err := s.store.GetProperties(n.ID)
		if err != nil {
			return canonical.Graph{}, err
		}
		for _, p := range nodeProps {
			props = append(props, canonical.PropertyRecord{Node: n.ID, Attribute: p.Attribute, Value: p.Value})
		}
	}

	return canonical.Graph{
		Nodes:      nodes,
		Edges:      edges,
		NextNodeID: nextID,
		Properties: props,
	}, nil
}

// Export returns the §4.6 canonical byte stream for the session's current
// graph.
func (s *Session) Export() ([]byte, error) {
	g, err := s.ExportGraphSnapshot()
	if err != nil {
		return nil, err
	}
	return canonical.Export(g), nil
}

// Hash returns the BLAKE3 cryptographic hash of the session's canonical
// export.
func (s *Session) Hash() (string, error) {
	stream, err := s.Export()
	if err != nil {
		return "", err
	}
	return canonical.CryptoHash(stream), nil
}

// Import loads g into the session's backend by inserting every node, then
// every edge, then every property (graphstore.Load). It does not clear the
// existing graph first, so importing into a non-empty session layers g's
// edges and properties on top of whatever is already there. This is the
// counterpart to Export/ExportGraphSnapshot used for cross-backend
// migration: export one session, decode the stream with canonical.Import,
// and Import the result into a session opened against a different backend.
func (s *Session) Import(g canonical.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := graphstore.Load(s.store, g); err != nil {
		return err
	}
	s.refreshSizeLocked()
	return nil
}

// ImportBytes decodes a §4.6 canonical byte stream and loads it into the
// session, combining canonical.Import and Import.
func (s *Session) ImportBytes(stream []byte) error {
	g, err := canonical.Import(stream)
	if err != nil {
		return err
	}
	return s.Import(g)
}

// Clone returns a structurally independent copy of the session. Clone is
// only meaningful for the in-memory backend; ok is false for a persistent
// session, matching §4.7's "try_clone returns nothing for persistent
// sessions" (a Badger handle cannot be safely duplicated this way).
func (s *Session) Clone() (clone *Session, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mem, isMemory := s.store.(*memstore.Store)
	if !isMemory {
		return nil, false
	}

	cloned := newSession(mem.Clone())
	for id := range s.active {
		cloned.active[id] = struct{}{}
	}
	return cloned, true
}

func (s *Session) refreshSizeLocked() {
	nodes, err := s.store.NodeCount()
	if err != nil {
		return
	}
	edges, err := s.store.EdgeCount()
	if err != nil {
		return
	}
	s.metrics.setSizes(nodes, edges)
}
