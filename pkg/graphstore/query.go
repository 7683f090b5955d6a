package graphstore

import (
	"math"
	"sort"

	"github.com/TyKolt/kremis/pkg/kremis"
)

// These functions implement the bounded query engine (§4.5) once, against
// the Store contract's primitive operations (ContainsNode, Neighbors,
// Nodes). Both backends delegate their Traverse/TraverseFiltered/
// TraverseDFS/Intersect/StrongestPath methods to these, so the algorithms
// exist in exactly one place regardless of which backend is in play.

func clampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > kremis.MaxTraversalDepth {
		return kremis.MaxTraversalDepth
	}
	return depth
}

// BFS implements Traverse/TraverseFiltered. A nil minWeight means no
// filtering.
func BFS(s Store, start kremis.NodeId, depth int, minWeight *kremis.EdgeWeight) (kremis.Artifact, bool, error) {
	exists, err := s.ContainsNode(start)
	if err != nil {
		return kremis.Artifact{}, false, err
	}
	if !exists {
		return kremis.Artifact{}, false, nil
	}
	depth = clampDepth(depth)

	type frontierEntry struct {
		node kremis.NodeId
		d    int
	}

	visited := map[kremis.NodeId]bool{start: true}
	path := []kremis.NodeId{start}
	var subgraph []kremis.Edge
	queue := []frontierEntry{{start, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.d >= depth {
			continue
		}
		neighbors, err := s.Neighbors(cur.node)
		if err != nil {
			return kremis.Artifact{}, false, err
		}
		for _, n := range neighbors {
			if minWeight != nil && n.Weight < *minWeight {
				continue
			}
			subgraph = append(subgraph, kremis.Edge{From: cur.node, To: n.To, Weight: n.Weight})
			if !visited[n.To] {
				visited[n.To] = true
				path = append(path, n.To)
				queue = append(queue, frontierEntry{n.To, cur.d + 1})
			}
		}
	}

	return kremis.Artifact{Path: path, Subgraph: subgraph}, true, nil
}

// DFS implements TraverseDFS: recursive, deterministic by visiting
// neighbors in ascending NodeId order (guaranteed by Store.Neighbors).
// The depth cap is checked pre-order: a branch whose depth exceeds depth
// is never visited at all.
func DFS(s Store, start kremis.NodeId, depth int) (kremis.Artifact, bool, error) {
	exists, err := s.ContainsNode(start)
	if err != nil {
		return kremis.Artifact{}, false, err
	}
	if !exists {
		return kremis.Artifact{}, false, nil
	}
	depth = clampDepth(depth)

	visited := map[kremis.NodeId]bool{}
	var path []kremis.NodeId
	var subgraph []kremis.Edge
	var visitErr error

	var visit func(node kremis.NodeId, d int)
	visit = func(node kremis.NodeId, d int) {
		if visitErr != nil || d > depth || visited[node] {
			return
		}
		visited[node] = true
		path = append(path, node)
		neighbors, err := s.Neighbors(node)
		if err != nil {
			visitErr = err
			return
		}
		for _, n := range neighbors {
			subgraph = append(subgraph, kremis.Edge{From: node, To: n.To, Weight: n.Weight})
			visit(n.To, d+1)
		}
	}
	visit(start, 0)
	if visitErr != nil {
		return kremis.Artifact{}, false, visitErr
	}
	return kremis.Artifact{Path: path, Subgraph: subgraph}, true, nil
}

// Intersect returns the common out-neighbors across every input node,
// ascending by NodeId. Empty input returns an empty, non-nil slice. Input
// beyond MaxIntersectNodes is clamped, matching the bounded-fan-in
// guarantee in §5.
func Intersect(s Store, nodes []kremis.NodeId) ([]kremis.NodeId, error) {
	if len(nodes) == 0 {
		return []kremis.NodeId{}, nil
	}
	if len(nodes) > kremis.MaxIntersectNodes {
		nodes = nodes[:kremis.MaxIntersectNodes]
	}

	first, err := s.Neighbors(nodes[0])
	if err != nil {
		return nil, err
	}
	set := make(map[kremis.NodeId]bool, len(first))
	for _, n := range first {
		set[n.To] = true
	}

	for _, node := range nodes[1:] {
		if len(set) == 0 {
			break
		}
		neighbors, err := s.Neighbors(node)
		if err != nil {
			return nil, err
		}
		next := make(map[kremis.NodeId]bool, len(neighbors))
		for _, n := range neighbors {
			next[n.To] = true
		}
		for k := range set {
			if !next[k] {
				delete(set, k)
			}
		}
	}

	result := make([]kremis.NodeId, 0, len(set))
	for k := range set {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

// invertedCostInfinity is the saturation ceiling for summed costs. A node
// that has not been reached yet has no entry in the distance table at all,
// so a path whose summed cost saturates is still a path.
const invertedCostInfinity = int64(math.MaxInt64)

// invertedCost maps a weight to a Dijkstra edge cost: higher weight maps
// to lower cost, so the shortest path under this cost is the strongest
// (highest-weight-preferring) path. Negative weights are clamped to 0.
// This exact arithmetic (not a clean bottleneck or max-sum formulation)
// is preserved from the source implementation per §9's open question.
func invertedCost(w kremis.EdgeWeight) int64 {
	v := int64(w)
	if v < 0 {
		v = 0
	}
	return invertedCostInfinity - v
}

func saturatingAddCost(a, b int64) int64 {
	if a > invertedCostInfinity-b {
		return invertedCostInfinity
	}
	return a + b
}

// StrongestPath runs Dijkstra over invertedCost from start to end. Summed
// costs saturate at invertedCostInfinity, so unless edge weights are near
// math.MaxInt64 every path of two or more hops costs the same and a direct
// edge always costs less; a node keeps the first predecessor that reached
// it at its lowest cost. A simple O(V^2) scan of the distance table
// selects the next node each round; ties resolve to the lowest NodeId
// because the scan walks Nodes() in ascending order, keeping the result
// deterministic without a priority queue.
func StrongestPath(s Store, start, end kremis.NodeId) ([]kremis.NodeId, bool, error) {
	startExists, err := s.ContainsNode(start)
	if err != nil {
		return nil, false, err
	}
	endExists, err := s.ContainsNode(end)
	if err != nil {
		return nil, false, err
	}
	if !startExists || !endExists {
		return nil, false, nil
	}
	if start == end {
		return []kremis.NodeId{start}, true, nil
	}

	nodes, err := s.Nodes()
	if err != nil {
		return nil, false, err
	}

	dist := make(map[kremis.NodeId]int64, len(nodes))
	prev := make(map[kremis.NodeId]kremis.NodeId, len(nodes))
	visited := make(map[kremis.NodeId]bool, len(nodes))
	dist[start] = 0

	for {
		var u kremis.NodeId
		found := false
		var best int64
		for _, n := range nodes {
			if visited[n.ID] {
				continue
			}
			d, reached := dist[n.ID]
			if reached && (!found || d < best) {
				best = d
				u = n.ID
				found = true
			}
		}
		if !found {
			break
		}
		visited[u] = true
		if u == end {
			break
		}
		neighbors, err := s.Neighbors(u)
		if err != nil {
			return nil, false, err
		}
		for _, nb := range neighbors {
			if visited[nb.To] {
				continue
			}
			nd := saturatingAddCost(dist[u], invertedCost(nb.Weight))
			if cur, reached := dist[nb.To]; !reached || nd < cur {
				dist[nb.To] = nd
				prev[nb.To] = u
			}
		}
	}

	if !visited[end] {
		return nil, false, nil
	}

	path := []kremis.NodeId{end}
	cur := end
	for cur != start {
		p, ok := prev[cur]
		if !ok {
			return nil, false, nil
		}
		path = append(path, p)
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true, nil
}
