package graphstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyKolt/kremis/pkg/canonical"
	"github.com/TyKolt/kremis/pkg/graphstore"
	"github.com/TyKolt/kremis/pkg/graphstore/badgerstore"
	"github.com/TyKolt/kremis/pkg/graphstore/memstore"
	"github.com/TyKolt/kremis/pkg/kremis"
)

func sampleSnapshot() canonical.Graph {
	return canonical.Graph{
		Nodes: []kremis.Node{
			{ID: 0, Entity: 10},
			{ID: 1, Entity: 20},
			{ID: 2, Entity: 30},
		},
		Edges: []kremis.Edge{
			{From: 0, To: 1, Weight: 4},
			{From: 1, To: 2, Weight: 7},
		},
		NextNodeID: 3,
		Properties: []canonical.PropertyRecord{
			{Node: 0, Attribute: "color", Value: "red"},
			{Node: 1, Attribute: "color", Value: "blue"},
		},
	}
}

func TestLoad_ReproducesNodeIdsAndEdgesIntoEmptyStore(t *testing.T) {
	s := memstore.New()
	require.NoError(t, graphstore.Load(s, sampleSnapshot()))

	nodes, err := s.Nodes()
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, kremis.EntityId(10), nodes[0].Entity)

	w, ok, err := s.GetEdge(0, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kremis.EdgeWeight(4), w)

	props, err := s.GetProperties(1)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, kremis.Value("blue"), props[0].Value)
}

func TestLoad_MigratesSnapshotAcrossBackends(t *testing.T) {
	mem := memstore.New()
	require.NoError(t, graphstore.Load(mem, sampleSnapshot()))

	badger, err := badgerstore.OpenInMemory()
	require.NoError(t, err)
	defer badger.Close()
	require.NoError(t, graphstore.Load(badger, sampleSnapshot()))

	memNodes, err := mem.Nodes()
	require.NoError(t, err)
	badgerNodes, err := badger.Nodes()
	require.NoError(t, err)
	assert.Equal(t, memNodes, badgerNodes)

	memEdges, err := mem.Edges()
	require.NoError(t, err)
	badgerEdges, err := badger.Edges()
	require.NoError(t, err)
	assert.Equal(t, memEdges, badgerEdges)
}

func TestLoad_SkipsEdgeWithDanglingEndpointSilently(t *testing.T) {
	s := memstore.New()
	g := canonical.Graph{
		Nodes: []kremis.Node{{ID: 0, Entity: 1}},
		Edges: []kremis.Edge{{From: 0, To: 99, Weight: 1}},
	}
	require.NoError(t, graphstore.Load(s, g))

	_, ok, err := s.GetEdge(0, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}
