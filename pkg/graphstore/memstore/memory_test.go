package memstore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyKolt/kremis/pkg/kremis"
)

func TestStore_InsertNodeIsIdempotentInNodeId(t *testing.T) {
	s := New()
	a, err := s.InsertNode(kremis.EntityId(42))
	require.NoError(t, err)
	b, err := s.InsertNode(kremis.EntityId(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	count, err := s.NodeCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_InsertEdgeIsNoOpOnDanglingEndpoint(t *testing.T) {
	s := New()
	a, err := s.InsertNode(kremis.EntityId(1))
	require.NoError(t, err)

	require.NoError(t, s.InsertEdge(a, kremis.NodeId(999), kremis.EdgeWeight(5)))

	count, err := s.EdgeCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, ok, err := s.Lookup(kremis.NodeId(999))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_IncrementEdgeCreatesThenSaturates(t *testing.T) {
	s := New()
	a, _ := s.InsertNode(kremis.EntityId(1))
	b, _ := s.InsertNode(kremis.EntityId(2))

	require.NoError(t, s.IncrementEdge(a, b))
	w, ok, err := s.GetEdge(a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kremis.EdgeWeight(1), w)

	require.NoError(t, s.IncrementEdge(a, b))
	w, _, _ = s.GetEdge(a, b)
	assert.Equal(t, kremis.EdgeWeight(2), w)

	require.NoError(t, s.InsertEdge(a, b, kremis.EdgeWeight(math.MaxInt64)))
	require.NoError(t, s.IncrementEdge(a, b))
	w, _, _ = s.GetEdge(a, b)
	assert.Equal(t, kremis.EdgeWeight(math.MaxInt64), w)
}

func TestStore_DecrementEdgeReturnsEdgeNotFoundError(t *testing.T) {
	s := New()
	a, _ := s.InsertNode(kremis.EntityId(1))
	b, _ := s.InsertNode(kremis.EntityId(2))

	err := s.DecrementEdge(a, b)
	var notFound *kremis.EdgeNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestStore_GetPropertiesOrdersByAttributeThenInsertion(t *testing.T) {
	s := New()
	n, _ := s.InsertNode(kremis.EntityId(1))

	require.NoError(t, s.StoreProperty(n, kremis.Attribute("b"), kremis.Value("b1")))
	require.NoError(t, s.StoreProperty(n, kremis.Attribute("a"), kremis.Value("a1")))
	require.NoError(t, s.StoreProperty(n, kremis.Attribute("a"), kremis.Value("a2")))

	props, err := s.GetProperties(n)
	require.NoError(t, err)
	require.Len(t, props, 3)
	assert.Equal(t, kremis.Attribute("a"), props[0].Attribute)
	assert.Equal(t, kremis.Value("a1"), props[0].Value)
	assert.Equal(t, kremis.Attribute("a"), props[1].Attribute)
	assert.Equal(t, kremis.Value("a2"), props[1].Value)
	assert.Equal(t, kremis.Attribute("b"), props[2].Attribute)
}

func TestStore_NeighborsAscendingByNodeId(t *testing.T) {
	s := New()
	a, _ := s.InsertNode(kremis.EntityId(1))
	b, _ := s.InsertNode(kremis.EntityId(2))
	c, _ := s.InsertNode(kremis.EntityId(3))

	require.NoError(t, s.InsertEdge(a, c, 1))
	require.NoError(t, s.InsertEdge(a, b, 1))

	neighbors, err := s.Neighbors(a)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.Equal(t, b, neighbors[0].To)
	assert.Equal(t, c, neighbors[1].To)
}

func TestStore_CloneIsStructurallyIndependent(t *testing.T) {
	s := New()
	a, _ := s.InsertNode(kremis.EntityId(1))
	b, _ := s.InsertNode(kremis.EntityId(2))
	require.NoError(t, s.InsertEdge(a, b, 7))
	require.NoError(t, s.StoreProperty(a, "attr", "val"))

	clone := s.Clone()
	require.NoError(t, clone.IncrementEdge(a, b))

	originalWeight, _, _ := s.GetEdge(a, b)
	cloneWeight, _, _ := clone.GetEdge(a, b)
	assert.Equal(t, kremis.EdgeWeight(7), originalWeight)
	assert.Equal(t, kremis.EdgeWeight(8), cloneWeight)
}

func TestStore_TraverseFromMissingNodeReportsNotOk(t *testing.T) {
	s := New()
	_, ok, err := s.Traverse(kremis.NodeId(123), 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_StrongestPathTrivialForSameNode(t *testing.T) {
	s := New()
	a, _ := s.InsertNode(kremis.EntityId(1))
	path, ok, err := s.StrongestPath(a, a)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []kremis.NodeId{a}, path)
}
