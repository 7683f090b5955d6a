package badgerstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyKolt/kremis/pkg/graphstore/badgerstore"
	"github.com/TyKolt/kremis/pkg/kremis"
)

func openTestStore(t *testing.T) *badgerstore.Store {
	t.Helper()
	s, err := badgerstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_InsertNodeIsIdempotentInNodeId(t *testing.T) {
	s := openTestStore(t)
	a, err := s.InsertNode(kremis.EntityId(1))
	require.NoError(t, err)
	b, err := s.InsertNode(kremis.EntityId(1))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStore_InsertEdgeIsNoOpOnDanglingEndpoint(t *testing.T) {
	s := openTestStore(t)
	a, _ := s.InsertNode(kremis.EntityId(1))
	require.NoError(t, s.InsertEdge(a, kremis.NodeId(777), 5))

	count, err := s.EdgeCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_IncrementThenDecrementRoundTrip(t *testing.T) {
	s := openTestStore(t)
	a, _ := s.InsertNode(kremis.EntityId(1))
	b, _ := s.InsertNode(kremis.EntityId(2))

	require.NoError(t, s.IncrementEdge(a, b))
	require.NoError(t, s.IncrementEdge(a, b))
	w, ok, err := s.GetEdge(a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kremis.EdgeWeight(2), w)

	require.NoError(t, s.DecrementEdge(a, b))
	w, _, _ = s.GetEdge(a, b)
	assert.Equal(t, kremis.EdgeWeight(1), w)
}

func TestStore_PropertiesSurviveCloseAndReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := badgerstore.Open(dir)
	require.NoError(t, err)

	n, err := s.InsertNode(kremis.EntityId(1))
	require.NoError(t, err)
	require.NoError(t, s.StoreProperty(n, "color", "blue"))
	require.NoError(t, s.Close())

	reopened, err := badgerstore.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	props, err := reopened.GetProperties(n)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, kremis.Value("blue"), props[0].Value)
}

func TestStore_RecoversNextNodeIdAndEntityIndexAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := badgerstore.Open(dir)
	require.NoError(t, err)
	a, err := s.InsertNode(kremis.EntityId(5))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := badgerstore.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	id, ok, err := reopened.GetNodeByEntity(kremis.EntityId(5))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a, id)

	b, err := reopened.InsertNode(kremis.EntityId(6))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_IngestBatchWritesNodesAndAdjacentEdges(t *testing.T) {
	s := openTestStore(t)
	signals := []kremis.Signal{
		{Entity: 1, Attribute: "a", Value: "1"},
		{Entity: 2, Attribute: "a", Value: "2"},
		{Entity: 3, Attribute: "a", Value: "3"},
	}
	ids, err := s.IngestBatch(signals)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	count, err := s.NodeCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	w, ok, err := s.GetEdge(ids[0], ids[1])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kremis.EdgeWeight(1), w)
}
