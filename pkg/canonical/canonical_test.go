package canonical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyKolt/kremis/pkg/canonical"
	"github.com/TyKolt/kremis/pkg/kremis"
)

func sampleGraph() canonical.Graph {
	return canonical.Graph{
		Nodes: []kremis.Node{
			{ID: 0, Entity: 100},
			{ID: 1, Entity: 200},
			{ID: 2, Entity: 300},
		},
		Edges: []kremis.Edge{
			{From: 0, To: 1, Weight: 5},
			{From: 1, To: 2, Weight: 9},
		},
		NextNodeID: 3,
		Properties: []canonical.PropertyRecord{
			{Node: 0, Attribute: "color", Value: "blue"},
			{Node: 1, Attribute: "size", Value: "large"},
		},
	}
}

func TestExportImport_RoundTripIsBitExact(t *testing.T) {
	g := sampleGraph()
	stream1 := canonical.Export(g)

	imported, err := canonical.Import(stream1)
	require.NoError(t, err)

	stream2 := canonical.Export(imported)
	assert.Equal(t, stream1, stream2)
}

func TestExport_EqualGraphsProduceEqualStreams(t *testing.T) {
	g1 := sampleGraph()
	g2 := sampleGraph()
	assert.Equal(t, canonical.Export(g1), canonical.Export(g2))
}

func TestExport_DifferingGraphsProduceDifferingStreams(t *testing.T) {
	g1 := sampleGraph()
	g2 := sampleGraph()
	g2.Edges[0].Weight = 999
	assert.NotEqual(t, canonical.Export(g1), canonical.Export(g2))
}

func TestHash_IsDeterministicAcrossIndependentRuns(t *testing.T) {
	g := sampleGraph()
	h1 := canonical.Hash(g)
	h2 := canonical.Hash(g)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestImport_RejectsBadMagic(t *testing.T) {
	stream := canonical.Export(sampleGraph())
	corrupted := append([]byte(nil), stream...)
	corrupted[4] = 'X' // first byte of the header, inside the magic field

	_, err := canonical.Import(corrupted)
	var serErr *kremis.SerializationError
	assert.ErrorAs(t, err, &serErr)
}

func TestImport_RejectsSingleBitFlipAfterHeaderLength(t *testing.T) {
	stream := canonical.Export(sampleGraph())
	corrupted := append([]byte(nil), stream...)
	// Flip a bit well inside the body, past the 4-byte header-length prefix.
	corrupted[len(corrupted)-1] ^= 0x01

	_, err := canonical.Import(corrupted)
	assert.Error(t, err)
}

func TestImport_RejectsOversizedNodeCount(t *testing.T) {
	g := sampleGraph()
	stream := canonical.Export(g)
	// Header layout: 4-byte length prefix, then magic(4) version(1)
	// node_count(8) edge_count(8) checksum(8) — node_count starts at byte 9.
	corrupted := append([]byte(nil), stream...)
	for i := 9; i < 17; i++ {
		corrupted[i] = 0xFF
	}

	_, err := canonical.Import(corrupted)
	var serErr *kremis.SerializationError
	assert.ErrorAs(t, err, &serErr)
}

func TestImport_RejectsTruncatedStream(t *testing.T) {
	stream := canonical.Export(sampleGraph())
	_, err := canonical.Import(stream[:len(stream)-3])
	assert.Error(t, err)
}

func TestChecksum_IsOrderIndependentOverInputSlice(t *testing.T) {
	g1 := sampleGraph()
	g2 := sampleGraph()
	g2.Nodes[0], g2.Nodes[2] = g2.Nodes[2], g2.Nodes[0]
	g2.Edges[0], g2.Edges[1] = g2.Edges[1], g2.Edges[0]

	assert.Equal(t, canonical.Checksum(g1), canonical.Checksum(g2))
}
