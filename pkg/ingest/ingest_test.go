package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyKolt/kremis/pkg/graphstore/memstore"
	"github.com/TyKolt/kremis/pkg/ingest"
	"github.com/TyKolt/kremis/pkg/kremis"
)

func TestValidate_RejectsOutOfBoundsAttributeAndValue(t *testing.T) {
	cases := []struct {
		name   string
		signal kremis.Signal
	}{
		{"empty attribute", kremis.Signal{Entity: 1, Attribute: "", Value: "v"}},
		{"empty value", kremis.Signal{Entity: 1, Attribute: "a", Value: ""}},
		{"attribute too long", kremis.Signal{Entity: 1, Attribute: kremis.Attribute(strings.Repeat("a", kremis.MaxAttributeLength+1)), Value: "v"}},
		{"value too long", kremis.Signal{Entity: 1, Attribute: "a", Value: kremis.Value(strings.Repeat("v", kremis.MaxValueLength+1))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, ingest.Validate(tc.signal), kremis.ErrInvalidSignal)
		})
	}
}

func TestValidate_AcceptsBoundaryLengths(t *testing.T) {
	signal := kremis.Signal{
		Entity:    1,
		Attribute: kremis.Attribute(strings.Repeat("a", kremis.MaxAttributeLength)),
		Value:     kremis.Value(strings.Repeat("v", kremis.MaxValueLength)),
	}
	assert.NoError(t, ingest.Validate(signal))
}

func TestSignal_GetOrCreatesNodeAndAppendsProperty(t *testing.T) {
	s := memstore.New()
	id, err := ingest.Signal(s, kremis.Signal{Entity: 1, Attribute: "color", Value: "blue"})
	require.NoError(t, err)

	props, err := s.GetProperties(id)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, kremis.Value("blue"), props[0].Value)
}

func TestSequence_RejectsWithNoPartialEffectOnInvalidSignal(t *testing.T) {
	s := memstore.New()
	signals := []kremis.Signal{
		{Entity: 1, Attribute: "a", Value: "v"},
		{Entity: 2, Attribute: "", Value: "v"}, // invalid
	}
	_, err := ingest.Sequence(s, signals)
	assert.ErrorIs(t, err, kremis.ErrInvalidSignal)

	count, err := s.NodeCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSequence_IncrementsAdjacentEdgesWithinAssociationWindow(t *testing.T) {
	s := memstore.New()
	signals := []kremis.Signal{
		{Entity: 1, Attribute: "a", Value: "1"},
		{Entity: 2, Attribute: "a", Value: "2"},
		{Entity: 3, Attribute: "a", Value: "3"},
	}
	ids, err := ingest.Sequence(s, signals)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	w, ok, err := s.GetEdge(ids[0], ids[1])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kremis.EdgeWeight(1), w)

	_, ok, err = s.GetEdge(ids[0], ids[2])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSequence_RepeatedPairWeightEqualsRepetitionCount(t *testing.T) {
	s := memstore.New()
	signals := []kremis.Signal{
		{Entity: 1, Attribute: "a", Value: "1"},
		{Entity: 2, Attribute: "a", Value: "2"},
		{Entity: 1, Attribute: "a", Value: "3"},
		{Entity: 2, Attribute: "a", Value: "4"},
		{Entity: 1, Attribute: "a", Value: "5"},
		{Entity: 2, Attribute: "a", Value: "6"},
	}
	ids, err := ingest.Sequence(s, signals)
	require.NoError(t, err)

	nodeA, _, _ := s.GetNodeByEntity(1)
	nodeB, _, _ := s.GetNodeByEntity(2)
	assert.Equal(t, ids[0], nodeA)
	assert.Equal(t, ids[1], nodeB)

	w, ok, err := s.GetEdge(nodeA, nodeB)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kremis.EdgeWeight(3), w)
}

func TestSequence_RejectsOverMaxLength(t *testing.T) {
	s := memstore.New()
	signals := make([]kremis.Signal, kremis.MaxSequenceLength+1)
	for i := range signals {
		signals[i] = kremis.Signal{Entity: kremis.EntityId(i), Attribute: "a", Value: "v"}
	}
	_, err := ingest.Sequence(s, signals)
	assert.ErrorIs(t, err, kremis.ErrInvalidSignal)
}

func TestRetract_DecrementsExistingEdgeButNeverRemovesIt(t *testing.T) {
	s := memstore.New()
	a, _ := s.InsertNode(1)
	b, _ := s.InsertNode(2)
	require.NoError(t, s.IncrementEdge(a, b))

	require.NoError(t, ingest.Retract(s, a, b))
	w, ok, err := s.GetEdge(a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, kremis.EdgeWeight(0), w)
}

func TestRetract_MissingEdgeReturnsEdgeNotFoundError(t *testing.T) {
	s := memstore.New()
	a, _ := s.InsertNode(1)
	b, _ := s.InsertNode(2)
	err := ingest.Retract(s, a, b)
	var notFound *kremis.EdgeNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
