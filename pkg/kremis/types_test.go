package kremis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeWeight_SaturatingIncrementCapsAtMaxInt64(t *testing.T) {
	w := EdgeWeight(math.MaxInt64)
	assert.Equal(t, EdgeWeight(math.MaxInt64), w.SaturatingIncrement())
}

func TestEdgeWeight_SaturatingIncrementIsMonotone(t *testing.T) {
	w := EdgeWeight(0)
	for i := 0; i < 5; i++ {
		next := w.SaturatingIncrement()
		assert.GreaterOrEqual(t, int64(next), int64(w))
		w = next
	}
	assert.Equal(t, EdgeWeight(5), w)
}

func TestEdgeWeight_SaturatingDecrementFloorsAtZero(t *testing.T) {
	w := EdgeWeight(0)
	assert.Equal(t, EdgeWeight(0), w.SaturatingDecrement())
}

func TestEdgeWeight_SaturatingDecrementIsMonotone(t *testing.T) {
	w := EdgeWeight(3)
	for i := 0; i < 5; i++ {
		next := w.SaturatingDecrement()
		assert.LessOrEqual(t, int64(next), int64(w))
		w = next
	}
	assert.Equal(t, EdgeWeight(0), w)
}

func TestIsStableEdge(t *testing.T) {
	assert.False(t, IsStableEdge(EdgeWeight(PromotionThreshold-1)))
	assert.True(t, IsStableEdge(EdgeWeight(PromotionThreshold)))
	assert.True(t, IsStableEdge(EdgeWeight(PromotionThreshold+1)))
}
