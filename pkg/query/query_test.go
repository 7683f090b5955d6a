package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyKolt/kremis/pkg/kremis"
	"github.com/TyKolt/kremis/pkg/query"
)

func TestTraverse_BuildsExpectedFields(t *testing.T) {
	q := query.Traverse(kremis.NodeId(5), 3)
	assert.Equal(t, query.KindTraverse, q.Kind)
	assert.Equal(t, kremis.NodeId(5), q.Start)
	assert.Equal(t, 3, q.Depth)
	assert.Nil(t, q.TimeoutMs)
}

func TestWithTimeout_IsAdvisoryAndDoesNotChangeKind(t *testing.T) {
	q := query.StrongestPath(1, 2).WithTimeout(500)
	assert.Equal(t, query.KindStrongestPath, q.Kind)
	require.NotNil(t, q.TimeoutMs)
	assert.Equal(t, uint64(500), *q.TimeoutMs)
}
