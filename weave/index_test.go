package weave

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexFollowsWeave(t *testing.T) {
	y := NewYATA(1)
	for pos := range 20 {
		y.Integrate(y.NewOp(pos / 2))
	}
	require.Equal(t, len(y.Weave), y.index.len())
	for _, op := range y.Weave {
		e, ok := y.index.get(op.ID)
		require.True(t, ok, "%v not indexed", op.ID)
		require.Equal(t, entry{id: op.ID, left: op.Left, right: op.Right}, e)
	}
	_, ok := y.index.get(OpID{Client: 0, Clock: 1})
	require.False(t, ok)
	require.True(t, y.Has(OpID{}))
}

func TestMod(t *testing.T) {
	require.Equal(t, 2, mod(7, 5))
	require.Equal(t, 4, mod(-1, 5))
	require.Equal(t, 0, mod(0, 1))
}
