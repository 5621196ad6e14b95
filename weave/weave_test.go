package weave_test

import (
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brunokim/listcrdt/sim"
	"github.com/brunokim/listcrdt/weave"
)

func ids(ops []weave.Op) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.ID.String()
	}
	return strings.Join(parts, " ")
}

func collect(seq iter.Seq2[int, weave.Op]) string {
	var parts []string
	for _, op := range seq {
		parts = append(parts, op.ID.String())
	}
	return strings.Join(parts, " ")
}

// Inserts local operations at each visible position.
func insertAt(r sim.Replica[weave.Op, weave.Delete], positions ...int) {
	for _, pos := range positions {
		r.Integrate(r.NewOp(pos))
	}
}

func id(client, clock int) weave.OpID {
	return weave.OpID{Client: client, Clock: clock}
}

func TestOpIDCompare(t *testing.T) {
	tests := []struct {
		a, b weave.OpID
		want int
	}{
		{id(0, 1), id(0, 1), 0},
		{id(0, 1), id(0, 2), -1},
		{id(0, 2), id(0, 1), +1},
		{id(0, 9), id(1, 1), -1},
		{id(2, 1), id(1, 9), +1},
	}
	for _, test := range tests {
		require.Equal(t, test.want, test.a.Compare(test.b), "%v.Compare(%v)", test.a, test.b)
	}
	require.True(t, weave.OpID{}.IsZero())
	require.False(t, id(0, 1).IsZero())
}

func TestVersionVector(t *testing.T) {
	y := weave.NewYATA(2)
	require.Equal(t, 1, y.Version.Next(0))
	require.Equal(t, 1, y.Version.Next(2))

	insertAt(y, 0, 1)
	require.Equal(t, weave.VersionVector{0, 0, 2}, y.Version)
	require.Equal(t, 3, y.Version.Next(2))
	require.Equal(t, 1, y.Version.Next(7))
}

func TestNewOpNeighbours(t *testing.T) {
	y := weave.NewYATA(0)
	insertAt(y, 0, 1, 2)
	require.Equal(t, "#0[0.1 0.2 0.3]", y.String())

	op := y.NewOp(1)
	require.Equal(t, weave.Op{ID: id(0, 4), Left: id(0, 1), Right: id(0, 2)}, op)

	// Position is taken modulo the visible length plus one.
	op = y.NewOp(4 + 3)
	require.Equal(t, weave.Op{ID: id(0, 4), Left: id(0, 3)}, op)
	op = y.NewOp(-1)
	require.Equal(t, weave.Op{ID: id(0, 4), Left: id(0, 3)}, op)

	// Tombstones are kept as neighbours.
	d, ok := y.NewDelete(1, 1)
	require.True(t, ok)
	y.Tombstone(d)
	require.Equal(t, "#0[0.1 x0.2 0.3]", y.String())
	op = y.NewOp(1)
	require.Equal(t, weave.Op{ID: id(0, 4), Left: id(0, 2), Right: id(0, 3)}, op)
	op = y.NewOp(2)
	require.Equal(t, weave.Op{ID: id(0, 4), Left: id(0, 3)}, op)
}

func TestNewDelete(t *testing.T) {
	y := weave.NewYATA(0)
	_, ok := y.NewDelete(0, 1)
	require.False(t, ok, "empty list")

	insertAt(y, 0, 1, 2, 3)
	_, ok = y.NewDelete(0, 0)
	require.False(t, ok, "zero length")

	d, ok := y.NewDelete(2, 10)
	require.True(t, ok)
	require.Equal(t, []weave.OpID{id(0, 3), id(0, 4)}, d.Targets, "clamped to visible length")

	d, ok = y.NewDelete(5, 1)
	require.True(t, ok)
	require.Equal(t, []weave.OpID{id(0, 2)}, d.Targets, "position taken modulo visible length")

	y.Tombstone(d)
	y.Tombstone(d)
	require.Equal(t, "0.1 0.3 0.4", ids(y.Visible()))

	d, ok = y.NewDelete(1, 2)
	require.True(t, ok)
	require.Equal(t, []weave.OpID{id(0, 3), id(0, 4)}, d.Targets, "tombstones are skipped")
}

func TestCanIntegrate(t *testing.T) {
	src := weave.NewWoot(0)
	insertAt(src, 0, 1)
	op1, op2 := src.Weave[0], src.Weave[1]

	dst := weave.NewWoot(1)
	require.False(t, dst.CanIntegrate(op2), "missing predecessor")
	require.True(t, dst.CanIntegrate(op1))
	dst.Integrate(op1)
	require.True(t, dst.CanIntegrate(op2))

	// An operation from another client, referencing an unknown neighbour.
	other := weave.Op{ID: id(2, 1), Left: id(3, 1)}
	require.False(t, dst.CanIntegrate(other))

	require.False(t, dst.CanDelete(weave.Delete{Targets: []weave.OpID{id(0, 1), id(0, 2)}}))
	require.True(t, dst.CanDelete(weave.Delete{Targets: []weave.OpID{id(0, 1)}}))
}

func TestIntegrateOutOfOrderPanics(t *testing.T) {
	src := weave.NewYATA(0)
	insertAt(src, 0, 1)

	dst := weave.NewYATA(1)
	err := catchInvariant(func() { dst.Integrate(src.Weave[1]) })
	require.ErrorContains(t, err, "out of order")

	dst.Integrate(src.Weave[0])
	err = catchInvariant(func() { dst.Integrate(src.Weave[0]) })
	require.ErrorContains(t, err, "out of order")
}

func TestScanBounds(t *testing.T) {
	c := weave.NewContainer(0)
	y := &weave.YATA{Container: c}
	insertAt(y, 0, 1, 2, 3, 4)
	require.Equal(t, "#0[0.1 0.2 0.3 0.4 0.5]", c.String())

	w := &weave.Woot{Container: c}
	r := &weave.RGA{Container: c}
	f := &weave.Fugue{Container: c}
	var none weave.OpID
	tests := []struct {
		desc     string
		seq      iter.Seq2[int, weave.Op]
		wantSeq  string
		wantPos0 int
	}{
		{"woot inclusive", w.Iter(id(0, 2), id(0, 4)), "0.2 0.3 0.4", 1},
		{"woot open start", w.Iter(none, id(0, 2)), "0.1 0.2", 0},
		{"woot open end", w.Iter(id(0, 4), none), "0.4 0.5", 3},
		{"woot all", w.Iter(none, none), "0.1 0.2 0.3 0.4 0.5", 0},
		{"rga from origin", r.Iter(id(0, 3), none), "0.3 0.4 0.5", 2},
		{"rga from start", r.Iter(none, none), "0.1 0.2 0.3 0.4 0.5", 0},
		{"yata exclusive", y.Iter(id(0, 2), id(0, 5)), "0.3 0.4", 2},
		{"yata adjacent", y.Iter(id(0, 2), id(0, 3)), "", -1},
		{"yata open start", y.Iter(none, id(0, 3)), "0.1 0.2", 0},
		{"fugue open end", f.Iter(id(0, 3), none), "0.4 0.5", 3},
	}
	for _, test := range tests {
		require.Equal(t, test.wantSeq, collect(test.seq), test.desc)
		pos0 := -1
		for pos := range test.seq {
			pos0 = pos
			break
		}
		require.Equal(t, test.wantPos0, pos0, test.desc)
	}

	err := catchInvariant(func() { r.Iter(none, id(0, 2)) })
	require.ErrorContains(t, err, "scan bounded")
}

func TestFugueComparePos(t *testing.T) {
	f := weave.NewFugue(0)
	insertAt(f, 0, 1, 2)
	var none weave.OpID

	require.Equal(t, 0, f.ComparePos(none, none))
	require.Equal(t, 0, f.ComparePos(id(0, 2), id(0, 2)))
	require.Equal(t, +1, f.ComparePos(none, id(0, 1)))
	require.Equal(t, -1, f.ComparePos(id(0, 3), none))
	require.Equal(t, -1, f.ComparePos(id(0, 1), id(0, 3)))
	require.Equal(t, +1, f.ComparePos(id(0, 3), id(0, 2)))

	err := catchInvariant(func() { f.ComparePos(id(5, 1), id(6, 1)) })
	require.ErrorContains(t, err, "neither")

	require.Equal(t, id(0, 1), f.LeftOriginOf(id(0, 2)))
	require.Equal(t, none, f.LeftOriginOf(id(0, 1)))
	err = catchInvariant(func() { f.LeftOriginOf(id(5, 1)) })
	require.ErrorContains(t, err, "left origin")
}

func TestFactory(t *testing.T) {
	for _, name := range weave.Algorithms {
		f, err := weave.Factory(name)
		require.NoError(t, err)
		r := f(3)
		insertAt(r, 0)
		require.Equal(t, "3.1", ids(r.Visible()))
	}
	_, err := weave.Factory("logoot")
	require.ErrorIs(t, err, weave.ErrUnknownAlgorithm)
}
