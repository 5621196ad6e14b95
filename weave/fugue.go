package weave

import (
	"iter"

	"github.com/brunokim/listcrdt/crdt"
	"github.com/brunokim/listcrdt/sim"
)

// Fugue is a replica integrating operations with the Fugue algorithm.
// Op.Left and Op.Right are the left and right origins.
type Fugue struct {
	*Container
}

var (
	_ crdt.Fugue[Op, OpID]    = (*Fugue)(nil)
	_ sim.Replica[Op, Delete] = (*Fugue)(nil)
)

// NewFugue returns an empty Fugue replica.
func NewFugue(client int) *Fugue {
	return &Fugue{NewContainer(client)}
}

// Iter yields operations strictly between from and to.
func (f *Fugue) Iter(from, to OpID) iter.Seq2[int, Op] {
	return f.scan(from, to, exclusive)
}

func (f *Fugue) LeftOrigin(op Op) OpID  { return op.Left }
func (f *Fugue) RightOrigin(op Op) OpID { return op.Right }

// ComparePos compares the positions of a and b in the weave. The zero ID is after
// everything else.
//
// Time complexity: O(n)
func (f *Fugue) ComparePos(a, b OpID) int {
	switch {
	case a == b:
		return 0
	case a.IsZero():
		return +1
	case b.IsZero():
		return -1
	}
	for _, op := range f.Weave {
		switch op.ID {
		case a:
			return -1
		case b:
			return +1
		}
	}
	crdt.Bugf("fugue", "neither %v nor %v found in %v", a, b, f.Container)
	return 0
}

// Integrate inserts a causally ready operation.
func (f *Fugue) Integrate(op Op) {
	f.integrate(op, func() {
		crdt.IntegrateFugue[Op, OpID](f, op)
	})
}
