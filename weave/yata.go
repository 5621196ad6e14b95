package weave

import (
	"iter"

	"github.com/brunokim/listcrdt/crdt"
	"github.com/brunokim/listcrdt/sim"
)

// YATA is a replica integrating operations with the YATA algorithm, as used by Yjs.
// Op.Left and Op.Right are the left and right origins.
type YATA struct {
	*Container
}

var (
	_ crdt.YATA[Op, OpID]     = (*YATA)(nil)
	_ sim.Replica[Op, Delete] = (*YATA)(nil)
)

// NewYATA returns an empty YATA replica.
func NewYATA(client int) *YATA {
	return &YATA{NewContainer(client)}
}

// Iter yields operations strictly between from and to.
func (y *YATA) Iter(from, to OpID) iter.Seq2[int, Op] {
	return y.scan(from, to, exclusive)
}

func (y *YATA) LeftOrigin(op Op) OpID  { return op.Left }
func (y *YATA) RightOrigin(op Op) OpID { return op.Right }

// Integrate inserts a causally ready operation.
func (y *YATA) Integrate(op Op) {
	y.integrate(op, func() {
		crdt.IntegrateYATA[Op, OpID](y, op)
	})
}
