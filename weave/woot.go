package weave

import (
	"iter"

	"github.com/brunokim/listcrdt/crdt"
	"github.com/brunokim/listcrdt/sim"
)

// Woot is a replica integrating operations with the WOOT algorithm.
// Op.Left and Op.Right are the neighbours of the insertion point.
type Woot struct {
	*Container
}

var (
	_ crdt.Woot[Op, OpID]     = (*Woot)(nil)
	_ sim.Replica[Op, Delete] = (*Woot)(nil)
)

// NewWoot returns an empty WOOT replica.
func NewWoot(client int) *Woot {
	return &Woot{NewContainer(client)}
}

// Iter yields operations from from to to, including both.
func (w *Woot) Iter(from, to OpID) iter.Seq2[int, Op] {
	return w.scan(from, to, inclusive)
}

func (w *Woot) Left(op Op) OpID  { return op.Left }
func (w *Woot) Right(op Op) OpID { return op.Right }

// Integrate inserts a causally ready operation.
func (w *Woot) Integrate(op Op) {
	w.integrate(op, func() {
		crdt.IntegrateWoot[Op, OpID](w, op)
	})
}
