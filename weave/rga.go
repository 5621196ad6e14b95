package weave

import (
	"iter"

	"github.com/brunokim/listcrdt/crdt"
	"github.com/brunokim/listcrdt/sim"
)

// RGA is a replica integrating operations with the Replicated Growable Array algorithm.
// Op.Left is the left origin, and Op.Lamport the timestamp used to order siblings.
type RGA struct {
	*Container
}

var (
	_ crdt.RGA[Op, OpID]      = (*RGA)(nil)
	_ sim.Replica[Op, Delete] = (*RGA)(nil)
)

// NewRGA returns an empty RGA replica.
func NewRGA(client int) *RGA {
	return &RGA{NewContainer(client)}
}

// Iter yields operations from from, inclusive, to the end of the weave. to must be zero.
func (r *RGA) Iter(from, to OpID) iter.Seq2[int, Op] {
	if !to.IsZero() {
		crdt.Bugf("rga", "scan bounded by %v", to)
	}
	return r.scan(from, to, inclusive)
}

func (r *RGA) Left(op Op) OpID    { return op.Left }
func (r *RGA) Lamport(op Op) int  { return op.Lamport }
func (r *RGA) Client(id OpID) int { return id.Client }

// NewOp returns an operation at visible position pos, stamped with the next Lamport timestamp.
func (r *RGA) NewOp(pos int) Op {
	op := r.Container.NewOp(pos)
	op.Lamport = r.NextLamport
	return op
}

// Integrate inserts a causally ready operation, and advances the Lamport clock past it.
func (r *RGA) Integrate(op Op) {
	r.NextLamport = max(r.NextLamport, op.Lamport+1)
	r.integrate(op, func() {
		crdt.IntegrateRGA[Op, OpID](r, op)
	})
}
