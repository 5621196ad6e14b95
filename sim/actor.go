package sim

// An actor is a simulated site, holding a replica and the operations it has seen.
type actor[Op comparable, Del any] struct {
	idx     int
	replica Replica[Op, Del]
	// Operations and deletions created by each actor, in creation order, that were received
	// by this actor, including the ones still pending.
	ops  [][]Op
	dels [][]Del

	pending queue[Op, Del]
}

func newActor[Op comparable, Del any](idx, n int, r Replica[Op, Del]) *actor[Op, Del] {
	return &actor[Op, Del]{
		idx:     idx,
		replica: r,
		ops:     make([][]Op, n),
		dels:    make([][]Del, n),
	}
}

// Creates and integrates a local operation.
func (a *actor[Op, Del]) insert(pos int) Op {
	op := a.replica.NewOp(pos)
	a.replica.Integrate(op)
	a.ops[a.idx] = append(a.ops[a.idx], op)
	return op
}

// Creates and applies a local deletion, if there's anything to delete.
func (a *actor[Op, Del]) delete(pos, n int) bool {
	d, ok := a.replica.NewDelete(pos, n)
	if !ok {
		return false
	}
	a.replica.Tombstone(d)
	a.dels[a.idx] = append(a.dels[a.idx], d)
	return true
}

// Receives from other every operation that a has not seen yet. Each operation is sent at most
// once, which is tracked by the length of the per-source logs.
//
// Returns the number of entries received.
func (a *actor[Op, Del]) sync(other *actor[Op, Del]) int {
	var received int
	for src := range a.ops {
		if n := len(a.ops[src]); n < len(other.ops[src]) {
			news := other.ops[src][n:]
			a.ops[src] = append(a.ops[src], news...)
			for _, op := range news {
				a.pending.offerOp(a.replica, op)
			}
			received += len(news)
		}
		if n := len(a.dels[src]); n < len(other.dels[src]) {
			news := other.dels[src][n:]
			a.dels[src] = append(a.dels[src], news...)
			for _, d := range news {
				a.pending.offerDel(a.replica, d)
			}
			received += len(news)
		}
	}
	a.pending.settle(a.replica)
	return received
}

// Snapshot of an actor for diagnostics.
type actorDump[Op comparable, Del any] struct {
	Index       int
	Replica     Replica[Op, Del]
	PendingOps  []Op
	PendingDels []Del
}

func (a *actor[Op, Del]) dump() string {
	return dumper.Sdump(actorDump[Op, Del]{
		Index:       a.idx,
		Replica:     a.replica,
		PendingOps:  a.pending.ops,
		PendingDels: a.pending.dels,
	})
}
