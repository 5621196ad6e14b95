package sim

// Replica is the list state of a single actor, using some integration algorithm.
//
// Op is an insertion and Del a deletion. Op values are compared with go-cmp to check
// convergence, so they should be plain data.
type Replica[Op comparable, Del any] interface {
	// NewOp returns an insertion at the visible position pos. The result must be integrated
	// before creating another operation.
	NewOp(pos int) Op
	// CanIntegrate returns whether all causal dependencies of op are present.
	CanIntegrate(op Op) bool
	// Integrate inserts op. It must only be called when CanIntegrate(op) is true.
	Integrate(op Op)
	// NewDelete returns a deletion of n visible elements starting at position pos, or false
	// if there's nothing to delete.
	NewDelete(pos, n int) (Del, bool)
	// CanDelete returns whether all elements referenced by d are present.
	CanDelete(d Del) bool
	// Tombstone applies d. It must only be called when CanDelete(d) is true.
	Tombstone(d Del)
	// Visible returns the elements that were not deleted, in list order.
	Visible() []Op
}

// Factory creates a replica for the given client index.
type Factory[Op comparable, Del any] func(client int) Replica[Op, Del]

// Queue of operations received but still waiting for their causal dependencies.
type queue[Op comparable, Del any] struct {
	ops  []Op
	dels []Del
}

// Integrates op immediately if it's ready, or enqueues it otherwise.
func (q *queue[Op, Del]) offerOp(r Replica[Op, Del], op Op) {
	if r.CanIntegrate(op) {
		r.Integrate(op)
		return
	}
	q.ops = append(q.ops, op)
}

// Applies d immediately if it's ready, or enqueues it otherwise.
func (q *queue[Op, Del]) offerDel(r Replica[Op, Del], d Del) {
	if r.CanDelete(d) {
		r.Tombstone(d)
		return
	}
	q.dels = append(q.dels, d)
}

// Sweeps the queue in order, removing every entry that became ready, until a sweep makes no
// progress. Returns the number of entries applied.
func (q *queue[Op, Del]) settle(r Replica[Op, Del]) int {
	var total int
	for {
		var n int
		ops := q.ops[:0]
		for _, op := range q.ops {
			if r.CanIntegrate(op) {
				r.Integrate(op)
				n++
			} else {
				ops = append(ops, op)
			}
		}
		q.ops = ops
		dels := q.dels[:0]
		for _, d := range q.dels {
			if r.CanDelete(d) {
				r.Tombstone(d)
				n++
			} else {
				dels = append(dels, d)
			}
		}
		q.dels = dels
		if n == 0 {
			return total
		}
		total += n
	}
}

func (q *queue[Op, Del]) len() int {
	return len(q.ops) + len(q.dels)
}

// Deliver applies ops and dels to r in the given order, deferring the ones whose causal
// dependencies are missing until they become ready. It returns the entries that never did.
func Deliver[Op comparable, Del any](r Replica[Op, Del], ops []Op, dels []Del) ([]Op, []Del) {
	var q queue[Op, Del]
	for _, op := range ops {
		q.offerOp(r, op)
	}
	for _, d := range dels {
		q.offerDel(r, d)
	}
	q.settle(r)
	return q.ops, q.dels
}
