package crdt

// RGA is the set of capabilities required by IntegrateRGA.
//
// Iter must yield the from bound, when present, and is always called with a zero to bound.
type RGA[Op any, ID comparable] interface {
	ListCRDT[Op, ID]
	// Left returns the ID of op's left origin.
	Left(op Op) ID
	// Lamport returns op's Lamport timestamp.
	Lamport(op Op) int
	// Client returns the replica that created the operation with the given ID.
	Client(id ID) int
}

// IntegrateRGA inserts op into l.
//
// Starting from op's left origin, it walks forward and stops at the first operation whose
// (lamport, client) pair is greater than op's. op is inserted after the last operation walked.
//
// Time complexity: O(n), where n is the number of operations after op's left origin.
func IntegrateRGA[Op any, ID comparable](l RGA[Op, ID], op Op) {
	var end, anchor ID
	for _, other := range l.Iter(l.Left(op), end) {
		if compareLamport(l, op, other) < 0 {
			break
		}
		anchor = l.ID(other)
	}
	l.InsertAfter(anchor, op)
}

// Compares operations by Lamport timestamp first, and creator second.
func compareLamport[Op any, ID comparable](l RGA[Op, ID], a, b Op) int {
	ta, tb := l.Lamport(a), l.Lamport(b)
	if ta < tb {
		return -1
	}
	if ta > tb {
		return +1
	}
	ca, cb := l.Client(l.ID(a)), l.Client(l.ID(b))
	if ca < cb {
		return -1
	}
	if ca > cb {
		return +1
	}
	return 0
}
