package crdt

// Woot is the set of capabilities required by IntegrateWoot.
//
// Iter must yield both bounds, when present.
type Woot[Op any, ID comparable] interface {
	ListCRDT[Op, ID]
	// Left returns the ID of the operation that was to the left of op when it was created.
	Left(op Op) ID
	// Right returns the ID of the operation that was to the right of op when it was created.
	Right(op Op) ID
	// PosOf returns the current position of the operation with the given ID.
	PosOf(id ID) int
}

// IntegrateWoot inserts op into l.
//
// The operations strictly between op's neighbours form the range of candidate anchors.
// If it's empty, op is inserted right before its right neighbour. Otherwise, only the
// operations whose own neighbours are outside the range are considered, and the range is
// narrowed to the pair of them that surround op in ID order. Repeat until the range is empty.
//
// Time complexity: O(n^2), where n is the number of operations between op's neighbours.
func IntegrateWoot[Op any, ID comparable](l Woot[Op, ID], op Op) {
	left, right := l.Left(op), l.Right(op)
	for {
		set := l.NewSet()
		var empty = true
		for _, other := range l.Iter(left, right) {
			if l.Contains(other, left) || l.Contains(other, right) {
				continue
			}
			set.Add(l.ID(other))
			empty = false
		}
		if empty {
			if isZero(right) {
				l.InsertAt(op, l.Len())
			} else {
				l.InsertAt(op, l.PosOf(right))
			}
			return
		}
		prev, next := left, right
		for _, other := range l.Iter(left, right) {
			if l.Contains(other, left) || l.Contains(other, right) {
				continue
			}
			// Skip operations that were inserted relative to another one in range.
			if set.Contains(l.Left(other)) || set.Contains(l.Right(other)) {
				continue
			}
			if l.CompareID(other, op) < 0 {
				prev = l.ID(other)
			} else {
				next = l.ID(other)
				break
			}
		}
		if prev == left && next == right {
			Bugf("woot", "range (%v, %v) did not shrink", left, right)
		}
		left, right = prev, next
	}
}
