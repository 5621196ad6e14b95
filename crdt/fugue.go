package crdt

// Fugue is the set of capabilities required by IntegrateFugue.
//
// Iter must not yield any of its bounds: the scan starts after from and stops before to.
type Fugue[Op any, ID comparable] interface {
	YATA[Op, ID]
	// LeftOriginOf returns the left origin of the stored operation with the given ID.
	LeftOriginOf(id ID) ID
	// ComparePos returns -1, 0 or +1 depending on the current positions of the operations
	// with IDs a and b. The zero ID is positioned after every stored operation.
	ComparePos(a, b ID) int
}

// IntegrateFugue inserts op into l.
//
// Fugue places op among the siblings sharing its left origin. Siblings are ordered by their
// right parent: the right origin, but only when it's itself a child of the same left origin.
// An operation with an earlier right parent is a left child of something further ahead, so the
// scan moves past it without considering it an anchor. This keeps concurrent runs of
// insertions from interleaving.
//
// Time complexity: O(n^2), where n is the number of operations between op's origins.
func IntegrateFugue[Op any, ID comparable](l Fugue[Op, ID], op Op) {
	left, right := l.LeftOrigin(op), l.RightOrigin(op)
	parent := rightParent(l, left, right)
	visited := l.NewSet()
	scanning := false
	anchor := -1
	for pos, other := range l.Iter(left, right) {
		if l.Contains(other, left) || l.Contains(other, right) {
			Bugf("fugue", "scan between (%v, %v) yielded a bound at position %d", left, right, pos)
		}
		otherLeft := l.LeftOrigin(other)
		if otherLeft != left && (isZero(otherLeft) || !visited.Contains(otherLeft)) {
			break
		}
		visited.Add(l.ID(other))
		if otherLeft == left {
			otherParent := rightParent(l, left, l.RightOrigin(other))
			cmp := l.ComparePos(otherParent, parent)
			if cmp < 0 {
				scanning = true
			} else if cmp == 0 && l.CompareID(other, op) > 0 {
				break
			} else {
				scanning = false
			}
		}
		if !scanning {
			anchor = pos
		}
	}
	if anchor >= 0 {
		l.InsertAt(op, anchor+1)
	} else {
		l.InsertAfter(left, op)
	}
}

// Returns the right origin if it shares the left origin, or zero otherwise.
func rightParent[Op any, ID comparable](l Fugue[Op, ID], left, right ID) ID {
	var zero ID
	if isZero(right) || l.LeftOriginOf(right) != left {
		return zero
	}
	return right
}
