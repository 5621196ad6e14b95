package crdt

// YATA is the set of capabilities required by IntegrateYATA.
//
// Iter must not yield any of its bounds: the scan starts after from and stops before to.
type YATA[Op any, ID comparable] interface {
	ListCRDT[Op, ID]
	// LeftOrigin returns the ID of the operation immediately to the left of op when it was created.
	LeftOrigin(op Op) ID
	// RightOrigin returns the ID of the operation immediately to the right of op when it was created.
	RightOrigin(op Op) ID
}

// IntegrateYATA inserts op into l.
//
// The scan between op's origins keeps an anchor, initially its left origin. An operation with
// the same left origin becomes the anchor if op sorts after it. An operation whose left origin
// was already scanned, but is not part of the current conflict, belongs to a subtree that op
// must skip, and also becomes the anchor. Any other operation ends the scan.
//
// Time complexity: O(n), where n is the number of operations between op's origins.
func IntegrateYATA[Op any, ID comparable](l YATA[Op, ID], op Op) {
	left, right := l.LeftOrigin(op), l.RightOrigin(op)
	visited, conflicting := l.NewSet(), l.NewSet()
	anchor := -1
	for pos, other := range l.Iter(left, right) {
		if l.Contains(other, left) || l.Contains(other, right) {
			Bugf("yata", "scan between (%v, %v) yielded a bound at position %d", left, right, pos)
		}
		id := l.ID(other)
		visited.Add(id)
		conflicting.Add(id)
		otherLeft := l.LeftOrigin(other)
		if otherLeft == left {
			if l.CompareID(op, other) > 0 {
				anchor = pos
				conflicting.Clear()
			} else if l.RightOrigin(other) == right {
				break
			}
		} else if !isZero(otherLeft) && visited.Contains(otherLeft) {
			if !conflicting.Contains(otherLeft) {
				anchor = pos
				conflicting.Clear()
			}
		} else {
			break
		}
	}
	if anchor >= 0 {
		l.InsertAt(op, anchor+1)
	} else {
		l.InsertAfter(left, op)
	}
}
