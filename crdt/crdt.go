/*
Package crdt provides the integration procedures of four replicated list types.

A replicated list (list CRDT) is copied across multiple sites, edited independently at each
site, and merged back without conflicts. Every insertion is an operation carrying references
to the elements that surrounded it when it was created. Integrating an operation means
deciding where it goes in the local sequence, such that all sites that received the same set
of operations end up with the same sequence, regardless of delivery order.

This package implements four such procedures:

  - WOOT [1], which resolves conflicts by recursively narrowing the range between the left and
    right neighbours of an operation.
  - RGA [2], which orders siblings by a Lamport timestamp.
  - YATA [3], the algorithm behind Yjs, which scans between the left and right origins.
  - Fugue [4], an extension of YATA that avoids interleaving concurrent runs of insertions.

The procedures don't own any storage. Each one declares the capabilities it needs from a
sequence as an interface (Woot, RGA, YATA, Fugue), and operates through them. Package weave
provides a naive, array-backed implementation of all of them.

[1]: OSTER, G. et al. Data consistency for P2P collaborative editing.
[2]: ROH, H-G. et al. Replicated abstract data types: building blocks for collaborative applications.
[3]: NICOLAESCU, P. et al. Near real-time peer-to-peer shared editing on extensible data types.
[4]: WEIDNER, M.; KLEPPMANN, M. The art of the fugue: minimizing interleaving in collaborative text editing.
*/
package crdt

import (
	"fmt"
	"iter"
)

// +-----------+
// | Contracts |
// +-----------+

// ListCRDT is the set of capabilities shared by every integration procedure.
//
// Op is the operation handle stored in the sequence, and ID its identity. The zero ID denotes
// an absent reference: the start of the sequence when used as a left bound, and its end when
// used as a right bound. No stored operation may have the zero ID.
type ListCRDT[Op any, ID comparable] interface {
	// Iter returns the operations between from and to, in storage order, paired with their
	// current position. Whether the bounds themselves are yielded depends on the algorithm.
	// The scan is lazy and can be restarted by calling Iter again.
	Iter(from, to ID) iter.Seq2[int, Op]
	// InsertAt places op at position pos, shifting the following operations to the right.
	InsertAt(op Op, pos int)
	// InsertAfter places op right after the operation with the given ID, or at position 0 if
	// id is zero.
	InsertAfter(id ID, op Op)
	// ID returns the identity of op.
	ID(op Op) ID
	// CompareID returns -1, 0 or +1 depending on the order of a's and b's identities.
	CompareID(a, b Op) int
	// Contains returns whether op has the given identity.
	Contains(op Op, id ID) bool
	// Len returns the number of stored operations, including tombstones.
	Len() int
	// NewSet returns an empty conflict set, scoped to a single integration.
	NewSet() OpSet[ID]
}

// OpSet is a set of operation identities, used during a scan to remember which operations were
// visited or are in conflict with the one being integrated.
//
// Its method set matches github.com/deckarep/golang-set/v2, so any mapset.Set can be used.
type OpSet[ID comparable] interface {
	// Add inserts id, returning whether it was absent.
	Add(id ID) bool
	// Contains returns whether all ids are in the set.
	Contains(ids ...ID) bool
	Clear()
}

// +--------+
// | Errors |
// +--------+

// InvariantError is raised as a panic when an integration observes a state that its contract
// rules out, such as a scan yielding a bound it was asked to exclude.
//
// These are defects in the algorithm or in the storage, and are never recovered silently.
type InvariantError struct {
	Algorithm string
	Msg       string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("BUG: %s: %s", e.Algorithm, e.Msg)
}

// Bugf panics with an *InvariantError for the given algorithm.
func Bugf(algorithm, format string, args ...any) {
	panic(&InvariantError{Algorithm: algorithm, Msg: fmt.Sprintf(format, args...)})
}

func isZero[ID comparable](id ID) bool {
	var zero ID
	return id == zero
}
