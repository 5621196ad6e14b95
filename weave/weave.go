/*
Package weave provides a naive reference storage for the list procedures in package crdt.

All operations of a replica are kept in a single array, in list order, including deleted ones
(tombstones). This array is called the weave, as it interleaves the operations created by all
replicas. Searching for an operation is linear, and so is inserting one, which is acceptable
for an oracle used to validate the algorithms against each other.

  # BEGIN ASCII ART

   client.clock
     |
     v
  .-----.-----.-----.-----.-----.-----.
  | 0.1 | 1.1 | 1.2 |x0.2 | 0.3 | 2.1 |  <- weave
  '-----'-----'-----'-----'-----'-----'
                       ^
                       '-- tombstone, not part of the visible content

  # END ASCII ART

Each algorithm has an adapter type (Woot, RGA, YATA, Fugue) that wraps a Container and
implements both the capabilities required by the corresponding crdt procedure, and the replica
contract used by the simulations in package sim.
*/
package weave

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/brunokim/listcrdt/crdt"
)

// +------------+
// | Operations |
// +------------+

// OpID is the unique identifier of an operation.
type OpID struct {
	// Client is the index of the replica that created the operation.
	Client int
	// Clock is the sequence number of the operation within its client.
	// Clock 0 is considered invalid, and the zero OpID represents an absent reference.
	Clock int
}

// IsZero returns whether id is an absent reference.
func (id OpID) IsZero() bool {
	return id == OpID{}
}

// Compare returns the relative order between IDs, first by client, then by clock.
func (id OpID) Compare(other OpID) int {
	if id.Client < other.Client {
		return -1
	}
	if id.Client > other.Client {
		return +1
	}
	if id.Clock < other.Clock {
		return -1
	}
	if id.Clock > other.Clock {
		return +1
	}
	return 0
}

func (id OpID) String() string {
	if id.IsZero() {
		return "_"
	}
	return fmt.Sprintf("%d.%d", id.Client, id.Clock)
}

// Op is an insertion into the list.
type Op struct {
	ID OpID
	// Lamport timestamp, only maintained by RGA.
	Lamport int
	// Left is the operation to the left of the insertion point when it was created, or
	// zero for the start of the list.
	Left OpID
	// Right is the operation to the right of the insertion point when it was created, or
	// zero for the end of the list.
	Right OpID
	// Deleted marks a tombstone.
	Deleted bool
}

func (op Op) String() string {
	var sb strings.Builder
	if op.Deleted {
		sb.WriteByte('x')
	}
	fmt.Fprintf(&sb, "%v(%v,%v)", op.ID, op.Left, op.Right)
	return sb.String()
}

// Delete marks a set of operations as deleted.
type Delete struct {
	Targets []OpID
}

// +----------------+
// | Version vector |
// +----------------+

// VersionVector stores, for each client, how many of its operations were integrated.
//
// Operations from a client are integrated in clock order, so the next operation expected from
// client c has clock v[c]+1.
type VersionVector []int

// Next returns the clock of the next operation expected from client.
func (v VersionVector) Next(client int) int {
	if client < len(v) {
		return v[client] + 1
	}
	return 1
}

func (v *VersionVector) advance(client int) {
	for len(*v) <= client {
		*v = append(*v, 0)
	}
	(*v)[client]++
}

// +-----------+
// | Container |
// +-----------+

// Container stores the operations of a replica.
type Container struct {
	// Client is the index of this replica, used as Client in the IDs of local operations.
	Client int
	// Weave is the list of operations, including tombstones.
	Weave []Op
	// Version tracks the integrated operations from each client.
	Version VersionVector
	// NextLamport is the timestamp of the next local operation, only maintained by RGA.
	NextLamport int

	index *index
}

// NewContainer returns an empty container for the given client.
func NewContainer(client int) *Container {
	return &Container{
		Client: client,
		index:  newIndex(),
	}
}

func (c *Container) String() string {
	parts := make([]string, len(c.Weave))
	for i, op := range c.Weave {
		parts[i] = op.ID.String()
		if op.Deleted {
			parts[i] = "x" + parts[i]
		}
	}
	return fmt.Sprintf("#%d[%s]", c.Client, strings.Join(parts, " "))
}

// Len returns the length of the weave, including tombstones.
func (c *Container) Len() int {
	return len(c.Weave)
}

// Visible returns the operations that were not deleted, in list order.
func (c *Container) Visible() []Op {
	var ops []Op
	for _, op := range c.Weave {
		if !op.Deleted {
			ops = append(ops, op)
		}
	}
	return ops
}

// Has returns whether the operation with the given ID was integrated. The zero ID is always
// present.
func (c *Container) Has(id OpID) bool {
	return id.IsZero() || c.index.has(id)
}

// Iteration modes for scan.
const (
	inclusive = false
	exclusive = true
)

// Returns the operations between from and to. A zero from starts at the beginning, and a zero
// to runs until the end. Bounds are yielded unless excludeBounds is set.
func (c *Container) scan(from, to OpID, excludeBounds bool) iter.Seq2[int, Op] {
	return func(yield func(int, Op) bool) {
		started := from.IsZero()
		for i, op := range c.Weave {
			if !to.IsZero() && op.ID == to {
				if started && !excludeBounds {
					yield(i, op)
				}
				return
			}
			if !started {
				if op.ID != from {
					continue
				}
				started = true
				if excludeBounds {
					continue
				}
			}
			if !yield(i, op) {
				return
			}
		}
	}
}

// PosOf returns the position of id in the weave.
//
// Time complexity: O(n)
func (c *Container) PosOf(id OpID) int {
	for i, op := range c.Weave {
		if op.ID == id {
			return i
		}
	}
	crdt.Bugf("weave", "%v not found in %v", id, c)
	return -1
}

// InsertAt inserts op in the weave at position pos.
//
// Time complexity: O(n)
func (c *Container) InsertAt(op Op, pos int) {
	if pos < 0 || pos > len(c.Weave) {
		crdt.Bugf("weave", "position %d out of range [0, %d]", pos, len(c.Weave))
	}
	c.Weave = slices.Insert(c.Weave, pos, op)
}

// InsertAfter inserts op right after id, or at the start if id is zero.
//
// Time complexity: O(n)
func (c *Container) InsertAfter(id OpID, op Op) {
	if id.IsZero() {
		c.InsertAt(op, 0)
		return
	}
	c.InsertAt(op, c.PosOf(id)+1)
}

// ID returns the ID of op.
func (c *Container) ID(op Op) OpID { return op.ID }

// CompareID compares two operations by their IDs.
func (c *Container) CompareID(a, b Op) int { return a.ID.Compare(b.ID) }

// Contains returns whether op has the given ID.
func (c *Container) Contains(op Op, id OpID) bool { return op.ID == id }

// NewSet returns an empty set of IDs.
func (c *Container) NewSet() crdt.OpSet[OpID] {
	return mapset.NewThreadUnsafeSet[OpID]()
}

// +-------------+
// | Integration |
// +-------------+

// NewOp returns an operation to be inserted at the visible position pos, which is taken
// modulo the visible length plus one.
//
// The operation's neighbours are the weave entries around the insertion point, which may be
// tombstones. It must be integrated before another operation is created.
func (c *Container) NewOp(pos int) Op {
	visible := c.visibleIndices()
	pos = mod(pos, len(visible)+1)
	i := len(c.Weave)
	if pos < len(visible) {
		i = visible[pos]
	}
	op := Op{ID: OpID{Client: c.Client, Clock: c.Version.Next(c.Client)}}
	if i > 0 {
		op.Left = c.Weave[i-1].ID
	}
	if i < len(c.Weave) {
		op.Right = c.Weave[i].ID
	}
	return op
}

// CanIntegrate returns whether all causal dependencies of op were integrated: the previous
// operation of the same client and both its neighbours.
func (c *Container) CanIntegrate(op Op) bool {
	return op.ID.Clock == c.Version.Next(op.ID.Client) && c.Has(op.Left) && c.Has(op.Right)
}

// Integrates op using the placement function, and updates bookkeeping.
func (c *Container) integrate(op Op, place func()) {
	if want := c.Version.Next(op.ID.Client); op.ID.Clock != want {
		crdt.Bugf("weave", "integrating %v out of order, want clock %d", op.ID, want)
	}
	if c.index.has(op.ID) {
		crdt.Bugf("weave", "%v integrated twice", op.ID)
	}
	place()
	c.index.set(op)
	c.Version.advance(op.ID.Client)
}

// LeftOriginOf returns the left neighbour of an integrated operation.
func (c *Container) LeftOriginOf(id OpID) OpID {
	e, ok := c.index.get(id)
	if !ok {
		crdt.Bugf("weave", "cannot find left origin of %v", id)
	}
	return e.left
}

// +----------+
// | Deletion |
// +----------+

// NewDelete returns a deletion of n visible operations, starting from the visible position
// pos taken modulo the visible length. It returns false if there's nothing to delete.
func (c *Container) NewDelete(pos, n int) (Delete, bool) {
	visible := c.visibleIndices()
	if len(visible) == 0 || n <= 0 {
		return Delete{}, false
	}
	pos = mod(pos, len(visible))
	n = min(n, len(visible)-pos)
	targets := make([]OpID, n)
	for k := range n {
		targets[k] = c.Weave[visible[pos+k]].ID
	}
	return Delete{Targets: targets}, true
}

// CanDelete returns whether all targets of d were integrated.
func (c *Container) CanDelete(d Delete) bool {
	for _, id := range d.Targets {
		if !c.Has(id) {
			return false
		}
	}
	return true
}

// Tombstone marks the targets of d as deleted. Deleting an operation twice is a no-op.
//
// Time complexity: O(n)
func (c *Container) Tombstone(d Delete) {
	targets := mapset.NewThreadUnsafeSet(d.Targets...)
	for i := range c.Weave {
		if targets.Contains(c.Weave[i].ID) {
			c.Weave[i].Deleted = true
		}
	}
}

func (c *Container) visibleIndices() []int {
	var idxs []int
	for i, op := range c.Weave {
		if !op.Deleted {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func mod(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}
