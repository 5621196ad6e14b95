package weave

import (
	"github.com/tidwall/btree"
)

// Index from operation ID to its neighbours at creation time, which never change after
// integration. The deleted flag is kept only in the weave.
type index struct {
	hint btree.PathHint
	tr   *btree.BTreeG[entry]
}

type entry struct {
	id, left, right OpID
}

func newIndex() *index {
	tr := btree.NewBTreeGOptions(
		func(a, b entry) bool {
			return a.id.Compare(b.id) < 0
		},
		btree.Options{
			NoLocks: true,
		},
	)
	return &index{tr: tr}
}

func (x *index) set(op Op) {
	x.tr.SetHint(entry{id: op.ID, left: op.Left, right: op.Right}, &x.hint)
}

func (x *index) get(id OpID) (entry, bool) {
	return x.tr.GetHint(entry{id: id}, &x.hint)
}

func (x *index) has(id OpID) bool {
	_, ok := x.get(id)
	return ok
}

func (x *index) len() int {
	return x.tr.Len()
}
