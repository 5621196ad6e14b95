package sim

import (
	"fmt"
	"math/rand"
)

// Simulations are driven by a sequence of actions over a fixed set of actors.
//
// Actions:
//
// sync <from> <to>               -- send to actor 'to' every operation known by 'from'.
// newOp <client> <pos>           -- insert an operation at visible position 'pos' of 'client'.
// delete <client> <pos> <len>    -- delete 'len' visible operations from 'client', starting at 'pos'.
//
// Actors and positions are hints: they are reduced to valid values before being applied, so
// that any sequence of actions, including one decoded from random bytes, is meaningful.

// ActionKind enumerates the kinds of action.
type ActionKind uint8

const (
	KindSync ActionKind = iota
	KindNewOp
	KindDelete
)

// Action is a single step of a simulation.
type Action struct {
	Kind ActionKind
	// From and To are the actors involved in a sync.
	From, To int
	// Client is the actor performing a newOp or delete.
	Client int
	// Pos and Len are position hints for newOp and delete.
	Pos, Len int
}

func (a Action) String() string {
	switch a.Kind {
	case KindSync:
		return fmt.Sprintf("sync #%d -> #%d", a.From, a.To)
	case KindNewOp:
		return fmt.Sprintf("newOp @ %d at #%d", a.Pos, a.Client)
	case KindDelete:
		return fmt.Sprintf("delete %d @ %d at #%d", a.Len, a.Pos, a.Client)
	}
	return fmt.Sprintf("action(%d)", a.Kind)
}

// Normalize reduces actor indices modulo the number of actors. If hint is positive, positions
// and lengths are also reduced modulo hint+1.
func (a Action) Normalize(actors, hint int) Action {
	a.Kind %= numKinds
	a.From = mod(a.From, actors)
	a.To = mod(a.To, actors)
	a.Client = mod(a.Client, actors)
	if hint > 0 {
		a.Pos = mod(a.Pos, hint+1)
		a.Len = mod(a.Len, hint+1)
	} else {
		a.Pos = max(a.Pos, 0)
		a.Len = max(a.Len, 0)
	}
	return a
}

const numKinds = 3

// RandomAction returns an action over the given number of actors.
//
// Inserts are more frequent than syncs, and these more frequent than deletes, so that lists
// grow over time.
func RandomAction(r *rand.Rand, actors int) Action {
	switch x := r.Intn(6); {
	case x < 2:
		from := r.Intn(actors)
		to := from
		if actors > 1 {
			to = (from + 1 + r.Intn(actors-1)) % actors
		}
		return Action{Kind: KindSync, From: from, To: to}
	case x < 5:
		return Action{Kind: KindNewOp, Client: r.Intn(actors), Pos: r.Intn(1 << 16)}
	default:
		return Action{Kind: KindDelete, Client: r.Intn(actors), Pos: r.Intn(1 << 16), Len: 1 + r.Intn(3)}
	}
}

// -----

var numBytes = map[ActionKind]int{
	KindSync:   3, // sync from to
	KindNewOp:  3, // newOp client pos
	KindDelete: 4, // delete client pos len
}

// DecodeAction reads an action from the start of bs, returning the number of bytes consumed.
// The first byte selects the kind, modulo the number of kinds. If bs is too short, it returns 0.
func DecodeAction(bs []byte) (Action, int) {
	if len(bs) == 0 {
		return Action{}, 0
	}
	kind := ActionKind(bs[0] % numKinds)
	n := numBytes[kind]
	if len(bs) < n {
		return Action{}, 0
	}
	toIndex := func(b byte) int { return int(b) }
	result := Action{Kind: kind}
	switch kind {
	case KindSync:
		result.From = toIndex(bs[1])
		result.To = toIndex(bs[2])
	case KindNewOp:
		result.Client = toIndex(bs[1])
		result.Pos = toIndex(bs[2])
	case KindDelete:
		result.Client = toIndex(bs[1])
		result.Pos = toIndex(bs[2])
		result.Len = toIndex(bs[3])
	}
	return result, n
}

// DecodeActions reads all actions from bs. An incomplete trailing action is ignored.
func DecodeActions(bs []byte) []Action {
	var actions []Action
	for len(bs) != 0 {
		a, n := DecodeAction(bs)
		if n == 0 {
			break
		}
		actions = append(actions, a)
		bs = bs[n:]
	}
	return actions
}

// EncodeActions is the inverse of DecodeActions, for actions with values within a byte.
func EncodeActions(actions []Action) []byte {
	var bs []byte
	for _, a := range actions {
		switch a.Kind {
		case KindSync:
			bs = append(bs, byte(a.Kind), byte(a.From), byte(a.To))
		case KindNewOp:
			bs = append(bs, byte(a.Kind), byte(a.Client), byte(a.Pos))
		case KindDelete:
			bs = append(bs, byte(a.Kind), byte(a.Client), byte(a.Pos), byte(a.Len))
		}
	}
	return bs
}

func mod(x, n int) int {
	if n <= 0 {
		return 0
	}
	x %= n
	if x < 0 {
		x += n
	}
	return x
}
