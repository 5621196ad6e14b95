// Package diff computes minimal edit scripts between sequences.
package diff

import (
	"fmt"
	"strings"
)

type OpType int

const (
	Keep OpType = iota
	Insert
	Delete
)

// Operation is a step of an edit script. Dist is the number of inserts and deletes still
// required after this step, including it.
type Operation[T comparable] struct {
	Op   OpType
	Elem T
	Dist int
}

func (op Operation[T]) String() string {
	switch op.Op {
	case Keep:
		return fmt.Sprintf(" %v", op.Elem)
	case Insert:
		return fmt.Sprintf("+%v", op.Elem)
	case Delete:
		return fmt.Sprintf("-%v", op.Elem)
	}
	return fmt.Sprintf("?%v", op.Elem)
}

// Example: abcd -> xabdy
//           xs      ys
//
// Legend:
//   ix = insert(x)
//   ka = keep(a)
//   dc = delete(c)
//
//          xabdy   xabdy   xabdy   xabdy   xabdy   xabdy
//  xs\ys   ^        ^        ^        ^        ^        ^
//        +-------+-------+-------+-------+-------+-------+
//        |       |       |       |       |       |       |
//  abcd  | ix 3  < ka 2  | da 3  | da 4  | iy 5  < da 4  |
//  ^     |       |      \|       |       |       |       |
//        +-------+-------+---^---+---^---+-------+---^---+
//        |       |       |       |       |       |       |
//  abcd  | ix 4  < ia 3  < kb 2  | db 3  | iy 4  < db 3  |
//   ^    |       |       |      \|       |       |       |
//        +-------+-------+-------+---^---+-------+---^---+
//        |       |       |       |       |       |       |
//  abcd  | ix 5  < ia 4  < ib 3  < dc 2  | iy 3  < dc 2  |
//    ^   |       |       |       |       |       |       |
//        +-------+-------+-------+---^---+-------+---^---+
//        |       |       |       |       |       |       |
//  abcd  | ix 4  < ia 3  < ib 2  < kd 1  | iy 2  < dd 1  |
//     ^  |       |       |       |      \|       |       |
//        +-------+-------+-------+-------+-------+---^---+
//        |       |       |       |       |       |       |
//  abcd  | ix 5  < ia 4  < ib 3  < id 2  < iy 1  < k0 0  |
//      ^ |       |       |       |       |       |       |
//        +-------+-------+-------+-------+-------+-------+

// Diff returns the sequence of keeps, insertions and deletions to transform xs into ys.
//
// Time and space complexity: O(m*n)
func Diff[T comparable](xs, ys []T) []Operation[T] {
	m, n := len(xs), len(ys)
	ops := make([]Operation[T], (m+1)*(n+1))
	coord := func(i, j int) int {
		return i*(n+1) + j
	}
	// Diff between xs and an empty sequence: delete all elements
	for i, x := range xs {
		ops[coord(i, n)] = Operation[T]{
			Op:   Delete,
			Elem: x,
			Dist: m - i,
		}
	}
	// Diff between an empty sequence and ys: insert all elements
	for j, y := range ys {
		ops[coord(m, j)] = Operation[T]{
			Op:   Insert,
			Elem: y,
			Dist: n - j,
		}
	}
	// Compute all paths of operations that produce minimal edit distance.
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			x, y := xs[i], ys[j]
			if x == y {
				dist := ops[coord(i+1, j+1)].Dist
				ops[coord(i, j)] = Operation[T]{
					Op:   Keep,
					Elem: x,
					Dist: dist,
				}
			} else {
				// Pick smallest dist between possible sequences, preferring insert on a tie.
				op1 := ops[coord(i+1, j)]
				op2 := ops[coord(i, j+1)]
				if op2.Dist <= op1.Dist {
					ops[coord(i, j)] = Operation[T]{
						Op:   Insert,
						Elem: y,
						Dist: 1 + op2.Dist,
					}
				} else {
					ops[coord(i, j)] = Operation[T]{
						Op:   Delete,
						Elem: x,
						Dist: 1 + op1.Dist,
					}
				}
			}
		}
	}
	// Build sequence of operations.
	var operations []Operation[T]
	var i, j int
	for i < m || j < n {
		op := ops[coord(i, j)]
		operations = append(operations, op)
		switch op.Op {
		case Keep:
			i++
			j++
		case Insert:
			j++
		case Delete:
			i++
		}
	}
	return operations
}

// Distance returns the number of inserts/deletes to transform xs into ys.
func Distance[T comparable](xs, ys []T) int {
	if len(xs) == 0 && len(ys) == 0 {
		return 0
	}
	return Diff(xs, ys)[0].Dist
}

// Format renders an edit script one element per line, prefixed by ' ', '+' or '-'.
// Runs of more than context kept elements are elided.
func Format[T comparable](ops []Operation[T], context int) string {
	var sb strings.Builder
	for i := 0; i < len(ops); {
		if ops[i].Op != Keep {
			fmt.Fprintln(&sb, ops[i])
			i++
			continue
		}
		k := i
		for k < len(ops) && ops[k].Op == Keep {
			k++
		}
		if k-i <= 2*context {
			for _, op := range ops[i:k] {
				fmt.Fprintln(&sb, op)
			}
		} else {
			for _, op := range ops[i : i+context] {
				fmt.Fprintln(&sb, op)
			}
			fmt.Fprintf(&sb, "  ... %d equal\n", k-i-2*context)
			for _, op := range ops[k-context : k] {
				fmt.Fprintln(&sb, op)
			}
		}
		i = k
	}
	return sb.String()
}
