package weave

import (
	"errors"
	"fmt"

	"github.com/brunokim/listcrdt/sim"
)

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithms lists the names accepted by Factory.
var Algorithms = []string{"woot", "rga", "yata", "fugue"}

var factories = map[string]sim.Factory[Op, Delete]{
	"woot":  func(client int) sim.Replica[Op, Delete] { return NewWoot(client) },
	"rga":   func(client int) sim.Replica[Op, Delete] { return NewRGA(client) },
	"yata":  func(client int) sim.Replica[Op, Delete] { return NewYATA(client) },
	"fugue": func(client int) sim.Replica[Op, Delete] { return NewFugue(client) },
}

// Factory returns the replica constructor for an algorithm name.
func Factory(name string) (sim.Factory[Op, Delete], error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, want one of %v", ErrUnknownAlgorithm, name, Algorithms)
	}
	return f, nil
}

// The functions below replay a sequence of actions over a number of replicas, and return an
// error if they don't converge. Positions and lengths are bounded by hint, if positive.
// Fuzzers may pass any actions, as they are normalized before use.

// RunWoot replays actions over WOOT replicas.
func RunWoot(actors, hint int, actions []sim.Action, opts ...sim.Option) error {
	return sim.RunActions(factories["woot"], actors, hint, actions, opts...)
}

// RunRGA replays actions over RGA replicas.
func RunRGA(actors, hint int, actions []sim.Action, opts ...sim.Option) error {
	return sim.RunActions(factories["rga"], actors, hint, actions, opts...)
}

// RunYATA replays actions over YATA replicas.
func RunYATA(actors, hint int, actions []sim.Action, opts ...sim.Option) error {
	return sim.RunActions(factories["yata"], actors, hint, actions, opts...)
}

// RunFugue replays actions over Fugue replicas.
func RunFugue(actors, hint int, actions []sim.Action, opts ...sim.Option) error {
	return sim.RunActions(factories["fugue"], actors, hint, actions, opts...)
}
