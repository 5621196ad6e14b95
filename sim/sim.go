/*
Package sim simulates a set of replicas of a list CRDT, to check that they converge.

Each replica is owned by an actor. Actors create operations locally, and exchange them through
sync actions, which may deliver an operation before its causal dependencies. Such operations
are kept in a pending queue until they can be integrated. After all actions, the simulation
syncs every actor with every other one, and checks that all visible contents are equal.

Simulations are single threaded. Bugs detected by the algorithms are raised as panics, and
wrapped into a *Fault containing a dump of the actors involved.
*/
package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/sanity-io/litter"
	"go.uber.org/zap"

	"github.com/brunokim/listcrdt/crdt"
	"github.com/brunokim/listcrdt/diff"
)

var (
	// ErrDiverged is returned when two actors have different contents after a full sync.
	ErrDiverged = errors.New("replicas diverged")
	// ErrPending is returned when an actor still has pending entries after a full sync.
	ErrPending = errors.New("entries still pending after full sync")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

var (
	uuidv1 = randomUUIDv1 // Stubbed for mocking in mocks_test.go

	dumper = litter.Options{
		HidePrivateFields: true,
		StripPackageNames: true,
	}
)

func randomUUIDv1() uuid.UUID {
	id, err := uuid.NewUUID()
	if err != nil {
		panic(fmt.Sprintf("generating UUIDv1: %v", err))
	}
	return id
}

// +---------+
// | Options |
// +---------+

type options struct {
	log   *zap.Logger
	hint  int
	trace io.Writer
}

// Option configures a simulation.
type Option func(*options)

// WithLogger sets the logger for the simulation. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithLenHint bounds positions and lengths in actions to [0, n]. Zero means no bound.
func WithLenHint(n int) Option {
	return func(o *options) { o.hint = n }
}

// WithTrace writes a JSON line to w after each action, with the visible content of all actors.
func WithTrace(w io.Writer) Option {
	return func(o *options) { o.trace = w }
}

// +------------+
// | Simulation |
// +------------+

// Simulation of a set of actors.
type Simulation[Op comparable, Del any] struct {
	// ID identifies this run in logs and errors.
	ID uuid.UUID
	// Step is the number of actions applied.
	Step int

	actors []*actor[Op, Del]
	hint   int
	log    *zap.Logger
	trace  *json.Encoder
}

// New creates a simulation with n actors, whose replicas are created by newReplica.
func New[Op comparable, Del any](newReplica Factory[Op, Del], n int, opts ...Option) *Simulation[Op, Del] {
	if n < 1 {
		panic(fmt.Sprintf("simulation needs at least one actor, got %d", n))
	}
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Simulation[Op, Del]{
		ID:     uuidv1(),
		actors: make([]*actor[Op, Del], n),
		hint:   o.hint,
	}
	s.log = o.log.With(zap.Stringer("run", s.ID))
	if o.trace != nil {
		s.trace = json.NewEncoder(o.trace)
	}
	for i := range s.actors {
		s.actors[i] = newActor(i, n, newReplica(i))
	}
	return s
}

// Len returns the number of actors.
func (s *Simulation[Op, Del]) Len() int {
	return len(s.actors)
}

// Replica returns the replica of the i-th actor.
func (s *Simulation[Op, Del]) Replica(i int) Replica[Op, Del] {
	return s.actors[i].replica
}

// Pending returns the number of entries waiting for dependencies in the i-th actor.
func (s *Simulation[Op, Del]) Pending(i int) int {
	return s.actors[i].pending.len()
}

// Apply normalizes and executes an action.
func (s *Simulation[Op, Del]) Apply(a Action) {
	a = a.Normalize(len(s.actors), s.hint)
	defer s.recoverFault(&a)
	switch a.Kind {
	case KindSync:
		if a.From == a.To {
			break
		}
		to, from := s.actors[a.To], s.actors[a.From]
		n := to.sync(from)
		s.log.Debug("Synced",
			zap.Int("from", a.From),
			zap.Int("to", a.To),
			zap.Int("received", n),
			zap.Int("pending", to.pending.len()))
	case KindNewOp:
		op := s.actors[a.Client].insert(a.Pos)
		s.log.Debug("Inserted", zap.Int("client", a.Client), zap.Any("op", op))
	case KindDelete:
		if s.actors[a.Client].delete(a.Pos, a.Len) {
			s.log.Debug("Deleted", zap.Int("client", a.Client), zap.Int("pos", a.Pos), zap.Int("len", a.Len))
		}
	}
	s.Step++
	s.writeTrace(a)
}

// Check syncs all actors and compares their visible contents.
//
// Adjacent actors are synced in both directions and compared, first from the first actor to
// the last, then back. Every actor then has seen every entry, and must have an empty queue.
func (s *Simulation[Op, Del]) Check() error {
	cur := Action{Kind: KindSync}
	defer s.recoverFault(&cur)
	n := len(s.actors)
	for i := 0; i+1 < n; i++ {
		cur.From, cur.To = i+1, i
		if err := s.converge(i, i+1); err != nil {
			return err
		}
	}
	for i := n - 1; i > 0; i-- {
		cur.From, cur.To = i-1, i
		if err := s.converge(i, i-1); err != nil {
			return err
		}
	}
	for _, a := range s.actors {
		if a.pending.len() > 0 {
			return &DivergenceError{
				RunID: s.ID,
				Cause: ErrPending,
				A:     a.idx,
				B:     a.idx,
				DumpA: a.dump(),
			}
		}
	}
	s.log.Debug("Converged", zap.Int("actors", n), zap.Int("steps", s.Step))
	return nil
}

func (s *Simulation[Op, Del]) converge(i, j int) error {
	a, b := s.actors[i], s.actors[j]
	a.sync(b)
	b.sync(a)
	va, vb := a.replica.Visible(), b.replica.Visible()
	if cmp.Equal(va, vb) {
		return nil
	}
	return &DivergenceError{
		RunID: s.ID,
		Cause: ErrDiverged,
		A:     i,
		B:     j,
		Diff:  diff.Format(diff.Diff(va, vb), 3),
		DumpA: a.dump(),
		DumpB: b.dump(),
	}
}

// Recovers an invariant violation and panics with a *Fault instead.
// Must be deferred directly.
func (s *Simulation[Op, Del]) recoverFault(act *Action) {
	r := recover()
	if r == nil {
		return
	}
	err, ok := r.(error)
	var bug *crdt.InvariantError
	if !ok || !errors.As(err, &bug) {
		panic(r)
	}
	a := *act
	f := &Fault{RunID: s.ID, Step: s.Step, Action: a, Err: bug}
	switch a.Kind {
	case KindSync:
		f.Dumps = append(f.Dumps, s.actors[a.From].dump(), s.actors[a.To].dump())
	default:
		f.Dumps = append(f.Dumps, s.actors[a.Client].dump())
	}
	s.log.Error("Fault", zap.Int("step", s.Step), zap.Stringer("action", a), zap.Error(bug))
	panic(f)
}

type traceLine[Op comparable] struct {
	Step    int    `json:"step"`
	Action  string `json:"action"`
	Visible [][]Op `json:"visible"`
	Pending []int  `json:"pending"`
}

func (s *Simulation[Op, Del]) writeTrace(a Action) {
	if s.trace == nil {
		return
	}
	line := traceLine[Op]{
		Step:    s.Step,
		Action:  a.String(),
		Visible: make([][]Op, len(s.actors)),
		Pending: make([]int, len(s.actors)),
	}
	for i, actor := range s.actors {
		line.Visible[i] = actor.replica.Visible()
		line.Pending[i] = actor.pending.len()
	}
	if err := s.trace.Encode(line); err != nil {
		s.log.Warn("TraceError", zap.Error(err))
	}
}

// +---------+
// | Drivers |
// +---------+

// Run executes a simulation with random actions as described by cfg, and checks for
// convergence.
func Run[Op comparable, Del any](newReplica Factory[Op, Del], cfg Config, opts ...Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r := rand.New(rand.NewSource(cfg.Seed))
	opts = append([]Option{WithLenHint(cfg.LenHint)}, opts...)
	s := New(newReplica, cfg.Actors, opts...)
	for range cfg.Rounds {
		s.Apply(RandomAction(r, cfg.Actors))
	}
	return s.Check()
}

// RunActions executes a simulation with the given actions over n actors, and checks for
// convergence. Positions and lengths are bounded by hint, if positive.
func RunActions[Op comparable, Del any](newReplica Factory[Op, Del], n, hint int, actions []Action, opts ...Option) error {
	opts = append([]Option{WithLenHint(hint)}, opts...)
	s := New(newReplica, n, opts...)
	for _, a := range actions {
		s.Apply(a)
	}
	return s.Check()
}

// +--------+
// | Errors |
// +--------+

// DivergenceError is returned when actors don't converge after a full sync.
type DivergenceError struct {
	RunID uuid.UUID
	// Cause is either ErrDiverged or ErrPending.
	Cause error
	// A and B are the indices of the actors compared.
	A, B int
	// Diff is an edit script from A's visible content to B's.
	Diff string
	// DumpA and DumpB describe the state of each actor.
	DumpA, DumpB string
}

func (e *DivergenceError) Error() string {
	if errors.Is(e.Cause, ErrPending) {
		return fmt.Sprintf("run %v: actor #%d: %v\n%s", e.RunID, e.A, e.Cause, e.DumpA)
	}
	return fmt.Sprintf("run %v: actors #%d and #%d: %v\n%s\nactor #%d: %s\nactor #%d: %s",
		e.RunID, e.A, e.B, e.Cause, e.Diff, e.A, e.DumpA, e.B, e.DumpB)
}

func (e *DivergenceError) Unwrap() error {
	return e.Cause
}

// Fault is the panic value raised when an algorithm detects a broken invariant.
type Fault struct {
	RunID uuid.UUID
	// Step is the number of actions applied before the failing one.
	Step   int
	Action Action
	Err    *crdt.InvariantError
	// Dumps describe the state of the actors involved in the action.
	Dumps []string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("run %v: step %d (%v): %v\n%s", f.RunID, f.Step, f.Action, f.Err, strings.Join(f.Dumps, "\n"))
}

func (f *Fault) Unwrap() error {
	return f.Err
}
