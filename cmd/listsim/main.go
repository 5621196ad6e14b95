// Command listsim runs randomized simulations of the list CRDT algorithms, and reports whether
// their replicas converged.
//
// Every flag can also be set with an environment variable, e.g. LISTSIM_ROUNDS=5000.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/burdiyan/go/mainutil"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/peterbourgon/ff/v4"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brunokim/listcrdt/logging"
	"github.com/brunokim/listcrdt/sim"
	"github.com/brunokim/listcrdt/weave"
)

func main() {
	const envVarPrefix = "LISTSIM"

	mainutil.Run(func() error {
		ctx := mainutil.TrapSignals()

		fs := flag.NewFlagSet("listsim", flag.ExitOnError)

		cfg := defaultConfig()
		cfg.BindFlags(fs)

		err := ff.Parse(fs, slices.Clone(os.Args[1:]), ff.WithEnvVarPrefix(envVarPrefix))
		if err != nil {
			if errors.Is(err, ff.ErrHelp) {
				fs.Usage()
				return nil
			}

			return err
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		log := logging.New("listsim", cfg.LogLevel)
		defer log.Sync()

		results, err := runAll(ctx, log, cfg)
		printResults(results)
		return err
	})
}

// +--------+
// | Config |
// +--------+

type config struct {
	Sim sim.Config

	Algorithms string
	Runs       int
	Parallel   int
	TraceDir   string
	LogLevel   string
}

func defaultConfig() config {
	return config{
		Sim:        sim.DefaultConfig(),
		Algorithms: strings.Join(weave.Algorithms, ","),
		Runs:       10,
		Parallel:   4,
		LogLevel:   "info",
	}
}

func (c *config) BindFlags(fs *flag.FlagSet) {
	c.Sim.BindFlags(fs)
	fs.StringVar(&c.Algorithms, "algorithms", c.Algorithms, "Comma-separated list of algorithms to simulate")
	fs.IntVar(&c.Runs, "runs", c.Runs, "Number of simulations per algorithm, with consecutive seeds")
	fs.IntVar(&c.Parallel, "parallel", c.Parallel, "Maximum number of simulations running at once")
	fs.StringVar(&c.TraceDir, "trace-dir", c.TraceDir, "Directory to write a JSONL trace of each simulation, disabled if empty")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log verbosity debug | info | warn | error")
}

func (c config) algorithms() []string {
	var names []string
	for _, name := range strings.Split(c.Algorithms, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (c config) Validate() error {
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	if c.Runs < 1 || c.Parallel < 1 {
		return fmt.Errorf("%w: runs and parallel must be positive", sim.ErrInvalidConfig)
	}
	names := c.algorithms()
	if len(names) == 0 {
		return fmt.Errorf("%w: no algorithm selected", sim.ErrInvalidConfig)
	}
	for _, name := range names {
		if _, err := weave.Factory(name); err != nil {
			return err
		}
	}
	return nil
}

// +------+
// | Runs |
// +------+

type result struct {
	algorithm string
	runs      int
	failures  int
	faults    int
	elapsed   time.Duration
	err       error
}

// Runs all simulations with bounded parallelism. Returns one result per algorithm, and the
// combined errors of every failed simulation.
func runAll(ctx context.Context, log *zap.Logger, cfg config) ([]*result, error) {
	names := cfg.algorithms()
	results := make([]*result, len(names))
	factories := make([]sim.Factory[weave.Op, weave.Delete], len(names))
	for i, name := range names {
		f, err := weave.Factory(name)
		if err != nil {
			return nil, err
		}
		factories[i] = f
		results[i] = &result{algorithm: name}
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i, name := range names {
		newReplica := factories[i]
		for run := range cfg.Runs {
			res := results[i]
			simCfg := cfg.Sim
			simCfg.Seed += int64(run)
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				err := runOne(log, cfg.TraceDir, name, newReplica, simCfg)
				elapsed := time.Since(start)

				mu.Lock()
				defer mu.Unlock()
				res.runs++
				res.elapsed += elapsed
				if err != nil {
					var fault *sim.Fault
					if errors.As(err, &fault) {
						res.faults++
					} else {
						res.failures++
					}
					res.err = multierr.Append(res.err, fmt.Errorf("%s seed=%d: %w", name, simCfg.Seed, err))
				}
				return nil
			})
		}
	}
	err := g.Wait()
	for _, res := range results {
		err = multierr.Append(err, res.err)
	}
	return results, err
}

func runOne(log *zap.Logger, traceDir, name string, newReplica sim.Factory[weave.Op, weave.Delete], cfg sim.Config) (err error) {
	log = log.With(zap.String("algorithm", name), zap.Int64("seed", cfg.Seed))
	opts := []sim.Option{sim.WithLogger(log)}
	if traceDir != "" {
		f, ferr := os.Create(filepath.Join(traceDir, fmt.Sprintf("%s_%d.jsonl", name, cfg.Seed)))
		if ferr != nil {
			return ferr
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		opts = append(opts, sim.WithTrace(f))
	}
	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(*sim.Fault)
			if !ok {
				panic(r)
			}
			err = fault
		}
	}()
	start := time.Now()
	err = sim.Run(newReplica, cfg, opts...)
	log.Info("SimulationFinished", zap.Duration("elapsed", time.Since(start)), zap.Bool("ok", err == nil))
	return err
}

func printResults(results []*result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Algorithm", "Runs", "Diverged", "Faults", "Avg time"})
	for _, res := range results {
		var avg time.Duration
		if res.runs > 0 {
			avg = res.elapsed / time.Duration(res.runs)
		}
		tw.AppendRow(table.Row{res.algorithm, res.runs, res.failures, res.faults, avg.Round(time.Microsecond)})
	}
	tw.Render()
}
