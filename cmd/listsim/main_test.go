package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brunokim/listcrdt/sim"
)

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, []string{"woot", "rga", "yata", "fugue"}, cfg.algorithms())

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-algorithms", " yata, ,fugue", "-runs=2", "-rounds=50"}))
	require.Equal(t, []string{"yata", "fugue"}, cfg.algorithms())
	require.Equal(t, 2, cfg.Runs)
	require.Equal(t, 50, cfg.Sim.Rounds)
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Algorithms = "yata,logoot"
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Algorithms = ","
	require.ErrorIs(t, bad.Validate(), sim.ErrInvalidConfig)

	bad = cfg
	bad.Parallel = 0
	require.ErrorIs(t, bad.Validate(), sim.ErrInvalidConfig)

	bad = cfg
	bad.Sim.Actors = 0
	require.ErrorIs(t, bad.Validate(), sim.ErrInvalidConfig)
}

func TestRunAll(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sim.Rounds = 100
	cfg.Runs = 3
	cfg.Parallel = 2
	cfg.TraceDir = t.TempDir()

	results, err := runAll(context.Background(), zap.NewNop(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, res := range results {
		require.Equal(t, 3, res.runs, res.algorithm)
		require.Zero(t, res.failures, res.algorithm)
		require.Zero(t, res.faults, res.algorithm)
	}

	files, err := os.ReadDir(cfg.TraceDir)
	require.NoError(t, err)
	require.Len(t, files, 12)
	info, err := os.Stat(filepath.Join(cfg.TraceDir, "fugue_1741.jsonl"))
	require.NoError(t, err)
	require.NotZero(t, info.Size())

	printResults(results)
}

func TestRunAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := defaultConfig()
	cfg.Algorithms = "yata"
	_, err := runAll(ctx, zap.NewNop(), cfg)
	require.ErrorIs(t, err, context.Canceled)
}
