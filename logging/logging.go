// Package logging creates named zap loggers on top of the IPFS logging package, which keeps a
// registry of subsystems and their levels. Global loggers are discouraged: callers create a
// named logger with its level in one call, and pass it down.
package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-log/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

func init() {
	// Compatibility with IPFS's logging library.
	envfmt := strings.TrimSpace(strings.ToLower(os.Getenv("GOLOG_LOG_FMT")))

	cfg := zap.NewProductionEncoderConfig()
	cfg.MessageKey = "msg"
	cfg.LevelKey = "lvl"
	cfg.TimeKey = "ts"
	cfg.NameKey = "log"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}

	var enc zapcore.Encoder

	// JSON when stderr is redirected, e.g. while collecting simulation logs into a file.
	if !term.IsTerminal(int(os.Stderr.Fd())) || envfmt == "json" {
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	log.SetPrimaryCore(zapcore.NewCore(enc, os.Stderr, zap.NewAtomicLevelAt(zapcore.DebugLevel)))
}

// New creates a named logger with the given level, one of debug, info, warn or error.
// If the logger already exists, only its level is changed.
func New(subsystem, level string) *zap.Logger {
	l := log.Logger(subsystem).Desugar()
	SetLogLevel(subsystem, level)
	return l
}

// SetLogLevel sets the level of a named logger. It panics for an invalid level.
func SetLogLevel(subsystem, level string) {
	if err := log.SetLogLevel(subsystem, level); err != nil {
		panic(fmt.Errorf("%s %s: %w", subsystem, level, err))
	}
}

// ListLogNames returns the names of all loggers created so far.
func ListLogNames() []string {
	logs := log.GetSubsystems()
	sort.Strings(logs)
	return logs
}
