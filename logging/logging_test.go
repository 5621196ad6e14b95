package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brunokim/listcrdt/logging"
)

func TestNew(t *testing.T) {
	log := logging.New("listcrdt-test", "warn")
	require.NotNil(t, log)
	require.Contains(t, logging.ListLogNames(), "listcrdt-test")

	for _, level := range []string{"debug", "info", "warn", "error"} {
		require.NotPanics(t, func() { logging.SetLogLevel("listcrdt-test", level) }, level)
	}
}

func TestSetLogLevelInvalid(t *testing.T) {
	logging.New("listcrdt-invalid", "info")
	require.Panics(t, func() { logging.SetLogLevel("listcrdt-invalid", "loud") })
}
