package logger

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

// NewTestLogger returns a Logger that writes through t.Log, so output is
// attached to the failing test instead of the process stderr.
func NewTestLogger(t *testing.T) Logger {
	return &zapWrapper{l: zaptest.NewLogger(t)}
}
