// Package csetlog provides the structured logger shared by the
// containers in this module. It exists so that the lock-free cores'
// helping paths and the Singh maintainer goroutine's lifecycle can be
// traced without imposing any allocation cost when tracing is
// disabled.
package csetlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

// Default returns the package-level sugared logger, building a zap
// production logger (Info level and above, so this module's Debug
// traces are dropped) on first use, or a no-op logger if that fails.
// Callers that want to see the
// lock-free cores' helping traces should call Replace with a
// development logger before constructing any container.
func Default() *zap.SugaredLogger {
	once.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	})
	return logger
}

// Replace swaps the package-level logger, for tests and callers that
// want Debug-level helping traces. Not safe to call concurrently with
// Default's first invocation.
func Replace(l *zap.Logger) {
	once.Do(func() {})
	logger = l.Sugar()
}

// DebugEnabled reports whether the current logger's core would accept
// a Debug-level entry, so hot paths can skip building log fields
// entirely when tracing is off.
func DebugEnabled() bool {
	l := Default()
	return l.Desugar().Core().Enabled(zap.DebugLevel)
}
