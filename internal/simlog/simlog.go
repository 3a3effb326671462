// Package simlog is the structured event log surface. Entries carry
// run_id, node and event fields. The events logged in this module are
// "run_start" (cmd/odmrpsim) and "join_query_originated" (internal/node);
// other packet events (accept, send, broadcast, route, JR processing,
// delivery) are not logged.
//
// Call sites look like a plain log.Printf("node %s: ...") line but emit
// logrus structured fields instead, following the
// logrus.Infof/Debugf/Errorf shapes used throughout the
// moby-moby/libnetwork networkdb package in the retrieval pack.
package simlog

import (
	"github.com/sirupsen/logrus"
)

// Fields is a type alias so callers don't need to import logrus directly.
type Fields = logrus.Fields

// Logger wraps a *logrus.Entry with the run's correlation id already
// attached.
type Logger struct {
	entry *logrus.Entry
}

// New creates a Logger tagged with runID, used as the "run_id" field on
// every subsequent entry so concurrently-running simulations (as happen in
// tests) don't interleave confusingly in shared output.
func New(runID string) *Logger {
	return &Logger{entry: logrus.WithField("run_id", runID)}
}

// Node returns a child logger scoped to a single node's address.
func (l *Logger) Node(ip string) *Logger {
	return &Logger{entry: l.entry.WithField("node", ip)}
}

// Event returns a child logger tagged with a named event, e.g.
// "join_query_broadcast", "route_added", "ip_delivered".
func (l *Logger) Event(name string) *Logger {
	return &Logger{entry: l.entry.WithField("event", name)}
}

// With attaches arbitrary structured fields.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// Info logs at info level.
func (l *Logger) Info(msg string) { l.entry.Info(msg) }

// Debug logs at debug level.
func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string) { l.entry.Warn(msg) }

// Error logs at error level.
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

// Discard returns a Logger whose output goes nowhere, used by tests that
// want the real call sites exercised without spamming test output.
func Discard() *Logger {
	lg := logrus.New()
	lg.SetOutput(discardWriter{})
	return &Logger{entry: logrus.NewEntry(lg)}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
