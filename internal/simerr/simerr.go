// Package simerr defines the error kinds used at the control-surface
// boundary. Protocol-step errors inside internal/node are
// recovered locally and never surface as Go errors; these sentinels are for
// admin/command-level failures that the console reports to its user while
// the simulation keeps running.
package simerr

import "errors"

var (
	// ErrNodeConnect covers a missing/duplicate node IP or an attempted
	// self-connect.
	ErrNodeConnect = errors.New("node connect error")

	// ErrInputMismatch covers a malformed command or address syntax.
	ErrInputMismatch = errors.New("input mismatch")

	// ErrNotFound covers a reference to an IP that is not a known node.
	ErrNotFound = errors.New("not found")

	// ErrFatal names unrecoverable scheduler state. Scheduler.Run does not
	// return errors, and no code in this module produces ErrFatal; the worker
	// loop ends only on Shutdown or context cancellation.
	ErrFatal = errors.New("fatal scheduler error")
)
