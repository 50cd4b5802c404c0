package supervisor

import (
	"errors"
	"fmt"

	"github.com/Paintersrp/botctl/internal/process"
)

var (
	// ErrDiscoveryUnavailable is logged, never returned, when a process table
	// scan fails; discovery then reports no workers.
	ErrDiscoveryUnavailable = process.ErrDiscoveryUnavailable
	// ErrAlreadyRunning reports that start found an existing worker.
	ErrAlreadyRunning = errors.New("worker is already running")
	// ErrMissingCredential reports that the credential variable is unset or empty.
	ErrMissingCredential = errors.New("missing credential")
	// ErrSpawnFailure reports that the launcher could not be started.
	ErrSpawnFailure = errors.New("failed to start worker")
	// ErrResidualProcesses reports workers that survived the full escalation.
	ErrResidualProcesses = errors.New("worker processes still running after forced termination")
	// ErrCancelled reports that the operator declined a confirmation prompt.
	ErrCancelled = errors.New("operation cancelled")
)

// SignalError records a signal that could not be delivered to a worker.
type SignalError struct {
	PID    int
	Signal process.Signal
	Err    error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%s pid %d: %v", e.Signal, e.PID, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}

// ExitError reports a worker that exited with a non-zero status. A negative
// Code is the number of the signal that ended the worker.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("worker terminated by signal %d", -e.Code)
	}
	return fmt.Sprintf("worker exited with code %d", e.Code)
}
