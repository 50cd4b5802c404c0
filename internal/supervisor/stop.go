package supervisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/Paintersrp/botctl/internal/cliutil"
	"github.com/Paintersrp/botctl/internal/metrics"
	"github.com/Paintersrp/botctl/internal/process"
)

// StopReport describes what each phase of a termination sequence did.
type StopReport struct {
	// Matched are the workers found before any signal was sent.
	Matched []process.Match
	// Terminated lists the pids that received SIGTERM.
	Terminated []int
	// Forced lists the pids that received SIGKILL after the grace window.
	Forced []int
	// Failures are signals that could not be delivered for reasons other
	// than the process having exited.
	Failures []*SignalError
	// Remaining are the workers still present after verification.
	Remaining []process.Match
}

// Clean reports whether no worker survived the sequence.
func (r *StopReport) Clean() bool {
	return r != nil && len(r.Remaining) == 0
}

// ConfirmFunc is asked before any signal is sent. Returning false aborts the
// sequence with ErrCancelled.
type ConfirmFunc func(matches []process.Match) bool

// Stop terminates every running worker without asking for confirmation.
func (s *Supervisor) Stop(ctx context.Context) (*StopReport, error) {
	s.printf("Stopping %s...\n", s.target.Name)
	return s.Terminate(ctx, nil)
}

// Terminate runs the escalating termination sequence: SIGTERM to every
// worker, a grace window, SIGKILL to survivors, a best-effort pattern sweep
// and a final verification scan. When confirm is non-nil it is consulted
// once the workers have been listed.
func (s *Supervisor) Terminate(ctx context.Context, confirm ConfirmFunc) (*StopReport, error) {
	report := &StopReport{}
	timing := s.target.Timing

	report.Matched = s.Find(ctx)
	if len(report.Matched) == 0 {
		s.printf("No existing %s processes found\n", s.target.Name)
		metrics.ObserveStop("clean")
		return report, nil
	}

	s.printf("Found %d existing %s process(es):\n", len(report.Matched), s.target.Name)
	for _, m := range report.Matched {
		s.printf("   PID %d: %s\n", m.PID, cliutil.Truncate(m.Command, 80))
	}

	if confirm != nil && !confirm(report.Matched) {
		s.println("Operation cancelled")
		metrics.ObserveStop("cancelled")
		return report, ErrCancelled
	}

	s.println("Terminating existing processes...")
	for _, m := range report.Matched {
		s.printf("   Sending SIGTERM to PID %d...\n", m.PID)
		if s.deliver(report, m.PID, process.SignalTerminate) {
			report.Terminated = append(report.Terminated, m.PID)
		}
	}

	s.printf("Waiting for graceful shutdown (%s)...\n", timing.Grace.Duration)
	if err := s.sleep(ctx, timing.Grace.Duration); err != nil {
		return report, err
	}

	survivors := s.Find(ctx)
	if len(survivors) > 0 {
		s.println("Force killing remaining processes...")
		for _, m := range survivors {
			s.printf("   Force killing PID %d...\n", m.PID)
			if s.deliver(report, m.PID, process.SignalKill) {
				report.Forced = append(report.Forced, m.PID)
			}
			if err := s.sleep(ctx, timing.ForcePause.Duration); err != nil {
				return report, err
			}
		}
	}

	s.sweep(ctx)

	if err := s.sleep(ctx, timing.Settle.Duration); err != nil {
		return report, err
	}
	report.Remaining = s.Find(ctx)
	if len(report.Remaining) > 0 {
		s.println("Some processes may still be running:")
		for _, m := range report.Remaining {
			s.printf("   PID %d: %s\n", m.PID, cliutil.Truncate(m.Command, 60))
		}
		s.println("   You may need to manually kill them with:")
		for _, m := range report.Remaining {
			s.printf("   kill -9 %d\n", m.PID)
		}
		metrics.ObserveStop("residual")
		return report, fmt.Errorf("%w: %s", ErrResidualProcesses, pidList(report.Remaining))
	}

	s.println("All processes terminated successfully")
	metrics.ObserveStop("clean")
	return report, nil
}

// deliver sends sig to pid and reports whether the signal reached a live
// process. A process that already exited counts as clean.
func (s *Supervisor) deliver(report *StopReport, pid int, sig process.Signal) bool {
	err := s.dir.Signal(pid, sig)
	switch {
	case err == nil:
		metrics.ObserveSignal(sig.String(), "sent")
		return true
	case errors.Is(err, process.ErrNotFound):
		s.printf("   Process %d already terminated\n", pid)
		metrics.ObserveSignal(sig.String(), "gone")
		return false
	default:
		s.printf("   Error sending %s to PID %d: %v\n", sig, pid, err)
		report.Failures = append(report.Failures, &SignalError{PID: pid, Signal: sig, Err: err})
		metrics.ObserveSignal(sig.String(), "failed")
		return false
	}
}

// sweep bulk-kills by pattern. It may race the individual signals above and
// every failure is ignored.
func (s *Supervisor) sweep(ctx context.Context) {
	sweeper, ok := s.dir.(process.Sweeper)
	if !ok {
		return
	}
	for _, pattern := range s.target.Sweep {
		if err := sweeper.Sweep(ctx, pattern); err != nil {
			s.log.WithError(err).WithField("pattern", pattern).Debug("sweep failed")
		}
	}
}

func pidList(matches []process.Match) string {
	out := make([]byte, 0, len(matches)*6)
	for i, m := range matches {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = fmt.Appendf(out, "%d", m.PID)
	}
	return "pids " + string(out)
}
