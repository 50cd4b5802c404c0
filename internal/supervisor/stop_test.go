package supervisor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/botctl/internal/process"
)

func TestStopWithNoWorkersDoesNotWait(t *testing.T) {
	h := newHarness()

	report, err := h.sup.Stop(context.Background())
	require.NoError(t, err)
	require.True(t, report.Clean())
	require.Empty(t, h.sleeps)
	require.Empty(t, h.dir.signals)
	require.Empty(t, h.dir.sweeps)
	require.Contains(t, h.out.String(), "No existing MTG Card Bot processes found")
}

func TestStopGracefulShutdownSkipsForceKill(t *testing.T) {
	h := newHarness(
		[]process.Match{worker(101), worker(102)},
		nil,
		nil,
	)

	report, err := h.sup.Stop(context.Background())
	require.NoError(t, err)
	require.True(t, report.Clean())
	require.Equal(t, []int{101, 102}, report.Terminated)
	require.Empty(t, report.Forced)
	require.Equal(t, []int{101, 102}, h.dir.signalsOf(process.SignalTerminate))
	require.Empty(t, h.dir.signalsOf(process.SignalKill))

	timing := h.sup.target.Timing
	require.Equal(t, []time.Duration{timing.Grace.Duration, timing.Settle.Duration}, h.sleeps)
	require.Equal(t, h.sup.target.Sweep, h.dir.sweeps)
	require.Contains(t, h.out.String(), "All processes terminated successfully")
}

func TestStopEscalatesOnlyForSurvivors(t *testing.T) {
	h := newHarness(
		[]process.Match{worker(101), worker(102)},
		[]process.Match{worker(102)},
		nil,
	)

	report, err := h.sup.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{102}, report.Forced)

	// Every SIGTERM precedes the first SIGKILL.
	require.Len(t, h.dir.signals, 3)
	require.Equal(t, process.SignalTerminate, h.dir.signals[0].sig)
	require.Equal(t, process.SignalTerminate, h.dir.signals[1].sig)
	require.Equal(t, signalCall{pid: 102, sig: process.SignalKill}, h.dir.signals[2])

	timing := h.sup.target.Timing
	require.Equal(t, []time.Duration{
		timing.Grace.Duration,
		timing.ForcePause.Duration,
		timing.Settle.Duration,
	}, h.sleeps)
}

func TestStopTreatsVanishedProcessAsClean(t *testing.T) {
	h := newHarness([]process.Match{worker(101), worker(102)}, nil)
	h.dir.failingWith(101, fmt.Errorf("signal pid 101: %w", process.ErrNotFound))
	h.dir.failingWith(102, errPermission)

	report, err := h.sup.Stop(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Terminated)
	require.Len(t, report.Failures, 1)

	failure := report.Failures[0]
	require.Equal(t, 102, failure.PID)
	require.Equal(t, process.SignalTerminate, failure.Signal)
	require.ErrorIs(t, failure, errPermission)

	out := h.out.String()
	require.Contains(t, out, "Process 101 already terminated")
	require.Contains(t, out, "Error sending SIGTERM to PID 102")
}

func TestStopReportsResidualProcesses(t *testing.T) {
	h := newHarness([]process.Match{worker(101), worker(205)})

	report, err := h.sup.Stop(context.Background())
	require.ErrorIs(t, err, ErrResidualProcesses)
	require.Contains(t, err.Error(), "pids 101, 205")
	require.False(t, report.Clean())
	require.Equal(t, []int{101, 205}, report.Forced)
	require.Len(t, report.Remaining, 2)

	out := h.out.String()
	require.Contains(t, out, "Some processes may still be running")
	require.Contains(t, out, "kill -9 101")
	require.Contains(t, out, "kill -9 205")
}

func TestStopIgnoresSweepFailures(t *testing.T) {
	h := newHarness([]process.Match{worker(101)}, nil)
	h.dir.sweepErr = errors.New("pkill: exit status 2")

	_, err := h.sup.Stop(context.Background())
	require.NoError(t, err)
	require.Len(t, h.dir.sweeps, len(h.sup.target.Sweep))
	require.NotEmpty(t, h.logs.AllEntries())
	require.Equal(t, "sweep failed", h.logs.LastEntry().Message)
}

func TestTerminateDeclinedConfirmationSendsNothing(t *testing.T) {
	h := newHarness([]process.Match{worker(101)})

	var asked []process.Match
	report, err := h.sup.Terminate(context.Background(), func(matches []process.Match) bool {
		asked = matches
		return false
	})
	require.ErrorIs(t, err, ErrCancelled)
	require.Equal(t, report.Matched, asked)
	require.Empty(t, h.dir.signals)
	require.Empty(t, h.sleeps)
	require.Contains(t, h.out.String(), "Operation cancelled")
}

func TestTerminateStopsWaitingWhenCancelled(t *testing.T) {
	h := newHarness([]process.Match{worker(101)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.sup.Terminate(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []int{101}, h.dir.signalsOf(process.SignalTerminate))
	require.Empty(t, h.dir.signalsOf(process.SignalKill))
}
