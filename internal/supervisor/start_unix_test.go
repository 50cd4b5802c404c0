//go:build !windows

package supervisor

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/botctl/internal/process"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartForceKillsWorkerIgnoringTerm(t *testing.T) {
	h := newHarness()
	h.env["MTG_DISCORD_TOKEN"] = "secret-token"
	out := &lockedBuffer{}
	h.sup.out = out
	h.sup.spawn = spawnChild
	h.sup.graceTimer = time.After
	h.sup.target.Timing.Grace.Duration = 200 * time.Millisecond
	h.sup.target.Runner.Command = []string{"/bin/sh", "-c", "trap '' TERM; echo ready; sleep 30"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- h.sup.Start(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[MTG BOT] ready")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker ignoring SIGTERM was not killed")
	}
	require.Contains(t, out.String(), "Force killing MTG Card Bot process...")
	require.Contains(t, out.String(), "force terminated")
}

func TestStartPropagatesRealExitCode(t *testing.T) {
	h := newHarness()
	h.env["MTG_DISCORD_TOKEN"] = "secret-token"
	h.sup.spawn = spawnChild
	h.sup.target.Runner.Command = []string{"/bin/sh", "-c", "echo bye >&2; exit 4"}

	err := h.sup.Start(context.Background())
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 4, exitErr.Code)
	require.Contains(t, h.out.String(), "[MTG BOT] bye")
}

func TestStartReturnsWhileDescendantKeepsWriting(t *testing.T) {
	h := newHarness()
	h.env["MTG_DISCORD_TOKEN"] = "secret-token"
	out := &lockedBuffer{}
	h.sup.out = out
	h.sup.target.Timing.OutputPoll.Duration = 100 * time.Millisecond
	h.sup.target.Runner.Command = []string{
		"/bin/sh", "-c", "(i=0; while [ $i -lt 500 ]; do echo tick; i=$((i+1)); sleep 0.02; done) & exit 0",
	}

	var child *process.Child
	h.sup.spawn = func(spec process.SpawnSpec) (ownedChild, error) {
		c, err := process.Spawn(spec)
		if err != nil {
			return nil, err
		}
		child = c
		return c, nil
	}

	errCh := make(chan error, 1)
	go func() { errCh <- h.sup.Start(context.Background()) }()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("start did not return after the worker exited")
	}
	require.Contains(t, out.String(), "exited normally")

	// The reader was released, so the output stream ends even though the
	// backgrounded loop may still be running.
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-child.Lines():
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 10*time.Millisecond)
	_ = child.Kill()
}
