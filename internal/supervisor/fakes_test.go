package supervisor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Paintersrp/botctl/internal/config"
	"github.com/Paintersrp/botctl/internal/process"
)

type signalCall struct {
	pid int
	sig process.Signal
}

// fakeDirectory serves scripted process table snapshots. Each List call
// consumes the next snapshot; the last one repeats.
type fakeDirectory struct {
	mu        sync.Mutex
	snapshots [][]process.Match
	listCalls int
	signals   []signalCall
	signalErr map[int]error
	sweeps    []string
	sweepErr  error
	onSignal  func(pid int, sig process.Signal)
}

func (d *fakeDirectory) List(context.Context) ([]process.Match, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.snapshots) == 0 {
		return nil, nil
	}
	idx := d.listCalls
	if idx >= len(d.snapshots) {
		idx = len(d.snapshots) - 1
	}
	d.listCalls++
	return d.snapshots[idx], nil
}

func (d *fakeDirectory) Signal(pid int, sig process.Signal) error {
	d.mu.Lock()
	d.signals = append(d.signals, signalCall{pid: pid, sig: sig})
	err := d.signalErr[pid]
	hook := d.onSignal
	d.mu.Unlock()
	if hook != nil {
		hook(pid, sig)
	}
	return err
}

func (d *fakeDirectory) Sweep(_ context.Context, pattern string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweeps = append(d.sweeps, pattern)
	return d.sweepErr
}

func (d *fakeDirectory) signalsOf(sig process.Signal) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	var pids []int
	for _, call := range d.signals {
		if call.sig == sig {
			pids = append(pids, call.pid)
		}
	}
	return pids
}

func (d *fakeDirectory) failingWith(pid int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.signalErr == nil {
		d.signalErr = make(map[int]error)
	}
	d.signalErr[pid] = err
}

func worker(pid int) process.Match {
	return process.Match{PID: pid, Owner: "bot", Command: "python -m mtg_card_bot"}
}

// fakeChild is a scripted worker. Terminate and Kill record calls and, when
// configured, make the child exit.
type fakeChild struct {
	mu          sync.Mutex
	lines       chan string
	done        chan struct{}
	doneOnce    sync.Once
	code        int
	terminates  int
	kills       int
	exitOnTerm  bool
	exitOnKill  bool
	terminateCh chan struct{}
	releases    int
	// holdLines keeps Lines open after exit, as when a descendant inherits
	// the pipe.
	holdLines bool
}

func newFakeChild() *fakeChild {
	return &fakeChild{
		lines:       make(chan string, 16),
		done:        make(chan struct{}),
		code:        -1,
		exitOnKill:  true,
		terminateCh: make(chan struct{}, 4),
	}
}

func (c *fakeChild) Pid() int { return 31337 }

func (c *fakeChild) Lines() <-chan string { return c.lines }

func (c *fakeChild) Done() <-chan struct{} { return c.done }

func (c *fakeChild) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

func (c *fakeChild) exit(code int) {
	c.doneOnce.Do(func() {
		c.mu.Lock()
		c.code = code
		hold := c.holdLines
		c.mu.Unlock()
		if !hold {
			close(c.lines)
		}
		close(c.done)
	})
}

func (c *fakeChild) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases++
}

func (c *fakeChild) releaseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releases
}

func (c *fakeChild) Terminate() error {
	c.mu.Lock()
	c.terminates++
	exit := c.exitOnTerm
	c.mu.Unlock()
	c.terminateCh <- struct{}{}
	if exit {
		c.exit(-1)
	}
	return nil
}

func (c *fakeChild) Kill() error {
	c.mu.Lock()
	c.kills++
	exit := c.exitOnKill
	c.mu.Unlock()
	if exit {
		c.exit(-1)
	}
	return nil
}

func (c *fakeChild) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminates, c.kills
}

type harness struct {
	sup      *Supervisor
	dir      *fakeDirectory
	out      *bytes.Buffer
	logs     *test.Hook
	sleeps   []time.Duration
	env      map[string]string
	spawns   int
	child    *fakeChild
	spawnErr error
	signals  chan os.Signal
}

func newHarness(snapshots ...[]process.Match) *harness {
	h := &harness{
		dir:     &fakeDirectory{snapshots: snapshots},
		out:     &bytes.Buffer{},
		env:     map[string]string{},
		child:   newFakeChild(),
		signals: make(chan os.Signal, 4),
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	h.logs = hook

	target := config.Default()
	h.sup = New(target, h.dir, WithOutput(h.out), WithLogger(logger))
	h.sup.sleep = func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return ctx.Err()
	}
	h.sup.getenv = func(key string) string { return h.env[key] }
	h.sup.environ = func() []string { return nil }
	h.sup.spawn = func(process.SpawnSpec) (ownedChild, error) {
		h.spawns++
		if h.spawnErr != nil {
			return nil, h.spawnErr
		}
		return h.child, nil
	}
	h.sup.notify = func(c chan<- os.Signal) {
		go func() {
			for sig := range h.signals {
				c <- sig
			}
		}()
	}
	h.sup.stopNotify = func(chan<- os.Signal) {}
	h.sup.runVersion = func(context.Context, []string) (string, error) {
		return "uv 0.4.18", nil
	}
	h.sup.fileExists = func(string) bool { return false }
	return h
}

var errPermission = errors.New("operation not permitted")
