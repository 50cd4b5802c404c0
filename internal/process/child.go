package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
)

const maxLineSize = 1024 * 1024

// SpawnSpec describes the worker process to launch.
type SpawnSpec struct {
	Command []string
	Env     []string
	Dir     string
}

// Child is the worker process owned by botctl. Standard output and standard
// error share a single pipe so lines arrive in the order they were written.
type Child struct {
	cmd   *exec.Cmd
	out   *os.File
	lines chan string
	done  chan struct{}

	released    chan struct{}
	releaseOnce sync.Once

	waitErr error
}

// Spawn starts the worker described by spec.
func Spawn(spec SpawnSpec) (*Child, error) {
	if len(spec.Command) == 0 {
		return nil, errors.New("spawn: command requires at least one argument")
	}

	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("spawn %s: output pipe: %w", spec.Command[0], err)
	}
	cmd.Stdout = w
	cmd.Stderr = w
	configureCmdSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("spawn %s: %w", strings.Join(spec.Command, " "), err)
	}
	// The child holds its own copy of the write end.
	w.Close()

	c := &Child{
		cmd:      cmd,
		out:      r,
		lines:    make(chan string, 64),
		done:     make(chan struct{}),
		released: make(chan struct{}),
	}
	go c.readLines(r)
	go func() {
		c.waitErr = cmd.Wait()
		close(c.done)
	}()
	return c, nil
}

func (c *Child) readLines(r io.ReadCloser) {
	defer close(c.lines)
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		select {
		case c.lines <- strings.TrimRight(scanner.Text(), "\r"):
		case <-c.released:
			return
		}
	}
	// Keep the pipe drained so an oversized line never blocks the worker.
	_, _ = io.Copy(io.Discard, r)
}

// Pid returns the operating system identifier of the child.
func (c *Child) Pid() int {
	return c.cmd.Process.Pid
}

// Lines streams the merged output of the child. The channel is closed once
// every writer of the pipe has exited or the child was released.
func (c *Child) Lines() <-chan string {
	return c.lines
}

// Done is closed once the child has been reaped.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// Release stops output delivery and closes the read end of the pipe, so the
// reader goroutine finishes even when descendants of the worker keep writing.
// Lines is closed shortly afterwards. Release is safe to call more than once.
func (c *Child) Release() {
	c.releaseOnce.Do(func() {
		close(c.released)
		_ = c.out.Close()
	})
}

// ExitCode reports the exit status of a reaped child. It returns -1 while the
// child is running and the negated signal number when a signal ended it.
func (c *Child) ExitCode() int {
	select {
	case <-c.done:
	default:
		return -1
	}
	if c.waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(c.waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return -int(ws.Signal())
		}
		return exitErr.ExitCode()
	}
	return -1
}

// Terminate asks the child's process group to shut down.
func (c *Child) Terminate() error {
	return c.signal(SignalTerminate)
}

// Kill forcibly stops the child's process group.
func (c *Child) Kill() error {
	return c.signal(SignalKill)
}

func (c *Child) signal(sig Signal) error {
	if c.cmd.Process == nil {
		return nil
	}
	if err := signalGroup(c.cmd.Process.Pid, sig); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
