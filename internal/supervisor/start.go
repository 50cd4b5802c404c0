package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/Paintersrp/botctl/internal/cliutil"
	"github.com/Paintersrp/botctl/internal/metrics"
	"github.com/Paintersrp/botctl/internal/process"
)

// ownedChild is the subset of *process.Child the supervisor relies on.
type ownedChild interface {
	Pid() int
	Lines() <-chan string
	Done() <-chan struct{}
	ExitCode() int
	Terminate() error
	Kill() error
	Release()
}

// Start launches the worker and streams its output until it exits or botctl
// is interrupted. An interrupt stops the worker and counts as success.
func (s *Supervisor) Start(ctx context.Context) error {
	if matches := s.Find(ctx); len(matches) > 0 {
		s.printf("%s processes are already running!\n", s.target.Name)
		s.println("Use 'stop' or 'restart' to manage existing instances.")
		metrics.ObserveStart("already_running")
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, pidList(matches))
	}

	token := s.getenv(s.target.Credential)
	if token == "" {
		s.printf("Missing environment variable: %s\n", s.target.Credential)
		s.println("Set it in your .env file or environment.")
		metrics.ObserveStart("missing_credential")
		return fmt.Errorf("%w: %s is not set", ErrMissingCredential, s.target.Credential)
	}

	s.printf("Starting %s...\n", s.target.Name)
	command := s.target.Runner.Command
	child, err := s.spawn(process.SpawnSpec{
		Command: command,
		Env:     s.environ(),
		Dir:     s.target.Workdir,
	})
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			s.printf("'%s' command not found. Please install it first.\n", command[0])
		} else {
			s.printf("Failed to start %s: %v\n", s.target.Name, err)
		}
		metrics.ObserveStart("spawn_failure")
		return fmt.Errorf("%w: %v", ErrSpawnFailure, err)
	}
	metrics.ObserveStart("started")

	s.printf("%s started successfully!\n", s.target.Name)
	s.printf("   Process ID: %d\n", child.Pid())
	s.printf("   Command: %s\n", strings.Join(command, " "))
	s.println()
	s.println("Press Ctrl+C to stop, or run 'botctl stop' from another terminal")
	s.println(cliutil.Rule(60))

	signals := make(chan os.Signal, 2)
	s.notify(signals)
	defer s.stopNotify(signals)

	run := &childRun{sup: s, child: child, redactor: cliutil.NewRedactor(token)}
	return run.supervise(ctx, signals)
}

// childRun tracks one spawned worker. Its cleanup runs at most once no matter
// how many interrupts arrive.
type childRun struct {
	sup      *Supervisor
	child    ownedChild
	redactor *cliutil.Redactor
	cleaned  atomic.Bool
}

func (r *childRun) supervise(ctx context.Context, signals <-chan os.Signal) error {
	s := r.sup
	defer r.child.Release()
	lines := r.child.Lines()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			r.emit(line)
		case <-r.child.Done():
			r.drain(lines, ctx.Done(), signals)
			return r.exitResult()
		case sig := <-signals:
			s.printf("\nReceived signal %s, shutting down...\n", sig)
			r.cleanup()
			r.drain(lines, ctx.Done(), signals)
			return nil
		case <-ctx.Done():
			s.printf("\nStopping %s...\n", s.target.Name)
			r.cleanup()
			r.drain(lines, nil, signals)
			return nil
		}
	}
}

func (r *childRun) emit(line string) {
	r.sup.println(cliutil.ChildLine(r.sup.target.Tag, r.redactor.Redact(line)))
}

// drain prints output still buffered after the worker exited. Descendants may
// keep the pipe open and write forever, so draining stops once the output poll
// window has elapsed in total, or earlier on cancel or a signal.
func (r *childRun) drain(lines <-chan string, cancel <-chan struct{}, signals <-chan os.Signal) {
	if lines == nil {
		return
	}
	deadline := r.sup.pollTimeout(r.sup.target.Timing.OutputPoll.Duration)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			r.emit(line)
		case <-deadline:
			return
		case <-cancel:
			return
		case <-signals:
			return
		}
	}
}

func (r *childRun) exitResult() error {
	s := r.sup
	code := r.child.ExitCode()
	metrics.SetChildExitCode(code)
	switch {
	case code == 0:
		s.printf("\n%s exited normally\n", s.target.Name)
		return nil
	case code < 0:
		s.printf("\n%s was terminated by signal %d (%s)\n", s.target.Name, -code, syscall.Signal(-code))
		return &ExitError{Code: code}
	}
	s.printf("\n%s exited with code %d\n", s.target.Name, code)
	return &ExitError{Code: code}
}

// cleanup terminates the worker, waits for the grace window and then kills
// it, blocking until the worker has been reaped.
func (r *childRun) cleanup() {
	if !r.cleaned.CompareAndSwap(false, true) {
		return
	}
	s := r.sup
	select {
	case <-r.child.Done():
		return
	default:
	}

	s.printf("Terminating %s process...\n", s.target.Name)
	if err := r.child.Terminate(); err != nil {
		s.printf("Error during cleanup: %v\n", err)
	}
	select {
	case <-r.child.Done():
		s.printf("%s stopped gracefully\n", s.target.Name)
		metrics.SetChildExitCode(r.child.ExitCode())
		return
	case <-s.graceTimer(s.target.Timing.Grace.Duration):
	}

	s.printf("Force killing %s process...\n", s.target.Name)
	if err := r.child.Kill(); err != nil {
		s.printf("Error during cleanup: %v\n", err)
	}
	<-r.child.Done()
	metrics.SetChildExitCode(r.child.ExitCode())
	s.printf("%s force terminated\n", s.target.Name)
}
