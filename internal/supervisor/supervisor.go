// Package supervisor drives the lifecycle of the single worker process
// described by a config.Target: discovery, escalating termination, start with
// output streaming, restart, status and liveness monitoring.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Paintersrp/botctl/internal/config"
	"github.com/Paintersrp/botctl/internal/metrics"
	"github.com/Paintersrp/botctl/internal/process"
)

// Supervisor manages the worker described by its target. A Supervisor is
// constructed once per botctl invocation and is not safe for concurrent use.
type Supervisor struct {
	target *config.Target
	dir    process.Directory
	finder *process.Finder

	out io.Writer
	log logrus.FieldLogger

	sleep       func(context.Context, time.Duration) error
	getenv      func(string) string
	environ     func() []string
	spawn       func(process.SpawnSpec) (ownedChild, error)
	notify      func(chan<- os.Signal)
	stopNotify  func(chan<- os.Signal)
	runVersion  func(ctx context.Context, argv []string) (string, error)
	fileExists  func(string) bool
	graceTimer  func(time.Duration) <-chan time.Time
	pollTimeout func(time.Duration) <-chan time.Time
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithOutput directs operator-facing progress output to w.
func WithOutput(w io.Writer) Option {
	return func(s *Supervisor) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Supervisor) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Supervisor for target scanning dir.
func New(target *config.Target, dir process.Directory, opts ...Option) *Supervisor {
	s := &Supervisor{
		target:      target,
		dir:         dir,
		out:         os.Stdout,
		log:         logrus.StandardLogger(),
		sleep:       sleepWithContext,
		getenv:      os.Getenv,
		environ:     os.Environ,
		spawn:       spawnChild,
		notify:      notifyTermination,
		stopNotify:  func(c chan<- os.Signal) { signal.Stop(c) },
		runVersion:  runVersion,
		fileExists:  fileExists,
		graceTimer:  time.After,
		pollTimeout: time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.finder = process.NewFinder(dir, process.Matcher{
		Signatures: target.Match.Signatures,
		Suffixes:   target.Match.Suffixes,
		Self:       selfSignatures(target.Match.Self),
	}, s.log)
	return s
}

// Target returns the target managed by the supervisor.
func (s *Supervisor) Target() *config.Target {
	return s.target
}

// Find scans the process table for running workers.
func (s *Supervisor) Find(ctx context.Context) []process.Match {
	matches := s.finder.Find(ctx)
	metrics.SetMatchedProcesses(len(matches))
	return matches
}

func (s *Supervisor) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Supervisor) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

// selfSignatures adds the name of the running binary so that botctl never
// discovers itself, even when its arguments mention the worker module.
func selfSignatures(configured []string) []string {
	self := append([]string(nil), configured...)
	if len(os.Args) > 0 {
		if name := strings.TrimSpace(baseName(os.Args[0])); name != "" {
			self = append(self, name)
		}
	}
	return self
}

func baseName(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func notifyTermination(c chan<- os.Signal) {
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
}

func spawnChild(spec process.SpawnSpec) (ownedChild, error) {
	child, err := process.Spawn(spec)
	if err != nil {
		return nil, err
	}
	return child, nil
}

func runVersion(ctx context.Context, argv []string) (string, error) {
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
	return strings.TrimSpace(string(out)), err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
