package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	stdruntime "runtime"
	"strings"
)

// Match is a single row of the process table.
type Match struct {
	PID     int
	Owner   string
	Command string
	// RSS is the resident set size in bytes, zero when unknown.
	RSS int64
}

// Signal identifies the termination signals botctl delivers.
type Signal int

const (
	SignalTerminate Signal = iota + 1
	SignalKill
)

func (s Signal) String() string {
	switch s {
	case SignalTerminate:
		return "SIGTERM"
	case SignalKill:
		return "SIGKILL"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

var (
	// ErrNotFound reports that a signalled process no longer exists.
	ErrNotFound = errors.New("process not found")
	// ErrDiscoveryUnavailable reports that the process table could not be read.
	ErrDiscoveryUnavailable = errors.New("process table unavailable")
)

// Directory lists the process table and delivers signals to its members.
type Directory interface {
	List(ctx context.Context) ([]Match, error)
	Signal(pid int, sig Signal) error
}

// Sweeper is implemented by directories able to bulk-kill every process whose
// command line matches a pattern.
type Sweeper interface {
	Sweep(ctx context.Context, pattern string) error
}

// Backend names accepted by NewDirectory.
const (
	BackendAuto   = "auto"
	BackendPS     = "ps"
	BackendProcfs = "procfs"
)

// NewDirectory constructs the directory backend with the given name.
func NewDirectory(backend string) (Directory, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendAuto:
		if stdruntime.GOOS == "linux" {
			if info, err := os.Stat(procRoot); err == nil && info.IsDir() {
				return newProcfsDirectory(procRoot)
			}
		}
		return newPSDirectory(), nil
	case BackendPS:
		return newPSDirectory(), nil
	case BackendProcfs:
		return newProcfsDirectory(procRoot)
	default:
		return nil, fmt.Errorf("unknown process directory backend %q", backend)
	}
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// pkillSweeper bulk-kills through `pkill -f`.
type pkillSweeper struct {
	run commandRunner
}

func (s pkillSweeper) Sweep(ctx context.Context, pattern string) error {
	if _, err := s.run(ctx, "pkill", "-f", pattern); err != nil {
		var exitErr *exec.ExitError
		// pkill exits 1 when nothing matched.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil
		}
		return fmt.Errorf("pkill -f %q: %w", pattern, err)
	}
	return nil
}
