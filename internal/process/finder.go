package process

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// scanArtifacts are substrings of rows produced by the table scan itself.
var scanArtifacts = []string{"grep", "ps aux"}

// Matcher decides whether a command line belongs to the worker program.
type Matcher struct {
	// Signatures are substrings identifying an invocation of the worker.
	Signatures []string
	// Suffixes identify console entry points; the command must end with one.
	Suffixes []string
	// Self are substrings identifying botctl's own invocation.
	Self []string
}

// Matches reports whether command is an invocation of the worker and not of
// botctl or the scanner.
func (m Matcher) Matches(command string) bool {
	command = strings.TrimSpace(command)
	if command == "" {
		return false
	}
	if containsAny(command, m.Self) || containsAny(command, scanArtifacts) {
		return false
	}
	if containsAny(command, m.Signatures) {
		return true
	}
	for _, suffix := range m.Suffixes {
		if suffix != "" && strings.HasSuffix(command, suffix) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// Finder discovers running instances of the worker.
type Finder struct {
	dir     Directory
	matcher Matcher
	selfPID int
	log     logrus.FieldLogger
}

// NewFinder constructs a Finder scanning dir with matcher.
func NewFinder(dir Directory, matcher Matcher, log logrus.FieldLogger) *Finder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Finder{dir: dir, matcher: matcher, selfPID: os.Getpid(), log: log}
}

// Find scans the process table once. A failing scan is logged and yields no
// matches so that status and stop keep working on restricted hosts.
func (f *Finder) Find(ctx context.Context) []Match {
	rows, err := f.dir.List(ctx)
	if err != nil {
		f.log.WithError(fmt.Errorf("%w: %v", ErrDiscoveryUnavailable, err)).Warn("process table unavailable; assuming no running instances")
		return nil
	}
	var matches []Match
	for _, row := range rows {
		if row.PID == f.selfPID {
			continue
		}
		if f.matcher.Matches(row.Command) {
			matches = append(matches, row)
		}
	}
	return matches
}
