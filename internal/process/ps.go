package process

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// psColumns is the number of whitespace separated columns printed by
// `ps aux`; the last one holds the full command line.
const psColumns = 11

type psDirectory struct {
	pkillSweeper
	run commandRunner
}

func newPSDirectory() *psDirectory {
	return &psDirectory{pkillSweeper: pkillSweeper{run: runCommand}, run: runCommand}
}

func (d *psDirectory) List(ctx context.Context) ([]Match, error) {
	out, err := d.run(ctx, "ps", "aux")
	if err != nil {
		return nil, fmt.Errorf("ps aux: %w", err)
	}
	return parsePS(out), nil
}

func (d *psDirectory) Signal(pid int, sig Signal) error {
	return signalPID(pid, sig)
}

// parsePS extracts USER, PID, RSS and COMMAND from `ps aux` output. The
// header row and malformed rows are skipped.
func parsePS(out []byte) []Match {
	var matches []Match
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := splitFields(scanner.Text(), psColumns)
		if len(fields) < psColumns {
			continue
		}
		pid, err := strconv.Atoi(fields[1])
		if err != nil || pid <= 0 {
			continue
		}
		m := Match{PID: pid, Owner: fields[0], Command: fields[10]}
		if kib, err := strconv.ParseInt(fields[5], 10, 64); err == nil && kib > 0 {
			m.RSS = kib * 1024
		}
		matches = append(matches, m)
	}
	return matches
}

// splitFields splits s around runs of whitespace into at most n fields. The
// final field keeps its inner spacing.
func splitFields(s string, n int) []string {
	var fields []string
	rest := strings.TrimSpace(s)
	for rest != "" && len(fields) < n-1 {
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			break
		}
		fields = append(fields, rest[:idx])
		rest = strings.TrimLeft(rest[idx:], " \t")
	}
	if rest != "" {
		fields = append(fields, rest)
	}
	return fields
}
