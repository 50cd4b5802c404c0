//go:build linux

package process

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/procfs"
)

const procRoot = procfs.DefaultMountPoint

type procfsDirectory struct {
	pkillSweeper
	fs   procfs.FS
	root string
}

func newProcfsDirectory(root string) (Directory, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open procfs %s: %w", root, err)
	}
	return &procfsDirectory{pkillSweeper: pkillSweeper{run: runCommand}, fs: fs, root: root}, nil
}

func (d *procfsDirectory) List(ctx context.Context) ([]Match, error) {
	procs, err := d.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.root, err)
	}

	owners := make(map[uint32]string)
	matches := make([]Match, 0, len(procs))
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Kernel threads and processes that exited mid-scan have no command line.
		args, err := p.CmdLine()
		if err != nil || len(args) == 0 {
			continue
		}
		m := Match{PID: p.PID, Command: strings.Join(args, " ")}
		if stat, err := p.Stat(); err == nil {
			m.RSS = int64(stat.ResidentMemory())
		}
		m.Owner = d.owner(p.PID, owners)
		matches = append(matches, m)
	}
	return matches, nil
}

func (d *procfsDirectory) owner(pid int, cache map[uint32]string) string {
	info, err := os.Stat(filepath.Join(d.root, strconv.Itoa(pid)))
	if err != nil {
		return ""
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}
	if name, ok := cache[st.Uid]; ok {
		return name
	}
	name := strconv.FormatUint(uint64(st.Uid), 10)
	if u, err := user.LookupId(name); err == nil {
		name = u.Username
	}
	cache[st.Uid] = name
	return name
}

func (d *procfsDirectory) Signal(pid int, sig Signal) error {
	return signalPID(pid, sig)
}
