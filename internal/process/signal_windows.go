//go:build windows

package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

func configureCmdSysProcAttr(cmd *exec.Cmd) {}

// signalPID kills pid. Windows has no graceful signal for arbitrary
// processes, so both signals terminate immediately.
func signalPID(pid int, sig Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("pid %d: %w", pid, ErrNotFound)
	}
	defer proc.Release()
	if err := proc.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("pid %d: %w", pid, ErrNotFound)
		}
		return fmt.Errorf("send %s to pid %d: %w", sig, pid, err)
	}
	return nil
}

func signalGroup(pid int, sig Signal) error {
	return signalPID(pid, sig)
}
