//go:build !windows

package process

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

func configureCmdSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func toSyscall(sig Signal) syscall.Signal {
	if sig == SignalKill {
		return syscall.SIGKILL
	}
	return syscall.SIGTERM
}

func signalPID(pid int, sig Signal) error {
	if err := syscall.Kill(pid, toSyscall(sig)); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("pid %d: %w", pid, ErrNotFound)
		}
		return fmt.Errorf("send %s to pid %d: %w", sig, pid, err)
	}
	return nil
}

// signalGroup delivers sig to the process group led by pid.
func signalGroup(pid int, sig Signal) error {
	if err := syscall.Kill(-pid, toSyscall(sig)); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("process group %d: %w", pid, ErrNotFound)
		}
		return fmt.Errorf("send %s to process group %d: %w", sig, pid, err)
	}
	return nil
}
