//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid.
func KillProcessGroup(pid int) {
	// Best-effort; the launcher kills the leader on its own afterwards
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
