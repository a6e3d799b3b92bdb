//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its child tree with taskkill.
func KillProcessGroup(pid int) {
	// /F forces, /T walks the tree
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is numeric
}
