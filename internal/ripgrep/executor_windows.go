//go:build windows

package ripgrep

import (
	"os"
	"os/exec"
)

// Windows has no process groups in the POSIX sense; killing the direct
// child is the best available behavior.
func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := cmd.Process.Kill()
	if err == os.ErrProcessDone {
		return nil
	}
	return err
}
