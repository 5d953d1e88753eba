package gopsutil

import (
	"os/exec"
	"syscall"
)

// detachedProcess is DETACHED_PROCESS from the Windows process creation flags.
const detachedProcess = 0x00000008

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: detachedProcess}
}
