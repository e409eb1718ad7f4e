package common

import (
	"os/exec"
	"syscall"
)

// msiexec parses its own command line, so PROPERTY="value with spaces" must reach it unescaped
func setRawCmdLine(cmd *exec.Cmd, line string) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: line}
}
