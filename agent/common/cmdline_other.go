//go:build !windows

package common

import "os/exec"

func setRawCmdLine(_ *exec.Cmd, _ string) {}
