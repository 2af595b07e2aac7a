//go:build windows

package monitor

import "os/exec"

func detach(cmd *exec.Cmd) {}
