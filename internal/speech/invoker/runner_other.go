//go:build !windows

package invoker

import "os/exec"

func hideWindow(*exec.Cmd) {}
