package audio

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// ExecCmdCtx launches an external program in dir. Tests substitute a recorder.
type ExecCmdCtx = func(ctx context.Context, dir, name string, args ...string) Cmd

// Cmd is the part of *exec.Cmd the runner needs.
// Run returns the captured stderr alongside the error.
type Cmd interface {
	Run() (stderr []byte, err error)
}

type osCmd struct {
	cmd *exec.Cmd
}

func (c *osCmd) Run() ([]byte, error) {
	var stderr bytes.Buffer
	c.cmd.Stderr = &stderr
	err := c.cmd.Run()
	return stderr.Bytes(), err
}

// ExecCommand runs programs with os/exec. The process is killed when ctx is done.
func ExecCommand(ctx context.Context, dir, name string, args ...string) Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// don't hang on pipes held open by grandchildren after a kill
	cmd.WaitDelay = 5 * time.Second
	return &osCmd{cmd: cmd}
}

// exitCoder is implemented by *exec.ExitError and by test fakes.
type exitCoder interface {
	ExitCode() int
}
