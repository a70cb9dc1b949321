package sas

import (
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// localTransport runs the interpreter as a child process, the way a desktop
// SAS session would be spawned. The launch command is split on whitespace.
type localTransport struct {
	cmd    *exec.Cmd
	logger *zap.Logger
}

func newLocalTransport(logger *zap.Logger) *localTransport {
	return &localTransport{logger: logger}
}

func (t *localTransport) start(command string) (io.WriteCloser, io.Reader, io.Reader, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, nil, nil, errors.New("empty interpreter command")
	}
	t.cmd = exec.Command(args[0], args[1:]...)

	stdin, err := t.cmd.StdinPipe()
	var stdout, stderr io.Reader
	if err == nil {
		stdout, err = t.cmd.StdoutPipe()
	}
	if err == nil {
		stderr, err = t.cmd.StderrPipe()
	}
	if err == nil {
		err = t.cmd.Start()
	}
	if err != nil {
		return nil, nil, nil, err
	}
	t.logger.Debug("interpreter started",
		zap.String("command", command), zap.Int("pid", t.cmd.Process.Pid))
	return stdin, stdout, stderr, nil
}

func (t *localTransport) close() error {
	if t.cmd == nil || t.cmd.Process == nil {
		return errors.New("interpreter not running")
	}
	// a nonzero exit only reflects errors in the last submitted program
	if err := t.cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return errors.Wrap(err, "waiting for interpreter exit")
		}
	}
	return nil
}
