package sas

import "io"

// transport launches a SAS interpreter somewhere and exposes its stdio.
// close tears the interpreter down; it is called exactly once, after the
// stdin pipe has been closed.
type transport interface {
	start(command string) (io.WriteCloser, io.Reader, io.Reader, error)
	close() error
}
