// Package client holds the one SAS session this process may have open, and
// layers the drain loop and file submission on top of the workspace
// primitives.
package client

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/chrisjb82/powerSAS/sas"
)

// precondition failures; reported as-is, never retried
var (
	ErrNoSession     = errors.New("no active session, connect first")
	ErrSessionActive = errors.New("a session is already active, disconnect first")
)

// Workspace is the slice of sas.Workspace the client drives.
type Workspace interface {
	Submit(code string) error
	FlushLog(max int) (string, error)
	FlushList(max int) (string, error)
	Close() error
}

// OpenFunc produces a workspace for a connect attempt.
type OpenFunc func(def sas.ServerDef, cred sas.Credential) (Workspace, error)

// Open adapts sas.Open to an OpenFunc.
func Open(opts ...sas.Option) OpenFunc {
	return func(def sas.ServerDef, cred sas.Credential) (Workspace, error) {
		return sas.Open(def, cred, opts...)
	}
}

// Client owns at most one live workspace. Like the session it wraps, it is
// meant for a single interactive user and does no locking.
type Client struct {
	open      OpenFunc
	ws        Workspace
	chunkSize int
}

// New returns a disconnected client. chunkSize bounds each flush; 0 selects
// sas.DefaultChunkSize.
func New(open OpenFunc, chunkSize int) *Client {
	if chunkSize <= 0 {
		chunkSize = sas.DefaultChunkSize
	}
	return &Client{open: open, chunkSize: chunkSize}
}

// Active reports whether a session is open.
func (c *Client) Active() bool {
	return c.ws != nil
}

// Connect opens a session. Connecting while one is active is a precondition
// failure: the prior handle is neither leaked nor replaced.
func (c *Client) Connect(def sas.ServerDef, cred sas.Credential) error {
	if c.ws != nil {
		return ErrSessionActive
	}
	ws, err := c.open(def, cred)
	if err != nil {
		return err
	}
	c.ws = ws
	return nil
}

// Disconnect closes the active session. The handle is cleared even when the
// close fails, so a fresh connect stays possible.
func (c *Client) Disconnect() error {
	if c.ws == nil {
		return ErrNoSession
	}
	err := c.ws.Close()
	c.ws = nil
	return err
}

// Submit sends one unit of code and returns the drained log and listing.
func (c *Client) Submit(code string) (string, string, error) {
	var log, lst strings.Builder
	err := c.SubmitTo(&log, &lst, code)
	return log.String(), lst.String(), err
}

// SubmitTo sends one unit of code and streams flush chunks to logW and lstW
// as they are drained. A blank unit produces no output and is not sent to
// the interpreter at all.
func (c *Client) SubmitTo(logW, lstW io.Writer, code string) error {
	if c.ws == nil {
		return ErrNoSession
	}
	if strings.TrimSpace(code) == "" {
		return nil
	}
	if err := c.ws.Submit(code); err != nil {
		return err
	}
	if err := drain(logW, c.ws.FlushLog, c.chunkSize); err != nil {
		return err
	}
	return drain(lstW, c.ws.FlushList, c.chunkSize)
}

// SubmitFile submits the program in path and writes its outputs to sibling
// files: dir/a.sas produces dir/a.log and dir/a.lst, both truncated first
// and written incrementally. The output paths are returned.
func (c *Client) SubmitFile(path string) (string, string, error) {
	if c.ws == nil {
		return "", "", ErrNoSession
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return "", "", errors.Wrap(err, "reading program")
	}

	logPath, lstPath := OutputNames(path)
	logF, err := os.Create(logPath)
	if err != nil {
		return "", "", errors.Wrap(err, "creating log file")
	}
	defer logF.Close()
	lstF, err := os.Create(lstPath)
	if err != nil {
		return "", "", errors.Wrap(err, "creating listing file")
	}
	defer lstF.Close()

	return logPath, lstPath, c.SubmitTo(logF, lstF, string(code))
}

// OutputNames derives the sibling .log and .lst paths for a program file.
func OutputNames(path string) (string, string) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + ".log", base + ".lst"
}

// drain polls a flush primitive in bounded chunks until it comes back empty.
func drain(w io.Writer, flush func(int) (string, error), chunk int) error {
	for {
		s, err := flush(chunk)
		if err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
}
