package sas

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Workspace is the handle to one live SAS session. It is not safe for
// concurrent use: the tool assumes a single interactive user driving one
// session at a time.
type Workspace struct {
	tr     transport
	stdin  io.WriteCloser
	logs   *stream
	list   *stream
	logger *zap.Logger
	seq    int
	closed bool
}

// Open launches a SAS interpreter per def and attaches a workspace to its
// stdio streams. Credentials are only read here; they are not retained by
// the returned workspace.
func Open(def ServerDef, cred Credential, opts ...Option) (*Workspace, error) {
	o := newOptions(opts)
	if def.Command == "" {
		def.Command = DefaultCommand
	}

	var tr transport
	var err error
	switch def.Protocol {
	case "", "local":
		tr = newLocalTransport(o.logger)
	case "ssh", "bridge":
		tr, err = newBridgeTransport(def, cred, o.logger)
	default:
		err = errors.Errorf("unknown protocol %q", def.Protocol)
	}
	if err != nil {
		return nil, err
	}

	stdin, stdout, stderr, err := tr.start(def.Command)
	if err != nil {
		_ = tr.close()
		return nil, errors.Wrap(err, "starting "+def.Command)
	}
	o.logger.Info("workspace open",
		zap.String("protocol", def.Protocol), zap.String("host", def.Host))
	return &Workspace{
		tr:     tr,
		stdin:  stdin,
		logs:   newStream(stderr, true),
		list:   newStream(stdout, true),
		logger: o.logger,
	}, nil
}

// Submit sends one unit of code to the interpreter and returns once it has
// been processed. The produced output stays buffered for FlushLog and
// FlushList. Completion is detected by markers appended to the unit: a data
// step that echoes into the listing and a %put that echoes into the log.
// Both collectors strip the marker back out, and Submit waits for both
// sightings, so everything the unit wrote is buffered before it returns.
func (w *Workspace) Submit(code string) error {
	if w.closed {
		return errors.New("workspace is closed")
	}
	w.seq++
	tok := fmt.Sprintf("%s%d%s", markerPrefix, w.seq, markerSuffix)
	w.logs.drainMarks()
	w.list.drainMarks()

	unit := code
	if unit != "" && !strings.HasSuffix(unit, "\n") {
		unit += "\n"
	}
	unit += fmt.Sprintf("data _null_; file print; put \"%s\"; run;\n", tok)
	unit += fmt.Sprintf("%%put %s;\n", tok)
	if _, err := io.WriteString(w.stdin, unit); err != nil {
		return errors.Wrap(err, "writing to interpreter stdin")
	}
	w.logger.Debug("unit submitted", zap.Int("seq", w.seq), zap.Int("bytes", len(code)))
	if err := w.logs.waitMark(tok); err != nil {
		return err
	}
	return w.list.waitMark(tok)
}

// FlushLog pops up to max bytes of buffered log output; empty means drained.
func (w *Workspace) FlushLog(max int) (string, error) {
	chunk, err := w.logs.Flush(max)
	if chunk != "" {
		w.logger.Debug("log flushed", zap.Int("bytes", len(chunk)))
	}
	return chunk, err
}

// FlushList pops up to max bytes of buffered listing output; empty means
// drained.
func (w *Workspace) FlushList(max int) (string, error) {
	chunk, err := w.list.Flush(max)
	if chunk != "" {
		w.logger.Debug("listing flushed", zap.Int("bytes", len(chunk)))
	}
	return chunk, err
}

// Close ends the session: the interpreter sees EOF on stdin, the collectors
// drain what is left, and the transport is released. Closing twice errors.
func (w *Workspace) Close() error {
	if w.closed {
		return errors.New("workspace already closed")
	}
	w.closed = true
	_ = w.stdin.Close()
	<-w.logs.done
	<-w.list.done
	err := w.tr.close()
	w.logger.Info("workspace closed", zap.Int("units", w.seq))
	return err
}
