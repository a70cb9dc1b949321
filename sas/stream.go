package sas

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	markerPrefix = "__POWERSAS_DONE_"
	markerSuffix = "__"
)

// stream buffers one interpreter output pipe. A single collector goroutine
// owns the read side and exits when the pipe reaches EOF; Flush pops buffered
// bytes in bounded chunks. When markers is set (the log stream), lines
// carrying an end-of-unit marker are stripped from the output and reported on
// the marks channel instead.
type stream struct {
	mu  sync.Mutex
	buf bytes.Buffer
	err error

	marks chan string
	done  chan struct{}
}

func newStream(r io.Reader, markers bool) *stream {
	s := &stream{
		marks: make(chan string, 4),
		done:  make(chan struct{}),
	}
	go s.collect(r, markers)
	return s
}

func (s *stream) collect(r io.Reader, markers bool) {
	defer close(s.done)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if markers {
			if tok := markerToken(line); tok != "" {
				select {
				case s.marks <- tok:
				default:
					// stale sightings from earlier units are dropped
				}
				line = ""
			}
		}
		if line != "" {
			s.mu.Lock()
			s.buf.WriteString(line)
			s.mu.Unlock()
		}
		if err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}
	}
}

// Flush pops up to max bytes of buffered output. An empty string means the
// stream is currently drained.
func (s *stream) Flush(max int) (string, error) {
	if max <= 0 {
		max = DefaultChunkSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk := string(s.buf.Next(max))
	if chunk == "" && s.err != nil && s.err != io.EOF {
		return "", errors.Wrap(s.err, "reading interpreter output")
	}
	return chunk, nil
}

// waitMark blocks until the collector has seen the end-of-unit marker tok.
// It fails if the pipe closes first, meaning the interpreter went away before
// completing the submitted unit.
func (s *stream) waitMark(tok string) error {
	for {
		select {
		case seen := <-s.marks:
			if seen == tok {
				return nil
			}
		case <-s.done:
			// the collector may have recorded the marker right before exiting
			for {
				select {
				case seen := <-s.marks:
					if seen == tok {
						return nil
					}
				default:
					if err := s.readErr(); err != nil && err != io.EOF {
						return errors.Wrap(err, "reading interpreter output")
					}
					return errors.New("interpreter exited before the submitted unit completed")
				}
			}
		}
	}
}

// drainMarks discards sightings left over from earlier units. The protocol
// is sequential, so anything queued before a new unit is submitted is stale.
func (s *stream) drainMarks() {
	for {
		select {
		case <-s.marks:
		default:
			return
		}
	}
}

func (s *stream) readErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// markerToken extracts an end-of-unit marker from a log line, whether the
// line is the marker output itself or the interpreter's echo of the source
// statement that produced it.
func markerToken(line string) string {
	start := strings.Index(line, markerPrefix)
	if start < 0 {
		return ""
	}
	rest := line[start+len(markerPrefix):]
	end := strings.Index(rest, markerSuffix)
	if end < 0 {
		return ""
	}
	return line[start : start+len(markerPrefix)+end+len(markerSuffix)]
}
