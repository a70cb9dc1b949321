// Package out formats what the user sees on the terminal: replies, the
// prompt, and highlighted SAS log lines.
package out

import (
	"bufio"
	"bytes"
)

// BufferWriter accumulates replies so callers can build a whole answer and
// hand it back as one string.
type BufferWriter struct {
	b *bytes.Buffer
	w *bufio.Writer
}

func NewBufferWriter() *BufferWriter {
	var b bytes.Buffer
	return &BufferWriter{&b, bufio.NewWriter(&b)}
}

func (bw *BufferWriter) Write(p []byte) (int, error) {
	return bw.w.Write(p)
}

func (bw *BufferWriter) String() string {
	bw.w.Flush()
	return bw.b.String()
}
