package out

import (
	"io"
	"strings"
)

// ANSI color codes
const (
	Red    = "\x1b[31m"
	Green  = "\x1b[32m"
	Yellow = "\x1b[33m"
	Cyan   = "\x1b[36m"
	Grey   = "\x1b[37m"
)

func Reply(w io.Writer, msg ...string) bool {
	if len(msg) > 0 && msg[0] != "" {
		w.Write([]byte(strings.Join(msg, "\n")))
		return true
	}
	return false
}

func ReplyNL(w io.Writer, msg ...string) bool {
	if Reply(w, msg...) {
		return Reply(w, "\n")
	}
	return false
}

func ReplyEither(w io.Writer, err error, msg ...string) bool {
	if err != nil {
		return Reply(w, Red+strings.TrimSpace(err.Error()))
	}
	return Reply(w, msg...)
}

func ReplyEitherNL(w io.Writer, err error, msg ...string) {
	if ReplyEither(w, err, msg...) {
		Reply(w, "\n")
	}
}

func Prompt(w io.Writer) {
	Reply(w, Cyan+"SAS> "+Grey)
}

// ColorizeLog highlights ERROR and WARNING log lines the way the SAS display
// manager would.
func ColorizeLog(log string) string {
	if log == "" {
		return ""
	}
	w := NewBufferWriter()
	for _, line := range strings.Split(strings.TrimRight(log, "\n"), "\n") {
		if line == "" {
			Reply(w, "\n")
			continue
		}
		switch {
		case strings.HasPrefix(line, "ERROR"):
			Reply(w, Red)
		case strings.HasPrefix(line, "WARNING"):
			Reply(w, Yellow)
		default:
			Reply(w, Grey)
		}
		ReplyNL(w, line)
	}
	return w.String()
}
