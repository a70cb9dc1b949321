// Package repl implements the interactive read/submit/print loop.
package repl

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/chrisjb82/powerSAS/client"
	"github.com/chrisjb82/powerSAS/out"
	"github.com/chrisjb82/powerSAS/util"
)

// Run reads lines from term and submits them to the active session, printing
// the log and listing after each one. It returns on the exit keyword (or at
// end of input) and leaves the session open: quitting the loop is not
// disconnecting.
func Run(term io.ReadWriter, c *client.Client) {
	reader := bufio.NewReader(term)
	out.ReplyNL(term, out.Grey+"type 'help' for help, 'exit' to leave the loop (the session stays open)")
	out.Prompt(term)

	for {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		line = strings.TrimSpace(line)
		fields := strings.Fields(line)

		switch {
		case line == "":
		case isExit(line):
			out.ReplyNL(term, out.Grey+"bye!")
			return
		case line == "help":
			out.Reply(term, help())
		case line == "status":
			out.ReplyNL(term, status(c))
		case util.Get(0, fields) == "include":
			// keep the raw remainder so paths with repeated spaces survive
			include(term, c, strings.TrimSpace(strings.TrimPrefix(line, "include")))
		default:
			submit(term, c, line)
		}
		out.Prompt(term)
	}
}

// isExit matches the designated exit keywords, case-insensitively.
func isExit(line string) bool {
	return strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit")
}

func submit(w io.Writer, c *client.Client, code string) {
	log, lst, err := c.Submit(code)
	if err != nil {
		out.ReplyEitherNL(w, err)
		return
	}
	out.Reply(w, out.ColorizeLog(log))
	if lst != "" {
		out.ReplyNL(w, out.Green+strings.TrimRight(lst, "\n"))
	}
}

func include(w io.Writer, c *client.Client, path string) {
	if path == "" {
		out.ReplyEitherNL(w, errors.New("usage: include <file.sas>"))
		return
	}
	logPath, lstPath, err := c.SubmitFile(path)
	out.ReplyEitherNL(w, err, out.Grey+"wrote "+logPath+" and "+lstPath)
}

func status(c *client.Client) string {
	if c.Active() {
		return out.Green + "session active"
	}
	return out.Red + "no active session"
}

func help() string {
	w := out.NewBufferWriter()
	out.ReplyNL(w, out.Cyan+"status")
	out.ReplyNL(w, out.Grey+"    shows whether a session is active")
	out.ReplyNL(w, out.Cyan+"include <file.sas>")
	out.ReplyNL(w, out.Grey+"    submits a program file, writing its .log and .lst next to it")
	out.ReplyNL(w, out.Cyan+"exit | quit")
	out.ReplyNL(w, out.Grey+"    leaves the loop without closing the session")
	out.ReplyNL(w, out.Grey+"anything else is submitted to SAS as-is, one line per unit")
	return w.String()
}
